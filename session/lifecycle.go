package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run starts the journal writer and, if enabled, the ingester, and
// blocks until ctx is cancelled. On cancellation it waits for both
// actors to finish their current tick and return: the writer flushes
// and seals the active file, and the ingester drains any sealed files
// before exiting.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.writer.Run(ctx); err != nil && s.logger != nil {
			s.logger.Error("journal writer exited with error", zap.Error(err))
		}
	}()

	if s.ing != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.ing.Run(ctx, s.cfg.IngestHz); err != nil && s.logger != nil {
				s.logger.Error("ingester exited with error", zap.Error(err))
			}
		}()
		s.wg.Add(1)
		go s.watchIngester(ctx)
	}

	<-ctx.Done()
	s.wg.Wait()
	return nil
}

// watchIngester is an independent watchdog that actively flips
// ingest_alive to false if the ingester goroutine stops pulsing its
// heartbeat, rather than relying on a reader noticing staleness lazily.
func (s *Session) watchIngester(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(watchdogInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !s.plane.IngestAliveNow() {
				s.plane.IngestAlive.Store(false)
				if s.logger != nil {
					s.logger.Warn("watchdog: ingester heartbeat stale, marking dead")
				}
			}
		}
	}
}

// Stop cancels the running session's context, if Run is in flight.
func (s *Session) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Close stops the session (if running), flushes and closes the journal
// writer, closes the sink, and unmaps/unlinks the ring. Safe to call
// more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	s.Stop()
	s.wg.Wait()

	var firstErr error
	if err := s.writer.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if s.sk != nil {
		if err := s.sk.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if err := s.ring.Close(true); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
