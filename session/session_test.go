package session_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sensorplane/corestream/config"
	"github.com/sensorplane/corestream/frame"
	"github.com/sensorplane/corestream/producer"
	"github.com/sensorplane/corestream/session"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.RingDir = dir
	cfg.RingCapacity = 256 // 256*48=12288 bytes, page aligned for LineN=4,LineC=3,float32
	cfg.LineN = 4
	cfg.LineC = 3
	cfg.JournalPathA = filepath.Join(dir, "a.bin")
	cfg.JournalPathB = filepath.Join(dir, "b.bin")
	cfg.RotateFrames = 5
	cfg.RotateSeconds = 0
	cfg.PollHz = 200
	cfg.ConsumerLag = 0
	cfg.IngestEnabled = true
	cfg.IngestHz = 50
	cfg.BatchFrames = 4
	cfg.SinkKind = "memory"
	return cfg
}

func TestSessionSnapshotReflectsLiveness(t *testing.T) {
	cfg := testConfig(t)
	s, err := session.New(cfg, nil)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer s.Close()

	if s.ID == "" {
		t.Fatalf("expected a non-empty session ID")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if s.Snapshot().WriterAlive {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	snap := s.Snapshot()
	if !snap.WriterAlive {
		t.Fatalf("expected writer to report alive after startup, got snapshot %+v", snap)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("session.Run did not return after cancellation")
	}
}

func TestSessionEndToEndPublishesIngestsToSink(t *testing.T) {
	cfg := testConfig(t)
	s, err := session.New(cfg, nil)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	sessionDone := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(sessionDone)
	}()

	shp := frame.LineShape(cfg.LineN, cfg.LineC, frame.Float32)
	codec := frame.New(shp)
	src := producer.NewSyntheticLine(cfg.LineN, cfg.LineC)
	producerCtx, producerCancel := context.WithCancel(context.Background())
	go producer.Run(producerCtx, src, codec, s.Ring(), s.Plane(), nil)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if s.Plane().IngestFramesIngested.Load() >= 20 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	producerCancel()
	cancel()

	select {
	case <-sessionDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("session.Run did not return after cancellation")
	}

	if got := s.Plane().IngestFramesIngested.Load(); got < 20 {
		t.Fatalf("ingest_frames_ingested = %d, want at least 20", got)
	}
}
