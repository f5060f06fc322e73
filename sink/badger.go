package sink

import (
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Badger is a Sink backed by an embedded LSM store. Each flushed batch
// becomes one independent, ordered, durable key; batch boundaries carry
// no cross-batch atomicity, just one Set per batch.
//
// Keys are "<channel>/<batch-seq padded to 20 digits>" so a prefix
// iterator over "<channel>/" reads every batch back in append order.
type Badger struct {
	db   *badger.DB
	seqs map[string]uint64
}

// OpenBadger opens (or creates) a badger store at dir.
func OpenBadger(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("sink: open badger at %s: %w", dir, err)
	}
	b := &Badger{db: db, seqs: make(map[string]uint64)}
	if err := b.loadSeqs(); err != nil {
		db.Close()
		return nil, err
	}
	return b, nil
}

// loadSeqs scans existing keys once at open so batch sequence numbers
// keep counting up across restarts instead of colliding with existing
// entries.
func (b *Badger) loadSeqs() error {
	return b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().KeyCopy(nil))
			channel, seq, ok := parseBatchKey(key)
			if !ok {
				continue
			}
			if seq+1 > b.seqs[channel] {
				b.seqs[channel] = seq + 1
			}
		}
		return nil
	})
}

func batchKey(channel string, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s/%020d", channel, seq))
}

func parseBatchKey(key string) (channel string, seq uint64, ok bool) {
	idx := -1
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(key) {
		return "", 0, false
	}
	n, err := fmt.Sscanf(key[idx+1:], "%020d", &seq)
	if err != nil || n != 1 {
		return "", 0, false
	}
	return key[:idx], seq, true
}

// EnsureKey implements Sink: a zero-length marker under
// "<channel>/_meta" makes the channel discoverable even before its
// first batch lands.
func (b *Badger) EnsureKey(channel string) error {
	return b.db.Update(func(txn *badger.Txn) error {
		key := []byte(channel + "/_meta")
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return txn.Set(key, nil)
		} else if err != nil {
			return err
		}
		return nil
	})
}

// AppendBatch implements Sink, writing one Set per batch. Only the
// batch's Payload is stored; its LogicalIndices are not persisted.
func (b *Badger) AppendBatch(batch Batch) error {
	seq := b.seqs[batch.Channel]
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(batchKey(batch.Channel, seq), batch.Payload)
	}); err != nil {
		return fmt.Errorf("sink: append batch to %s: %w", batch.Channel, err)
	}
	b.seqs[batch.Channel] = seq + 1
	return nil
}

// SetSidecar implements Sink, storing value under a fixed (non-batched)
// key such as "image_shape".
func (b *Badger) SetSidecar(key string, value []byte) error {
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte("sidecar/"+key), value)
	})
}

// Close implements Sink.
func (b *Badger) Close() error {
	return b.db.Close()
}

// ReadAll reads every batch for channel back in append order, the
// read-side counterpart to AppendBatch's ordered key scheme.
func (b *Badger) ReadAll(channel string) ([][]byte, error) {
	var out [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		prefix := []byte(channel + "/")
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if string(it.Item().Key()) == channel+"/_meta" {
				continue
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		return nil
	})
	return out, err
}
