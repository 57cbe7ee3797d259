package kv

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

// Snapshot is the persisted export format: every collection, the settings
// blob and the counters, stamped with the export time.
type Snapshot struct {
	Collections map[string][]json.RawMessage `json:"collections"`
	Settings    json.RawMessage              `json:"settings,omitempty"`
	Counters    map[string]int64             `json:"counters"`
	ExportedAt  time.Time                    `json:"exportedAt"`
}

// Export serializes the full store contents into one snapshot.
func (s *Store) Export() (*Snapshot, error) {
	snap := &Snapshot{
		Collections: make(map[string][]json.RawMessage, len(s.opts.Collections)),
		Counters:    make(map[string]int64),
		ExportedAt:  time.Now(),
	}
	err := s.db.View(func(tx *bolt.Tx) error {
		for _, name := range s.opts.Collections {
			records := []json.RawMessage{}
			err := tx.Bucket([]byte(name)).ForEach(func(_, v []byte) error {
				records = append(records, json.RawMessage(append([]byte(nil), v...)))
				return nil
			})
			if err != nil {
				return err
			}
			snap.Collections[name] = records
		}
		if v := tx.Bucket([]byte(settingsBucket)).Get([]byte(settingsKey)); v != nil {
			snap.Settings = append([]byte(nil), v...)
		}
		return tx.Bucket([]byte(countersBucket)).ForEach(func(k, v []byte) error {
			snap.Counters[string(k)] = decodeCounter(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return snap, nil
}

// Import overwrites the named collections, settings and counters from a
// snapshot. The whole import runs in one transaction: any malformed record
// aborts it and nothing is written.
func (s *Store) Import(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: empty snapshot", httpx.ErrBadSnapshot)
	}
	known := make(map[string]bool, len(s.opts.Collections))
	for _, name := range s.opts.Collections {
		known[name] = true
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for name, records := range snap.Collections {
			if !known[name] {
				return fmt.Errorf("%w: unknown collection %q", httpx.ErrBadSnapshot, name)
			}
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			b, err := tx.CreateBucket([]byte(name))
			if err != nil {
				return err
			}
			var maxSeq uint64
			for i, raw := range records {
				compact, ok := compactJSON(raw)
				if !ok {
					return fmt.Errorf("%w: %s record %d is not an object", httpx.ErrBadSnapshot, name, i)
				}
				var meta Meta
				if err := json.Unmarshal(compact, &meta); err != nil || meta.ID == "" {
					return fmt.Errorf("%w: %s record %d has no id", httpx.ErrBadSnapshot, name, i)
				}
				if meta.Seq > maxSeq {
					maxSeq = meta.Seq
				}
				if err := b.Put([]byte(meta.ID), compact); err != nil {
					return err
				}
			}
			if err := b.SetSequence(maxSeq); err != nil {
				return err
			}
		}
		if len(snap.Settings) > 0 {
			compact, ok := compactJSON(snap.Settings)
			if !ok {
				return fmt.Errorf("%w: settings is not an object", httpx.ErrBadSnapshot)
			}
			if err := tx.Bucket([]byte(settingsBucket)).Put([]byte(settingsKey), compact); err != nil {
				return err
			}
		}
		counters := tx.Bucket([]byte(countersBucket))
		for name, value := range snap.Counters {
			if err := counters.Put([]byte(name), encodeCounter(value)); err != nil {
				return err
			}
		}
		return nil
	})
}
