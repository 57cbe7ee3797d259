// Package kv implements the keyed-collection record store on top of an
// embedded bbolt database. Collections are buckets holding JSON-encoded
// records keyed by id, plus one bucket for named counters and one for the
// settings blob.
package kv

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/CodingBreaker07/nema-traders/internal/platform/httpx"
)

const (
	countersBucket = "counters"
	settingsBucket = "settings"
	settingsKey    = "business"
)

// Meta carries the identity and bookkeeping fields embedded in every record.
type Meta struct {
	ID        string    `json:"id"`
	Seq       uint64    `json:"seq"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordMeta returns the embedded meta so generic store operations can reach it.
func (m *Meta) RecordMeta() *Meta { return m }

// Record is any persistable type embedding Meta.
type Record interface {
	RecordMeta() *Meta
}

// Options configures the collections and counter seeds of a store.
type Options struct {
	Collections []string
	Seeds       map[string]int64
}

// Store is the single source of truth for all collections.
type Store struct {
	db   *bolt.DB
	opts Options
}

// Open opens (creating if needed) the database file and ensures every
// collection bucket exists and every counter is seeded.
func Open(path string, opts Options) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	s := &Store{db: db, opts: opts}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range opts.Collections {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(settingsBucket)); err != nil {
			return err
		}
		counters, err := tx.CreateBucketIfNotExists([]byte(countersBucket))
		if err != nil {
			return err
		}
		for name, seed := range opts.Seeds {
			if counters.Get([]byte(name)) == nil {
				if err := counters.Put([]byte(name), encodeCounter(seed)); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init store: %w", err)
	}
	return s, nil
}

// Close releases the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// List returns every record of a collection in insertion order.
func List[T Record](s *Store, collection string) ([]T, error) {
	var out []T
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		return b.ForEach(func(_, v []byte) error {
			var rec T
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("decode %s record: %w", collection, err)
			}
			out = append(out, rec)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordMeta().Seq < out[j].RecordMeta().Seq
	})
	return out, nil
}

// Get fetches one record by id. Returns httpx.ErrNotFound when absent.
func Get[T Record](s *Store, collection, id string) (T, error) {
	var rec T
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		v := b.Get([]byte(id))
		if v == nil {
			return fmt.Errorf("%w: %s %s", httpx.ErrNotFound, collection, id)
		}
		return json.Unmarshal(v, &rec)
	})
	return rec, err
}

// Save inserts or replaces a record. New records (empty id) get a fresh uuid,
// a bucket sequence number and a creation stamp; existing records must already
// be present and get an update stamp.
func Save[T Record](s *Store, collection string, rec T) (T, error) {
	meta := rec.RecordMeta()
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		now := time.Now()
		if meta.ID == "" {
			seq, err := b.NextSequence()
			if err != nil {
				return err
			}
			meta.ID = uuid.NewString()
			meta.Seq = seq
			meta.CreatedAt = now
		} else if b.Get([]byte(meta.ID)) == nil {
			return fmt.Errorf("%w: %s %s", httpx.ErrNotFound, collection, meta.ID)
		}
		meta.UpdatedAt = now
		buf, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode %s record: %w", collection, err)
		}
		return b.Put([]byte(meta.ID), buf)
	})
	return rec, err
}

// Delete removes a record by id. Deleting an absent id is a no-op.
func (s *Store) Delete(collection, id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(collection))
		if b == nil {
			return fmt.Errorf("unknown collection %q", collection)
		}
		return b.Delete([]byte(id))
	})
}

// NextNumber returns the current value of a named counter and increments it.
func (s *Store) NextNumber(name string) (int64, error) {
	var current int64
	err := s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(countersBucket))
		v := b.Get([]byte(name))
		if v == nil {
			return fmt.Errorf("unknown counter %q", name)
		}
		current = decodeCounter(v)
		return b.Put([]byte(name), encodeCounter(current+1))
	})
	return current, err
}

// GetSettings unmarshals the settings blob into target. Reports whether a
// settings record has been written yet.
func (s *Store) GetSettings(target any) (bool, error) {
	found := false
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(settingsBucket)).Get([]byte(settingsKey))
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, target)
	})
	return found, err
}

// PutSettings replaces the settings blob.
func (s *Store) PutSettings(settings any) error {
	buf, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(settingsBucket)).Put([]byte(settingsKey), buf)
	})
}

// Reset clears every collection and reseeds the counters. Settings survive.
func (s *Store) Reset() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range s.opts.Collections {
			if err := tx.DeleteBucket([]byte(name)); err != nil {
				return err
			}
			if _, err := tx.CreateBucket([]byte(name)); err != nil {
				return err
			}
		}
		counters := tx.Bucket([]byte(countersBucket))
		for name, seed := range s.opts.Seeds {
			if err := counters.Put([]byte(name), encodeCounter(seed)); err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeCounter(v int64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(v))
	return buf
}

func decodeCounter(v []byte) int64 {
	if len(v) != 8 {
		return 0
	}
	return int64(binary.BigEndian.Uint64(v))
}

// compactJSON reports whether raw holds a JSON object and normalizes it.
func compactJSON(raw json.RawMessage) (json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, trimmed); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
