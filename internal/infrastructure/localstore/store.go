package localstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Store is a small JSON-valued KV store on pebble. It backs the demo-mode
// gateway and the reveal seen-set with namespaced string keys.
type Store struct {
	db *pebble.DB
}

// Open opens (or creates) the store at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open local store at %q: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Set marshals value as JSON under key.
func (s *Store) Set(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal value for %q: %w", key, err)
	}
	if err := s.db.Set([]byte(key), data, pebble.Sync); err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

// Get unmarshals the value at key into out. Returns false when the key does
// not exist.
func (s *Store) Get(key string, out any) (bool, error) {
	data, closer, err := s.db.Get([]byte(key))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("get %q: %w", key, err)
	}
	defer closer.Close()
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("unmarshal value at %q: %w", key, err)
	}
	return true, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete([]byte(key), pebble.Sync); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// ScanPrefix visits every key with the given prefix in key order.
func (s *Store) ScanPrefix(prefix string, fn func(key string, value []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("open iterator: %w", err)
	}
	defer iter.Close()

	p := []byte(prefix)
	for iter.SeekGE(p); iter.Valid(); iter.Next() {
		key := iter.Key()
		if len(key) < len(p) || string(key[:len(p)]) != prefix {
			break
		}
		value := append([]byte(nil), iter.Value()...)
		if err := fn(string(key), value); err != nil {
			return err
		}
	}
	return iter.Error()
}
