// Package cachestore is a key-value cache with JSON (de)serialization over
// a string-only storage backend. Reads never fail: a missing key, a backend
// error, or malformed JSON all yield the caller-supplied default. Writes
// are best-effort; a failed write is logged and swallowed, so callers must
// not depend on writes succeeding.
//
// Keys are plain strings with no namespacing or eviction. Callers embed
// the request parameters into the key (e.g. "crypto-data-p1-s10") to keep
// keys unique. Entries have no TTL: a value persists until the next
// successful fetch overwrites it or it is removed explicitly.
package cachestore

import (
	"encoding/json"
	"log"
)

// Storage is the string-only backend underneath the store. Values are
// JSON-encoded by the store, not by the backend.
type Storage interface {
	// GetItem returns the raw value and whether the key exists.
	GetItem(key string) (string, bool, error)
	SetItem(key, value string) error
	RemoveItem(key string) error
}

// Store wraps a Storage with the JSON codec and the never-fail read
// contract.
type Store struct {
	backend Storage
}

func New(backend Storage) *Store {
	return &Store{backend: backend}
}

// Get reads and decodes the value at key. On any failure it returns def.
func Get[T any](s *Store, key string, def T) T {
	raw, ok, err := s.backend.GetItem(key)
	if err != nil || !ok {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return def
	}
	return v
}

// Set encodes v and writes it at key. Failures are logged, not returned.
func (s *Store) Set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		log.Printf("cachestore: marshal %q: %v", key, err)
		return
	}
	if err := s.backend.SetItem(key, string(raw)); err != nil {
		log.Printf("cachestore: write %q: %v", key, err)
	}
}

// Remove deletes the entry at key, best effort.
func (s *Store) Remove(key string) {
	if err := s.backend.RemoveItem(key); err != nil {
		log.Printf("cachestore: remove %q: %v", key, err)
	}
}
