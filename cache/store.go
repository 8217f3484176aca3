package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Store is a durable key-value cache backed by a single JSON file: an open
// map from string keys to arbitrary JSON values. The whole file is loaded
// at Open and rewritten on every Put (write-through), so a crash mid-run
// loses at most the lookup that was in flight.
//
// Only one process should write the file at a time; concurrent readers are
// safe. Entries are never evicted: a derived key always identifies the same
// semantic input, so hits stay valid indefinitely.
type Store struct {
	path    string
	entries map[string]json.RawMessage
	log     zerolog.Logger
}

// Open loads the cache file at path. A missing or unreadable file is a cold
// start, never an error.
func Open(path string, log zerolog.Logger) *Store {
	s := &Store{path: path, entries: map[string]json.RawMessage{}, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("cache file unreadable, starting cold")
		}
		return s
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cache file corrupt, starting cold")
		s.entries = map[string]json.RawMessage{}
		return s
	}
	log.Info().Int("entries", len(s.entries)).Str("path", path).Msg("cache loaded")
	return s
}

// Get unmarshals the entry for key into out and reports whether it existed.
func (s *Store) Get(key string, out any) bool {
	raw, ok := s.entries[key]
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, out); err != nil {
		// A single undecodable entry behaves like a miss so it gets recomputed.
		s.log.Warn().Err(err).Str("key", key).Msg("cache entry undecodable, treating as miss")
		return false
	}
	return true
}

// Put stores v under key and flushes the file immediately.
func (s *Store) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal cache entry %q: %w", key, err)
	}
	s.entries[key] = raw
	return s.flush()
}

// Len returns the number of cached entries.
func (s *Store) Len() int { return len(s.entries) }

func (s *Store) flush() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	// Write to a sibling temp file and rename so readers never observe a
	// half-written cache.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cache-*.json")
	if err != nil {
		return fmt.Errorf("create cache temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close cache temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace cache file: %w", err)
	}
	return nil
}
