package perfmodel

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jstittsworth/ff-alpha-core/internal/domain"
	"github.com/jstittsworth/ff-alpha-core/pkg/utils"
)

const artifactExt = "gob"

// CacheStore is the PlayerModelStore abstraction: one artifact per
// (player_id, season), written with a temp-file/fsync/rename discipline
// so a reader never observes a partially-written file. The cache
// directory is the only process-wide shared mutable resource this
// package touches.
type CacheStore struct {
	Dir        string
	TTL        time.Duration
	clock      func() time.Time
}

// NewCacheStore opens (creating if needed) the cache directory.
func NewCacheStore(dir string, ttl time.Duration) (*CacheStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir %s: %w", dir, err)
	}
	return &CacheStore{Dir: dir, TTL: ttl, clock: time.Now}, nil
}

func (s *CacheStore) path(playerID string, year int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("player_%s_%d.%s", playerID, year, artifactExt))
}

// Load returns the cached PlayerState for (playerID, year) if the file
// exists, its mtime is within TTL, and its schema version matches the
// current one. Any other condition is reported as ErrCacheMiss or
// ErrCacheStale so the caller retrains transparently.
func (s *CacheStore) Load(playerID string, year int) (*PlayerState, error) {
	p := s.path(playerID, year)
	info, err := os.Stat(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, utils.ErrCacheMiss)
	}
	if s.clock().Sub(info.ModTime()) > s.TTL {
		return nil, fmt.Errorf("%s: %w", p, utils.ErrCacheStale)
	}
	raw, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, utils.ErrCacheMiss)
	}
	var state PlayerState
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&state); err != nil {
		return nil, fmt.Errorf("%s: corrupt artifact: %w", p, utils.ErrCacheMiss)
	}
	if state.SchemaVersion != SchemaVersion {
		return nil, fmt.Errorf("%s: schema version %d != %d: %w", p, state.SchemaVersion, SchemaVersion, utils.ErrCacheStale)
	}
	return &state, nil
}

// Save writes state atomically: encode to a temp file in the same
// directory, fsync, then rename over the final path. Readers never
// see a half-written file because rename is atomic on the same
// filesystem.
func (s *CacheStore) Save(state *PlayerState) error {
	final := s.path(state.PlayerID, state.Year)
	tmp := final + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create temp artifact: %w", err)
	}
	defer os.Remove(tmp)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		f.Close()
		return fmt.Errorf("encode player state: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write temp artifact: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("fsync temp artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp artifact: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		return fmt.Errorf("rename artifact into place: %w", err)
	}
	return nil
}

// LoadOrTrain returns the cached model for (player, year) cut at
// cutWeek, transparently retraining and re-caching on any cache miss
// or staleness.
func (s *CacheStore) LoadOrTrain(ctx context.Context, player *domain.Player, year, cutWeek int) (*PlayerState, error) {
	if state, err := s.Load(player.ID, year); err == nil {
		return state, nil
	}
	state, err := Train(player, year, cutWeek)
	if err != nil {
		return nil, err
	}
	if err := s.Save(state); err != nil {
		return nil, fmt.Errorf("cache trained state: %w", err)
	}
	return state, nil
}
