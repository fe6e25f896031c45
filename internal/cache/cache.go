// Package cache persists analysis reports on disk, keyed by a hash of the
// program file and the analysis that produced them. Whole-program points-to
// runs dominate the CLI's latency; re-running over an unchanged program is
// a cache hit.
package cache

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dkellner/pinpoint/internal/analysis"
)

// Version is incremented when the cache format changes.
const Version = "1.0.0"

// envelope wraps a payload with the format version; a version mismatch is
// a miss.
type envelope struct {
	Version string `msgpack:"version"`
	Payload []byte `msgpack:"payload"`
}

// Cache manages persistent analysis reports.
type Cache struct {
	dir     string
	enabled bool
	hits    int
	misses  int
}

// New creates a cache rooted at dir. An empty dir falls back to
// $PINPOINT_CACHE_DIR, then $HOME/.cache/pinpoint. A cache that cannot
// create its directory is disabled and every lookup misses.
func New(dir string) *Cache {
	if dir == "" {
		dir = os.Getenv("PINPOINT_CACHE_DIR")
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return &Cache{}
		}
		dir = filepath.Join(home, ".cache", "pinpoint")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		analysis.Warnf("[cache] disabled: %v", err)
		return &Cache{}
	}
	return &Cache{dir: dir, enabled: true}
}

// Key derives the cache key for a program and analysis: a truncated
// sha256 over both.
func Key(program []byte, analysisID string) string {
	h := sha256.New()
	h.Write(program)
	h.Write([]byte{0})
	h.Write([]byte(analysisID))
	return fmt.Sprintf("%x", h.Sum(nil)[:8])
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".msgpack")
}

// Load reads the report stored under key into out and reports a hit.
func (c *Cache) Load(key string, out any) bool {
	if !c.enabled {
		return false
	}
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		c.misses++
		return false
	}
	var env envelope
	if err := msgpack.Unmarshal(data, &env); err != nil || env.Version != Version {
		c.misses++
		return false
	}
	if err := msgpack.Unmarshal(env.Payload, out); err != nil {
		c.misses++
		return false
	}
	c.hits++
	return true
}

// Store writes a report under key.
func (c *Cache) Store(key string, report any) error {
	if !c.enabled {
		return nil
	}
	payload, err := msgpack.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	data, err := msgpack.Marshal(envelope{Version: Version, Payload: payload})
	if err != nil {
		return fmt.Errorf("encode cache envelope: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("write cache entry: %w", err)
	}
	return nil
}

// Stats returns the hit and miss counters.
func (c *Cache) Stats() (hits, misses int) {
	return c.hits, c.misses
}
