package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"optimix/internal/ir"
)

// Key identifies a compiled source.
type Key [sha256.Size]byte

// CacheKey hashes the artifact schema, the SSA setting and the source, so
// a schema bump or a different mode never hits a stale entry.
func CacheKey(src []byte, ssa bool) Key {
	h := sha256.New()
	var hdr [3]byte
	binary.LittleEndian.PutUint16(hdr[:2], ir.ArtifactSchema)
	if ssa {
		hdr[2] = 1
	}
	h.Write(hdr[:])
	h.Write(src)
	var k Key
	h.Sum(k[:0])
	return k
}

func (k Key) String() string { return hex.EncodeToString(k[:]) }

// Cache keeps compiled artifacts on disk. It is safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// OpenCache opens the cache under $XDG_CACHE_HOME/app (~/.cache/app).
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache opens a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string { return c.dir }

func (c *Cache) pathFor(key Key) string {
	return filepath.Join(c.dir, "oir", key.String()+".oir")
}

// Put stores f under key.
func (c *Cache) Put(key Key, f *ir.Func, ssa bool) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return ir.SaveArtifact(p, f, ssa)
}

// Get loads the artifact stored under key. Missing entries and entries
// written by another schema are reported as misses.
func (c *Cache) Get(key Key) (*ir.Artifact, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	art, err := ir.LoadArtifact(c.pathFor(key))
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, ir.ErrSchemaMismatch):
		return nil, false, nil
	case err != nil:
		return nil, false, err
	}
	return art, true, nil
}

// DropAll removes every cached artifact.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := filepath.Join(c.dir, "oir.old-"+time.Now().Format("20060102150405.000000000"))
	if err := os.Rename(filepath.Join(c.dir, "oir"), old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
