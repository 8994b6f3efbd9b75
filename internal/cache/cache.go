package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// memoryEntries bounds the in-process tier.
const memoryEntries = 256

// Entry is one cached review response as stored on disk.
type Entry struct {
	Key       string    `json:"key"`
	File      string    `json:"file,omitempty"`
	Response  string    `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

func (e Entry) expired(ttl time.Duration, now time.Time) bool {
	return ttl > 0 && now.Sub(e.CreatedAt) > ttl
}

// Cache stores review responses in an in-memory LRU backed by one JSON file
// per entry. A disabled Cache misses on every Get and ignores Put.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
	mem     *lru.Cache[string, Entry]
	now     func() time.Time
}

// New creates a Cache. If dir is empty, the OS cache directory is used.
func New(enabled bool, dir string, ttlSeconds int) (*Cache, error) {
	if !enabled {
		return &Cache{now: time.Now}, nil
	}
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	mem, err := lru.New[string, Entry](memoryEntries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &Cache{
		dir:     dir,
		ttl:     time.Duration(ttlSeconds) * time.Second,
		enabled: true,
		mem:     mem,
		now:     time.Now,
	}, nil
}

// Get returns the cached response for key. Expired entries are removed.
func (c *Cache) Get(key string) (string, bool) {
	if !c.Enabled() {
		return "", false
	}
	now := c.now()
	if e, ok := c.mem.Get(key); ok {
		if !e.expired(c.ttl, now) {
			return e.Response, true
		}
		c.mem.Remove(key)
	}

	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return "", false
	}
	if e.expired(c.ttl, now) {
		os.Remove(path)
		return "", false
	}
	c.mem.Add(key, e)
	return e.Response, true
}

// Put stores a response. file is recorded for display only.
func (c *Cache) Put(key, file, response string) error {
	if !c.Enabled() {
		return nil
	}
	e := Entry{
		Key:       key,
		File:      file,
		Response:  response,
		CreatedAt: c.now(),
		TTL:       int(c.ttl / time.Second),
	}
	c.mem.Add(key, e)

	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	tmp := c.entryPath(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return os.Rename(tmp, c.entryPath(key))
}

// Clear removes all entries and returns how many files were deleted.
func (c *Cache) Clear() (int, error) {
	if !c.Enabled() || c.dir == "" {
		return 0, nil
	}
	c.mem.Purge()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("reading cache directory: %w", err)
	}
	removed := 0
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err == nil {
			removed++
		}
	}
	return removed, nil
}

// Stats describes the on-disk cache.
type Stats struct {
	Dir        string `json:"dir"`
	Enabled    bool   `json:"enabled"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"totalBytes"`
	Expired    int    `json:"expired"`
	InMemory   int    `json:"inMemory"`
}

// GetStats scans the cache directory.
func (c *Cache) GetStats() (Stats, error) {
	stats := Stats{Dir: c.dir, Enabled: c.Enabled()}
	if !c.Enabled() || c.dir == "" {
		return stats, nil
	}
	stats.InMemory = c.mem.Len()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return stats, nil
		}
		return stats, fmt.Errorf("reading cache directory: %w", err)
	}
	now := c.now()
	for _, de := range entries {
		if filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		stats.Entries++
		stats.TotalBytes += info.Size()

		data, err := os.ReadFile(filepath.Join(c.dir, de.Name()))
		if err != nil {
			continue
		}
		var e Entry
		if err := json.Unmarshal(data, &e); err != nil {
			continue
		}
		if e.expired(c.ttl, now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled. Safe on a nil Cache.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

// HashKey returns the hex SHA-256 of s.
func HashKey(s string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(s)))
}

// BuildKey derives a cache key from everything that shapes a review
// response: provider, model, prompt and inputs.
func BuildKey(parts ...string) string {
	return HashKey(strings.Join(parts, "\x00"))
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

// DefaultDir returns the OS-appropriate cache directory.
func DefaultDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "commitgate"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "commitgate"), nil
	case "windows":
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, "commitgate", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "commitgate", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "commitgate"), nil
	}
}
