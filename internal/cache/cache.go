package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
}

// Cache is a file-per-entry store of JSON values that expire after ttl.
type Cache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if ttl <= 0 {
		return nil, errors.New("cache ttl must be positive")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("error creating cache directory: %w", err)
	}

	c := &Cache{dir: dir, ttl: ttl, now: time.Now}
	_ = c.CleanExpired()

	return c, nil
}

// Key hashes parts into a file-safe entry name.
func Key(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Get decodes the entry stored under key into dst. An expired entry is removed
// and reported as missing.
func (c *Cache) Get(key string, dst any) (bool, error) {
	path := c.path(key)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error reading cache entry: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("error decoding cache entry: %w", err)
	}

	if c.now().Sub(entry.CreatedAt) > c.ttl {
		_ = os.Remove(path)
		return false, nil
	}

	if err := json.Unmarshal(entry.Value, dst); err != nil {
		return false, fmt.Errorf("error decoding cached value: %w", err)
	}
	return true, nil
}

func (c *Cache) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("error encoding cached value: %w", err)
	}

	data, err := json.Marshal(Entry{Key: key, Value: raw, CreatedAt: c.now()})
	if err != nil {
		return fmt.Errorf("error encoding cache entry: %w", err)
	}

	if err := os.WriteFile(c.path(key), data, 0o600); err != nil {
		return fmt.Errorf("error writing cache entry: %w", err)
	}
	return nil
}

// CleanExpired removes entries older than the ttl, judged by file mtime.
func (c *Cache) CleanExpired() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("error reading cache directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if c.now().Sub(info.ModTime()) > c.ttl {
			_ = os.Remove(filepath.Join(c.dir, entry.Name()))
		}
	}
	return nil
}

// Clean drops every entry.
func (c *Cache) Clean() error {
	return os.RemoveAll(c.dir)
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}
