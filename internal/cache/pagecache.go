package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// PageEntry records what was fetched alongside the stored body so a cached
// page can stand in for a live response.
type PageEntry struct {
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	SavedAt     time.Time `json:"saved_at"`
}

// PageCache stores fetched pages on disk as <key>.meta.json and <key>.body
// where key is sha256(url). Deterministic and eviction-free; MaxAge bounds
// how stale an entry may be before it is ignored (0 means no limit).
type PageCache struct {
	Dir    string
	MaxAge time.Duration
}

func (c *PageCache) ensureDir() error {
	if c == nil || c.Dir == "" {
		return errors.New("cache dir not configured")
	}
	return os.MkdirAll(c.Dir, 0o755)
}

func (c *PageCache) key(url string) string {
	h := sha256.Sum256([]byte(url))
	return hex.EncodeToString(h[:])
}

func (c *PageCache) metaPath(key string) string { return filepath.Join(c.Dir, key+".meta.json") }
func (c *PageCache) bodyPath(key string) string { return filepath.Join(c.Dir, key+".body") }

// Load returns the cached entry and body for url, or an error when the entry
// is absent, unreadable, or older than MaxAge.
func (c *PageCache) Load(url string) (*PageEntry, []byte, error) {
	if err := c.ensureDir(); err != nil {
		return nil, nil, err
	}
	key := c.key(url)
	f, err := os.Open(c.metaPath(key))
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	var e PageEntry
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		return nil, nil, err
	}
	if c.MaxAge > 0 && time.Since(e.SavedAt) > c.MaxAge {
		return nil, nil, fmt.Errorf("cache entry expired: %s", url)
	}
	body, err := os.ReadFile(c.bodyPath(key))
	if err != nil {
		return nil, nil, err
	}
	return &e, body, nil
}

// Save stores a page on disk, body first so a crash never leaves metadata
// pointing at a missing body.
func (c *PageCache) Save(url, contentType string, body []byte) error {
	if err := c.ensureDir(); err != nil {
		return err
	}
	key := c.key(url)
	if err := os.WriteFile(c.bodyPath(key), body, 0o644); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	meta := PageEntry{URL: url, ContentType: contentType, SavedAt: time.Now().UTC()}
	b, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}
	if err := os.WriteFile(c.metaPath(key), b, 0o644); err != nil {
		return fmt.Errorf("write meta: %w", err)
	}
	return nil
}

// Clear removes every entry under the cache directory.
func (c *PageCache) Clear() error {
	if c == nil || c.Dir == "" {
		return nil
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}
