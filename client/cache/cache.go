// Package cache implements a durable JSON cache backed by namespaced files
// on disk. It mirrors the in-memory state so the application can come back
// up without a network connection.
package cache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Cache stores one JSON document per key inside a namespace directory.
// Writes are best-effort: a value that cannot be serialized is skipped
// rather than failing the caller. The last Set for a key wins; there is
// no atomicity across keys.
type Cache struct {
	dir    string
	logger *zap.Logger
}

// New creates a cache rooted at dir/namespace, creating the directory if
// needed.
func New(dir, namespace string, logger *zap.Logger) (*Cache, error) {
	root := filepath.Join(dir, namespace)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: root, logger: logger}, nil
}

// Set serializes value under key. Serialization and write errors are
// logged and swallowed so a broken value never takes the caller down.
func (c *Cache) Set(key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn("Skipping cache write, value not serializable",
			zap.String("key", key),
			zap.Error(err),
		)
		return
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		c.logger.Warn("Cache write failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Delete removes a single key. Missing keys are not an error.
func (c *Cache) Delete(key string) {
	if err := os.Remove(c.path(key)); err != nil && !os.IsNotExist(err) {
		c.logger.Warn("Cache delete failed",
			zap.String("key", key),
			zap.Error(err),
		)
	}
}

// Clear removes every key in the namespace. Used on sign-out.
func (c *Cache) Clear() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		c.logger.Warn("Cache clear failed", zap.Error(err))
		return
	}
	for _, e := range entries {
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			c.logger.Warn("Cache clear failed",
				zap.String("entry", e.Name()),
				zap.Error(err),
			)
		}
	}
}

func (c *Cache) path(key string) string {
	// Keys are caller-controlled identifiers, not arbitrary input, but
	// path separators must never escape the namespace.
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(key)
	return filepath.Join(c.dir, safe+".json")
}

// Get reads and deserializes the value stored under key. It returns the
// zero value and false when the key is absent or the stored document is
// corrupt; a corrupt document is never an error surfaced to the caller.
func Get[T any](c *Cache, key string) (T, bool) {
	var value T
	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return value, false
	}
	if err := json.Unmarshal(data, &value); err != nil {
		c.logger.Warn("Discarding corrupt cache entry",
			zap.String("key", key),
			zap.Error(err),
		)
		return value, false
	}
	return value, true
}
