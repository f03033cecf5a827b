package contentcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"subburn/internal/logging"
)

// Validator is implemented by cached payload types that can reject a decoded
// blob, for example when its shape no longer matches the request.
type Validator interface {
	ValidateCached() error
}

// Entry describes one file in the cache directory.
type Entry struct {
	Type    string
	Key     string
	Path    string
	Size    int64
	ModTime time.Time
}

// Cache persists JSON payloads keyed by content hash.
type Cache struct {
	dir    string
	logger *slog.Logger
}

// New returns a cache rooted at dir. The directory is created on first write.
func New(dir string, logger *slog.Logger) (*Cache, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("cache directory is empty")
	}
	return &Cache{dir: dir, logger: logging.NewComponentLogger(logger, "cache")}, nil
}

// Dir exposes the backing directory for inspection.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

// Path returns the file path for cacheType/key, creating the directory if needed.
func (c *Cache) Path(cacheType, key string) (string, error) {
	if err := c.ensureDir(); err != nil {
		return "", err
	}
	return c.path(cacheType, key), nil
}

// Load decodes the cached payload for cacheType/key into v. It reports false on
// a missing file, unreadable file, malformed JSON, or a payload whose
// ValidateCached method fails.
func (c *Cache) Load(cacheType, key string, v any) bool {
	if c == nil {
		return false
	}
	path := c.path(cacheType, key)
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			c.logger.Debug("cache read failed", logging.String("path", path), logging.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Debug("cache entry malformed", logging.String("path", path), logging.Error(err))
		return false
	}
	if validator, ok := v.(Validator); ok {
		if err := validator.ValidateCached(); err != nil {
			c.logger.Debug("cache entry rejected", logging.String("path", path), logging.Error(err))
			return false
		}
	}
	c.logger.Debug("cache hit", logging.String("type", cacheType), logging.String("key", key))
	return true
}

// Save writes v as indented UTF-8 JSON. Non-ASCII text is stored verbatim.
func (c *Cache) Save(cacheType, key string, v any) error {
	if c == nil {
		return errors.New("cache unavailable")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := c.ensureDir(); err != nil {
		return err
	}
	path := c.path(cacheType, key)
	if err := writeFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return err
	}
	c.logger.Debug("cache stored", logging.String("path", path))
	return nil
}

// List returns cache entries sorted by type then modification time.
func (c *Cache) List() ([]Entry, error) {
	if c == nil {
		return nil, errors.New("cache unavailable")
	}
	dirEntries, err := os.ReadDir(c.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read cache dir: %w", err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		cacheType, key, ok := parseFileName(de.Name())
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Type:    cacheType,
			Key:     key,
			Path:    filepath.Join(c.dir, de.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type < entries[j].Type
		}
		return entries[i].ModTime.Before(entries[j].ModTime)
	})
	return entries, nil
}

// Clear removes entries of cacheType, or every entry when cacheType is empty.
// It returns the number of files removed.
func (c *Cache) Clear(cacheType string) (int, error) {
	entries, err := c.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for _, entry := range entries {
		if cacheType != "" && entry.Type != cacheType {
			continue
		}
		if err := os.Remove(entry.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return removed, fmt.Errorf("remove %s: %w", entry.Path, err)
		}
		removed++
	}
	return removed, nil
}

func (c *Cache) ensureDir() error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("ensure cache dir: %w", err)
	}
	return nil
}

func (c *Cache) path(cacheType, key string) string {
	return filepath.Join(c.dir, fmt.Sprintf("%s_%s.json", cacheType, key))
}

func parseFileName(name string) (string, string, bool) {
	base, ok := strings.CutSuffix(name, ".json")
	if !ok {
		return "", "", false
	}
	idx := strings.LastIndexByte(base, '_')
	if idx <= 0 || idx == len(base)-1 {
		return "", "", false
	}
	return base[:idx], base[idx+1:], true
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".cache-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
