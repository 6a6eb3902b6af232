package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"findash/pkg/core/compare"
	"findash/pkg/core/statement"
)

// MetricsCache caches assembled comparison runs (table, per-company series
// and commentary together, so a hit serves exactly what a fresh run would).
// Hybrid vault: DB (primary) + file system (fallback/local).
type MetricsCache struct {
	pool    *pgxpool.Pool
	fileDir string
	ttl     time.Duration
	now     func() time.Time
}

// NewMetricsCache creates a cache instance. If pool is nil it falls back to
// a file-based cache in dir; if dir is also empty it defaults to a local
// .cache directory. ttl bounds how long a cached table is served.
func NewMetricsCache(pool *pgxpool.Pool, dir string, ttl time.Duration) *MetricsCache {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "findash", "comparisons")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			fmt.Printf("[CACHE] Warning: cannot create cache dir %s: %v\n", dir, err)
		}
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MetricsCache{pool: pool, fileDir: dir, ttl: ttl, now: time.Now}
}

// Key builds the cache key from (company set, period type, as-of date).
// Company order does not matter; the set is sorted before joining.
func Key(companies []string, pt statement.PeriodType, asOf time.Time) string {
	sorted := make([]string, len(companies))
	copy(sorted, companies)
	sort.Strings(sorted)
	return fmt.Sprintf("%s|%s|%s", strings.Join(sorted, "+"), pt, asOf.Format("2006-01-02"))
}

// cacheEntry is the stored value for both backends.
type cacheEntry struct {
	Key      string            `json:"key"`
	Snapshot *compare.Snapshot `json:"snapshot"`
	CachedAt time.Time         `json:"cached_at"`
}

// Get returns the cached snapshot for key, or nil on a miss. Expired entries
// count as misses. Backend errors are returned but callers should treat
// them as misses too.
func (c *MetricsCache) Get(ctx context.Context, key string) (*compare.Snapshot, error) {
	if c.pool != nil {
		query := `
			SELECT data, cached_at
			FROM comparison_cache
			WHERE cache_key = $1
			LIMIT 1
		`
		var dataJSON []byte
		var cachedAt time.Time
		err := c.pool.QueryRow(ctx, query, key).Scan(&dataJSON, &cachedAt)
		if err != nil {
			return nil, nil // miss
		}
		if c.now().Sub(cachedAt) > c.ttl {
			return nil, nil // expired
		}
		var snap compare.Snapshot
		if err := json.Unmarshal(dataJSON, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal cached run: %w", err)
		}
		return &snap, nil
	}

	if c.fileDir != "" {
		return c.loadFromFile(c.path(key))
	}
	return nil, nil
}

// Put stores a snapshot under key, overwriting any previous entry.
func (c *MetricsCache) Put(ctx context.Context, key string, snap *compare.Snapshot) error {
	entry := cacheEntry{Key: key, Snapshot: snap, CachedAt: c.now()}

	if c.pool != nil {
		dataJSON, err := json.Marshal(snap)
		if err != nil {
			return fmt.Errorf("marshal run for cache: %w", err)
		}
		query := `
			INSERT INTO comparison_cache (cache_key, data, cached_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (cache_key) DO UPDATE
			SET data = EXCLUDED.data, cached_at = EXCLUDED.cached_at
		`
		_, err = c.pool.Exec(ctx, query, key, dataJSON, entry.CachedAt)
		if err != nil {
			return fmt.Errorf("store cached run: %w", err)
		}
		return nil
	}

	if c.fileDir == "" {
		return nil // no-op cache
	}
	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	return os.WriteFile(c.path(key), data, 0644)
}

// GetComparison looks up the run for (companies, period type, as-of date).
func (c *MetricsCache) GetComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time) (*compare.Snapshot, error) {
	return c.Get(ctx, Key(companies, pt, asOf))
}

// PutComparison stores the run under (companies, period type, as-of date).
func (c *MetricsCache) PutComparison(ctx context.Context, companies []string, pt statement.PeriodType, asOf time.Time, snap *compare.Snapshot) error {
	return c.Put(ctx, Key(companies, pt, asOf), snap)
}

func (c *MetricsCache) path(key string) string {
	// Keys contain | and + which are awkward in filenames.
	sanitized := strings.NewReplacer("|", "_", "+", "-", "/", "-").Replace(key)
	return filepath.Join(c.fileDir, sanitized+".json")
}

func (c *MetricsCache) loadFromFile(path string) (*compare.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil // miss
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("unmarshal cache file %s: %w", path, err)
	}
	if c.now().Sub(entry.CachedAt) > c.ttl {
		return nil, nil // expired
	}
	return entry.Snapshot, nil
}
