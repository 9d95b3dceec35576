package cache

import (
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"bob/internal/domain"
	"bob/internal/port"
)

type cacheKey struct {
	hash uint64
	lang domain.Language
}

// Result is a cached analysis outcome. Err is nil or the error Analyze
// returned alongside Structure.
type Result struct {
	Structure domain.CodeStructure
	Err       error
}

// AnalysisCache holds analysis results keyed by content hash and language.
// Stored structures are shared between callers and must not be modified.
type AnalysisCache struct {
	entries *lru.Cache[cacheKey, Result]
	hits    atomic.Int64
	misses  atomic.Int64
}

func NewAnalysisCache(maxSize int) (*AnalysisCache, error) {
	if maxSize <= 0 {
		maxSize = 1024
	}
	entries, err := lru.New[cacheKey, Result](maxSize)
	if err != nil {
		return nil, err
	}
	return &AnalysisCache{entries: entries}, nil
}

func (c *AnalysisCache) Get(code string, lang domain.Language) (Result, bool) {
	res, ok := c.entries.Get(cacheKey{xxhash.Sum64String(code), lang})
	if !ok {
		c.misses.Add(1)
		return Result{}, false
	}
	c.hits.Add(1)
	return res, true
}

func (c *AnalysisCache) Put(code string, lang domain.Language, res Result) {
	c.entries.Add(cacheKey{xxhash.Sum64String(code), lang}, res)
}

func (c *AnalysisCache) Purge() {
	c.entries.Purge()
}

func (c *AnalysisCache) Len() int {
	return c.entries.Len()
}

// Stats returns hit and miss counts since creation.
func (c *AnalysisCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// CachedAnalyzer serves repeated buffers from an AnalysisCache.
type CachedAnalyzer struct {
	analyzer port.CodeAnalyzer
	cache    *AnalysisCache
}

func NewCachedAnalyzer(analyzer port.CodeAnalyzer, cache *AnalysisCache) *CachedAnalyzer {
	return &CachedAnalyzer{
		analyzer: analyzer,
		cache:    cache,
	}
}

func (a *CachedAnalyzer) Analyze(code string, lang domain.Language) (domain.CodeStructure, error) {
	if res, hit := a.cache.Get(code, lang); hit {
		return res.Structure, res.Err
	}

	// Results are deterministic, so failures are cached too.
	structure, err := a.analyzer.Analyze(code, lang)
	a.cache.Put(code, lang, Result{Structure: structure, Err: err})

	return structure, err
}
