// Package core defines the ports between the review services and their adapters,
// plus small adapter-agnostic services built directly on those ports.
package core

import (
	"context"
	"regexp"
	"time"

	"github.com/target/prreview-api/internal/domain/model"
)

// CacheRepository defines the interface for caching operations.
// The core defines the interface and the data layer provides implementations.
type CacheRepository interface {
	// Set stores a value in the cache with the given key and TTL.
	// If TTL is 0, the key will not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value from the cache by key.
	// Returns nil if the key doesn't exist or has expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key from the cache.
	// Returns true if the key was deleted, false if it didn't exist.
	Delete(ctx context.Context, key string) (bool, error)

	// Health checks the health of the cache connection.
	Health(ctx context.Context) error
}

// commitSHARe matches full hex object ids; only these name immutable content.
var commitSHARe = regexp.MustCompile(`^[0-9a-f]{40}([0-9a-f]{24})?$`)

// ContentCacheConfig holds configuration for file content caching.
type ContentCacheConfig struct {
	TTL time.Duration `json:"ttl"`
}

// DefaultContentCacheConfig returns a ContentCacheConfig with sensible defaults.
func DefaultContentCacheConfig() ContentCacheConfig {
	return ContentCacheConfig{
		TTL: 30 * time.Minute,
	}
}

// ContentCacheService caches fetched file content for immutable revisions.
// A nil *ContentCacheService is valid and caches nothing.
type ContentCacheService struct {
	cache CacheRepository
	ttl   time.Duration
}

// NewContentCacheService creates a new ContentCacheService. A nil cache yields nil.
func NewContentCacheService(cache CacheRepository, cfg ContentCacheConfig) *ContentCacheService {
	if cache == nil {
		return nil
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultContentCacheConfig().TTL
	}
	return &ContentCacheService{cache: cache, ttl: cfg.TTL}
}

// Cacheable reports whether content at revision may be cached.
func Cacheable(revision string) bool {
	return commitSHARe.MatchString(revision)
}

// Get returns cached content. The boolean is false on a miss or for uncacheable revisions.
func (s *ContentCacheService) Get(
	ctx context.Context,
	ref model.RepositoryRef,
	path, revision string,
) (string, bool, error) {
	if s == nil || !Cacheable(revision) {
		return "", false, nil
	}
	b, err := s.cache.Get(ctx, contentKey(ref, path, revision))
	if err != nil {
		return "", false, err
	}
	if b == nil {
		return "", false, nil
	}
	return string(b), true, nil
}

// Put stores content for an immutable revision; other revisions are ignored.
func (s *ContentCacheService) Put(ctx context.Context, ref model.RepositoryRef, path, revision, content string) error {
	if s == nil || !Cacheable(revision) {
		return nil
	}
	return s.cache.Set(ctx, contentKey(ref, path, revision), []byte(content), s.ttl)
}

func contentKey(ref model.RepositoryRef, path, revision string) string {
	return "content:" + ref.Host + "/" + ref.FullName() + "@" + revision + ":" + path
}
