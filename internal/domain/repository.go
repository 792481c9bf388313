package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ShoppingClient defines the interface for the visual-identification and
// shopping-search collaborators (both served by the same upstream API).
type ShoppingClient interface {
	// Identify returns the ranked raw titles of visual matches for an image URL.
	Identify(ctx context.Context, imageURL string) ([]string, error)
	// Search returns raw shopping-result records for a text query.
	Search(ctx context.Context, query string) ([]RawSearchResult, error)
}

// ImageUploader uploads raw image bytes and returns a public URL.
type ImageUploader interface {
	Upload(ctx context.Context, data []byte, fileName string) (string, error)
}

// NameCleaner optionally rewrites a raw visual-match title into a short
// product name. Implementations may call an external language model; a
// failed cleanup must return an error so the caller can fall back to the
// deterministic sanitizer.
type NameCleaner interface {
	Clean(ctx context.Context, rawTitle string) (string, error)
}
