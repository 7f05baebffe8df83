package sources

import (
	"context"

	"github.com/truthfi/truthfi/internal/models"
)

// Source is the normalization boundary for one social platform. Adapters
// fetch raw platform records and return uniform posts plus whatever author
// metadata the platform exposes. Adapters without credentials report
// disabled and are skipped.
type Source interface {
	GetName() string
	IsEnabled() bool
	// FetchPosts returns recent posts mentioning the token symbol, capped
	// at limit, with author metadata keyed by author id.
	FetchPosts(ctx context.Context, symbol string, limit int) ([]models.Post, map[string]models.Author, error)
	// FetchRecent returns recent posts regardless of symbol, for trending
	// aggregation. Sources that cannot serve this cheaply return nil.
	FetchRecent(ctx context.Context, limit int) ([]models.Post, error)
}
