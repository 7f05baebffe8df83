package trending

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/models"
)

// RecentFetcher supplies recent posts for trending aggregation.
type RecentFetcher func(ctx context.Context, limit int) ([]models.Post, error)

// maxTrending caps the served ranking size.
const maxTrending = 50

// Service maintains a periodically refreshed snapshot of the trending
// ranking. Serving always succeeds: a failed refresh keeps the previous
// snapshot, and at most one refresh computes at a time.
type Service struct {
	fetch      RecentFetcher
	postSample int

	mu          sync.RWMutex
	snapshot    []models.TrendingToken
	refreshedAt time.Time
	refreshing  bool
}

// NewService creates a trending service over the given fetcher.
func NewService(fetch RecentFetcher, postSample int) *Service {
	return &Service{fetch: fetch, postSample: postSample}
}

// Refresh recomputes the snapshot. Concurrent calls beyond the first are
// no-ops while a refresh is in flight.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.refreshing {
		s.mu.Unlock()
		return nil
	}
	s.refreshing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.refreshing = false
		s.mu.Unlock()
	}()

	posts, err := s.fetch(ctx, s.postSample)
	if err != nil {
		return fmt.Errorf("trending refresh failed: %w", err)
	}
	if len(posts) == 0 {
		logrus.Debug("Trending refresh returned no posts, keeping previous snapshot")
		return nil
	}

	ranked := Rank(posts, maxTrending)

	s.mu.Lock()
	s.snapshot = ranked
	s.refreshedAt = time.Now()
	s.mu.Unlock()

	logrus.Infof("Trending snapshot refreshed: %d symbols from %d posts", len(ranked), len(posts))
	return nil
}

// Trending returns the current snapshot, refreshing lazily when empty.
// Any refresh failure degrades to the last known (possibly empty) ranking.
func (s *Service) Trending(ctx context.Context, limit int) []models.TrendingToken {
	s.mu.RLock()
	empty := len(s.snapshot) == 0
	s.mu.RUnlock()

	if empty {
		if err := s.Refresh(ctx); err != nil {
			logrus.Errorf("Lazy trending refresh failed: %v", err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.snapshot) {
		limit = len(s.snapshot)
	}
	out := make([]models.TrendingToken, limit)
	copy(out, s.snapshot[:limit])
	return out
}

// RefreshedAt reports when the snapshot was last recomputed.
func (s *Service) RefreshedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshedAt
}
