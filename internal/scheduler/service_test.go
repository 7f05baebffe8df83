package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/models"
	"github.com/truthfi/truthfi/internal/trending"
)

func TestSchedulerStartStop(t *testing.T) {
	cfg := &config.Config{TrendingRefreshMinutes: 15}
	fetch := func(ctx context.Context, limit int) ([]models.Post, error) { return nil, nil }

	svc := NewService(cfg, trending.NewService(fetch, 10))

	assert.NoError(t, svc.Start())
	svc.Stop()
}
