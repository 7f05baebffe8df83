package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/truthfi/truthfi/internal/config"
	"github.com/truthfi/truthfi/internal/trending"
)

// Service handles scheduling of background tasks
type Service struct {
	config   *config.Config
	trending *trending.Service
	cron     *cron.Cron
}

// NewService creates a new scheduler service
func NewService(cfg *config.Config, trendingService *trending.Service) *Service {
	return &Service{
		config:   cfg,
		trending: trendingService,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start begins the scheduled trending refresh
func (s *Service) Start() error {
	spec := fmt.Sprintf("0 */%d * * * *", s.config.TrendingRefreshMinutes)

	_, err := s.cron.AddFunc(spec, func() {
		logrus.Debug("Starting scheduled trending refresh")
		if err := s.trending.Refresh(context.Background()); err != nil {
			logrus.Errorf("Scheduled trending refresh failed: %v", err)
		}
	})

	if err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started, trending refresh every %d minutes", s.config.TrendingRefreshMinutes)
	return nil
}

// Stop stops the scheduler
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}
