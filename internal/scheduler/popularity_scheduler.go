package scheduler

import (
	"github.com/robfig/cron/v3"
	"github.com/scentarena/fragrance-battle-backend/internal/app/service"
	"github.com/scentarena/fragrance-battle-backend/pkg/logger"
)

// PopularityScheduler rebuilds fragrance popularity scores on a nightly cron.
type PopularityScheduler struct {
	cron              *cron.Cron
	popularityService service.PopularityService
}

func NewPopularityScheduler(popularityService service.PopularityService) *PopularityScheduler {
	return &PopularityScheduler{
		cron:              cron.New(),
		popularityService: popularityService,
	}
}

func (s *PopularityScheduler) Start() error {
	// Nightly at 03:30, after the day's battles have settled.
	_, err := s.cron.AddFunc("30 3 * * *", func() {
		logger.Info("Starting scheduled popularity recalculation", nil)

		if err := s.popularityService.RecalculateAll(); err != nil {
			logger.Error("Scheduled popularity recalculation failed", err)
			return
		}
	})

	if err != nil {
		logger.Error("Failed to add cron job for popularity recalculation", err)
		return err
	}

	s.cron.Start()
	logger.Info("Popularity scheduler started (daily at 03:30)", nil)

	return nil
}

func (s *PopularityScheduler) Stop() {
	logger.Info("Stopping popularity scheduler", nil)
	s.cron.Stop()
}
