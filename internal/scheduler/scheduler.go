package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PicassoPreem-86/subletly-sub000/internal/config"
	"github.com/PicassoPreem-86/subletly-sub000/internal/services"
)

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron            *cron.Cron
	cfg             *config.Config
	propertyService services.IPropertyService
	isRunning       bool
}

// NewScheduler creates a new scheduler.
func NewScheduler(cfg *config.Config, propertyService services.IPropertyService) *Scheduler {
	return &Scheduler{
		cron:            cron.New(),
		cfg:             cfg,
		propertyService: propertyService,
	}
}

// Start registers the maintenance jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.cfg.ExpireSweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		n, err := s.propertyService.ExpireEnded(ctx, time.Now().UTC())
		if err != nil {
			log.Printf("Scheduler: availability sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("Scheduler: availability sweep deactivated %d listings", n)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: started (availability sweep: %s)", s.cfg.ExpireSweepSpec)
	return nil
}

// Stop stops the cron loop.
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: stopped")
	}
}
