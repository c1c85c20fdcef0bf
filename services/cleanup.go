// services/cleanup.go - background housekeeping
package services

import (
	"log"
	"time"

	"bowlingmanager/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CleanupService purges expired verification tokens on a schedule.
type CleanupService struct {
	db    *gorm.DB
	sched gocron.Scheduler
}

func NewCleanupService(db *gorm.DB) *CleanupService {
	return &CleanupService{db: db}
}

// Start launches the hourly cleanup job. Call Stop on shutdown.
func (s *CleanupService) Start() error {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	s.sched = sched

	_, err = sched.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(func() {
			res := s.db.Where("expires_at < ?", time.Now()).
				Delete(&models.VerificationToken{})
			if res.Error != nil {
				log.Printf("[Cleanup] token purge failed: %v", res.Error)
				return
			}
			if res.RowsAffected > 0 {
				log.Printf("[Cleanup] purged %d expired verification tokens", res.RowsAffected)
			}
		}),
	)
	if err != nil {
		return err
	}

	sched.Start()
	return nil
}

func (s *CleanupService) Stop() {
	if s.sched != nil {
		_ = s.sched.Shutdown()
	}
}
