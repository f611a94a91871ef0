package services

import (
	"log"
	"time"

	"conservation-tracker/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// StreakFreezeCap is the maximum number of banked freeze credits.
const StreakFreezeCap = 3

// StartActivationScheduler flips upcoming events to active once their start
// time passes. Runs every minute.
func (s *EventService) StartActivationScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			n, err := s.ActivateDueEvents()
			if err != nil {
				log.Printf("[Scheduler] event activation failed: %v", err)
				return
			}
			if n > 0 {
				log.Printf("✅ Auto-activated %d event(s)", n)
			}
		}),
	)
}

// StartFreezeGrantScheduler hands out one streak freeze per week to everyone
// below the cap. Freezes are the only way to bridge a missed check-in day.
func (s *RewardService) StartFreezeGrantScheduler() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.WeeklyJob(1, gocron.NewWeekdays(time.Monday), gocron.NewAtTimes(gocron.NewAtTime(0, 0, 0))),
		gocron.NewTask(func() {
			res := s.DB.Model(&models.UserProgress{}).
				Where("streak_freezes < ?", StreakFreezeCap).
				UpdateColumn("streak_freezes", gorm.Expr("streak_freezes + 1"))
			if res.Error != nil {
				log.Printf("[Scheduler] freeze grant failed: %v", res.Error)
				return
			}
			log.Printf("🧊 Weekly freeze grant: %d user(s) credited", res.RowsAffected)
		}),
	)
}
