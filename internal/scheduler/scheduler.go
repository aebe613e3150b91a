package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/session"
	"github.com/example/verbadiem/pkg/models"
	"github.com/go-co-op/gocron"
)

// Scheduler runs the daily streak maintenance
type Scheduler struct {
	scheduler    *gocron.Scheduler
	registry     *session.Registry
	engine       *gamification.Engine
	notifier     Notifier
	reminderTime string
	logger       *log.Logger
}

// Notifier interface for sending notifications
type Notifier interface {
	SendStreakReminder(profileID int64, streak int) error
}

// New creates a new scheduler instance. reminderTime is "HH:MM" in the
// engine's location.
func New(registry *session.Registry, engine *gamification.Engine, notifier Notifier, reminderTime string, logger *log.Logger) *Scheduler {
	loc := engine.Location
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Scheduler{
		scheduler:    gocron.NewScheduler(loc),
		registry:     registry,
		engine:       engine,
		notifier:     notifier,
		reminderTime: reminderTime,
		logger:       logger,
	}
}

// Start schedules the daily check and runs the scheduler in the background
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(1).Day().At(s.reminderTime).Do(s.runDailyCheck); err != nil {
		return fmt.Errorf("failed to schedule daily check: %w", err)
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runDailyCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.RunDailyCheck(ctx); err != nil {
		s.logger.Printf("Error running daily check: %v", err)
	}
}

// RunDailyCheck zeroes lapsed streaks of every profile and reminds learners
// whose streak ends today unless they complete a lesson. It returns the
// number of reminders sent.
func (s *Scheduler) RunDailyCheck(ctx context.Context) (int, error) {
	profiles, err := s.registry.Profiles(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list profiles: %w", err)
	}

	sent := 0
	for _, id := range profiles {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		var progress models.UserProgress
		err := s.registry.Visit(ctx, id, func(o *session.Orchestrator) {
			if o.RefreshStreak() {
				s.logger.Printf("Streak of profile %d lapsed", id)
			}
			progress = o.Progress()
		})
		if err != nil {
			s.logger.Printf("Error checking profile %d: %v", id, err)
			continue
		}

		if !s.engine.StreakAlive(progress) || s.notifier == nil {
			continue
		}
		if err := s.notifier.SendStreakReminder(id, progress.Streak.Count); err != nil {
			s.logger.Printf("Error sending reminder to profile %d: %v", id, err)
			continue
		}
		sent++
	}
	return sent, nil
}
