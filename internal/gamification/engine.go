// Package gamification computes progress transitions: XP and levels, streaks,
// achievements, ad frequency and collections. Every operation takes the current
// progress and returns the next one without mutating its input.
package gamification

import (
	"errors"
	"fmt"
	"time"

	"github.com/example/verbadiem/pkg/models"
	"github.com/google/uuid"
)

var (
	// ErrEmptyCollectionName is returned when a collection name is blank
	ErrEmptyCollectionName = errors.New("collection name cannot be empty")
	// ErrUnknownWord is returned when a word is not in the learned set
	ErrUnknownWord = errors.New("word is not learned")
	// ErrInvalidWord is returned for a lesson word without text
	ErrInvalidWord = errors.New("word text cannot be empty")
)

// Outcome is the result of a transition: the next progress plus the side
// announcements the caller should render.
type Outcome struct {
	Progress      models.UserProgress
	Notifications []models.Notification
	// Celebrate asks for confetti and haptic feedback
	Celebrate bool
	// AdDue is set by CompleteLesson when the ad counter wrapped around
	AdDue bool
}

func (o *Outcome) notify(category models.NotificationCategory, message, icon string) {
	o.Notifications = append(o.Notifications, models.Notification{
		Category: category,
		Message:  message,
		Icon:     icon,
	})
}

// then folds a follow-up outcome into o
func (o Outcome) then(next Outcome) Outcome {
	o.Progress = next.Progress
	o.Notifications = append(o.Notifications, next.Notifications...)
	o.Celebrate = o.Celebrate || next.Celebrate
	o.AdDue = o.AdDue || next.AdDue
	return o
}

// Engine holds the collaborators of the reducers: a clock for calendar dates
// and an id generator for collections.
type Engine struct {
	Now      func() time.Time
	Location *time.Location
	NewID    func() string
}

// NewEngine returns an engine using the wall clock in loc
func NewEngine(loc *time.Location) *Engine {
	if loc == nil {
		loc = time.Local
	}
	return &Engine{
		Now:      time.Now,
		Location: loc,
		NewID:    uuid.NewString,
	}
}

// Today returns the local calendar date
func (e *Engine) Today() string {
	return e.now().Format(models.DateLayout)
}

// Yesterday returns the local calendar date before Today
func (e *Engine) Yesterday() string {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day()-1, 12, 0, 0, 0, now.Location()).Format(models.DateLayout)
}

func (e *Engine) now() time.Time {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	if e.Location != nil {
		return now().In(e.Location)
	}
	return now()
}

// AwardXP adds amount XP, re-derives the level and evaluates achievements on
// the updated record. Non-positive amounts leave the progress unchanged.
func (e *Engine) AwardXP(p models.UserProgress, amount int, tag string) Outcome {
	out := Outcome{Progress: p.Clone()}
	if amount <= 0 {
		return out
	}

	out.notify(models.CategoryXP, fmt.Sprintf("+%d XP", amount), "")

	next := &out.Progress
	next.XP += amount

	if upcoming, ok := NextLevel(next.Level); ok && next.XP >= upcoming.XPThreshold {
		reached := LevelFor(next.XP)
		out.notify(models.CategoryLevel, fmt.Sprintf("Level up! You are now level %d: %s", reached.Level, reached.Name), "trophy")
		out.Celebrate = true
	}
	next.Level = LevelFor(next.XP).Level

	return out.then(e.CheckAchievements(out.Progress, tag))
}

// CheckAchievements unlocks every achievement whose condition holds. The
// PERFECT_LESSON achievement is unlocked only when tag is TagPerfectQuiz.
func (e *Engine) CheckAchievements(p models.UserProgress, tag string) Outcome {
	out := Outcome{Progress: p.Clone()}

	for _, a := range Achievements {
		if out.Progress.HasAchievement(a.ID) {
			continue
		}

		met := a.Condition(out.Progress)
		if a.ID == AchievementPerfectLesson && tag == TagPerfectQuiz {
			met = true
		}
		if !met {
			continue
		}

		out.Progress.UnlockedAchievements = append(out.Progress.UnlockedAchievements, a.ID)
		out.notify(models.CategoryAchievement, "Achievement unlocked: "+a.Name, "medal")
		out.Celebrate = true
	}
	return out
}
