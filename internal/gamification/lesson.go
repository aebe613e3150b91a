package gamification

import (
	"strings"

	"github.com/example/verbadiem/pkg/models"
)

// ShouldShowAd reports whether completing the next lesson triggers an ad.
// It must be evaluated before the lesson is committed.
func ShouldShowAd(p models.UserProgress) bool {
	return p.LessonsCompletedSinceAd >= AdFrequency-1
}

// CompleteLesson records a finished lesson. The first completion of a calendar
// day awards XP and extends the streak; later ones only record the word and
// advance the ad counter.
func (e *Engine) CompleteLesson(p models.UserProgress, word models.DailyWord, isFirstTry bool) (Outcome, error) {
	if strings.TrimSpace(word.Word) == "" {
		return Outcome{Progress: p.Clone()}, ErrInvalidWord
	}

	today := e.Today()
	adDue := ShouldShowAd(p)
	out := Outcome{Progress: p.Clone()}

	if p.Streak.LastCompletionDate != today {
		out = out.then(e.AwardXP(out.Progress, XPLessonComplete, TagLessonComplete))
		if isFirstTry {
			out = out.then(e.AwardXP(out.Progress, XPPerfectQuiz, TagPerfectQuiz))
		}

		count := 1
		if p.Streak.LastCompletionDate == e.Yesterday() {
			count = p.Streak.Count + 1
		}
		out.Progress.Streak = models.StreakData{Count: count, LastCompletionDate: today}
		if count > out.Progress.LongestStreak {
			out.Progress.LongestStreak = count
		}
	}

	if _, ok := out.Progress.LearnedWords[word.Word]; !ok {
		out.Progress.LearnedWords[word.Word] = word
	}

	if adDue {
		out.Progress.LessonsCompletedSinceAd = 0
		out.AdDue = true
	} else {
		out.Progress.LessonsCompletedSinceAd++
	}

	return out.then(e.CheckAchievements(out.Progress, "")), nil
}

// RefreshStreak zeroes a streak whose last completion is older than yesterday.
// The boolean reports whether anything changed.
func (e *Engine) RefreshStreak(p models.UserProgress) (models.UserProgress, bool) {
	last := p.Streak.LastCompletionDate
	if p.Streak.Count == 0 || last == e.Today() || last == e.Yesterday() {
		return p, false
	}
	next := p.Clone()
	next.Streak.Count = 0
	return next, true
}

// StreakAlive reports whether the streak can still be extended today
func (e *Engine) StreakAlive(p models.UserProgress) bool {
	return p.Streak.Count > 0 && p.Streak.LastCompletionDate == e.Yesterday()
}
