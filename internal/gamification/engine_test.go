package gamification

import (
	"fmt"
	"testing"
	"time"

	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(now time.Time) *Engine {
	ids := 0
	return &Engine{
		Now:      func() time.Time { return now },
		Location: time.UTC,
		NewID: func() string {
			ids++
			return fmt.Sprintf("col-%d", ids)
		},
	}
}

var testDay = time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

func ephemeral() models.DailyWord {
	return models.DailyWord{
		Word:               "Ephemeral",
		Pronunciation:      "/ɪˈfɛm(ə)rəl/",
		Translation:        "Efêmero",
		Etymology:          "From Greek ephēmeros, lasting only a day.",
		Example:            "The beauty of the sunset was ephemeral.",
		ExampleTranslation: "A beleza do pôr do sol foi efêmera.",
	}
}

func TestLevelFor(t *testing.T) {
	cases := map[int]int{0: 1, 199: 1, 200: 2, 499: 2, 500: 3, 999: 3, 1000: 4, 1999: 4, 2000: 5, 50000: 5}
	for xp, level := range cases {
		assert.Equal(t, level, LevelFor(xp).Level, "xp %d", xp)
	}

	next, ok := NextLevel(1)
	require.True(t, ok)
	assert.Equal(t, 200, next.XPThreshold)

	_, ok = NextLevel(5)
	assert.False(t, ok)
}

func TestAwardXPLevelUp(t *testing.T) {
	e := newTestEngine(testDay)
	p := models.DefaultProgress()
	p.XP = 195

	out := e.AwardXP(p, 10, TagVisualize)

	assert.Equal(t, 205, out.Progress.XP)
	assert.Equal(t, 2, out.Progress.Level)
	assert.True(t, out.Celebrate)
	require.Len(t, out.Notifications, 2)
	assert.Equal(t, models.CategoryXP, out.Notifications[0].Category)
	assert.Equal(t, "+10 XP", out.Notifications[0].Message)
	assert.Equal(t, models.CategoryLevel, out.Notifications[1].Category)

	assert.Equal(t, 195, p.XP, "input is not mutated")
	assert.Equal(t, 1, p.Level)
}

func TestAwardXPSkipsSeveralLevels(t *testing.T) {
	e := newTestEngine(testDay)
	p := models.DefaultProgress()
	p.XP = 150

	out := e.AwardXP(p, 900, TagReview)

	assert.Equal(t, 4, out.Progress.Level)
	assert.Equal(t, 1050, out.Progress.XP)
}

func TestAwardXPWithoutLevelUp(t *testing.T) {
	e := newTestEngine(testDay)
	out := e.AwardXP(models.DefaultProgress(), XPRelatedWord, TagRelatedWord)

	assert.Equal(t, 5, out.Progress.XP)
	assert.False(t, out.Celebrate)
	assert.Len(t, out.Notifications, 1)
}

func TestAwardXPIgnoresNonPositive(t *testing.T) {
	e := newTestEngine(testDay)
	out := e.AwardXP(models.DefaultProgress(), -5, TagReview)

	assert.Equal(t, 0, out.Progress.XP)
	assert.Empty(t, out.Notifications)
}

func TestCheckAchievements(t *testing.T) {
	e := newTestEngine(testDay)
	p := models.DefaultProgress()
	p.LearnedWords["a"] = models.DailyWord{Word: "a"}
	p.Streak = models.StreakData{Count: 7, LastCompletionDate: "2024-03-10"}
	p.ReviewCount = 10

	out := e.CheckAchievements(p, "")

	assert.Equal(t, []string{AchievementLearned1, AchievementStreak7, AchievementReview10}, out.Progress.UnlockedAchievements)
	assert.True(t, out.Celebrate)
	assert.Len(t, out.Notifications, 3)

	again := e.CheckAchievements(out.Progress, "")
	assert.Equal(t, out.Progress.UnlockedAchievements, again.Progress.UnlockedAchievements)
	assert.Empty(t, again.Notifications)
	assert.False(t, again.Celebrate)
}

func TestPerfectLessonOnlyByTag(t *testing.T) {
	e := newTestEngine(testDay)
	p := models.DefaultProgress()

	assert.False(t, e.CheckAchievements(p, TagLessonComplete).Progress.HasAchievement(AchievementPerfectLesson))
	assert.True(t, e.CheckAchievements(p, TagPerfectQuiz).Progress.HasAchievement(AchievementPerfectLesson))
}

func TestAchievementOrder(t *testing.T) {
	ids := make([]string, 0, len(Achievements))
	for _, a := range Achievements {
		ids = append(ids, a.ID)
	}
	assert.Equal(t, []string{
		AchievementLearned1, AchievementStreak7, AchievementPerfectLesson, AchievementPractice1,
		AchievementLearned25, AchievementVisualize5, AchievementReview10, AchievementRelated10,
	}, ids)
}
