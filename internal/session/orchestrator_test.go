package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"testing"
	"time"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/migration"
	"github.com/example/verbadiem/internal/store"
	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type fakeAds struct {
	shown     int
	onDismiss func()
}

func (a *fakeAds) Show(onDismiss func()) {
	a.shown++
	a.onDismiss = onDismiss
}

type harness struct {
	store   store.Store
	ads     *fakeAds
	effects []Effects
}

func newHarness() *harness {
	return &harness{store: store.NewMemoryStore(), ads: &fakeAds{}}
}

func (h *harness) open(t *testing.T) *Orchestrator {
	t.Helper()
	ids := 0
	engine := &gamification.Engine{
		Now:      func() time.Time { return testNow },
		Location: time.UTC,
		NewID: func() string {
			ids++
			return fmt.Sprintf("c%d", ids)
		},
	}
	o, err := New(context.Background(), h.store, Options{
		Engine:    engine,
		Logger:    log.New(io.Discard, "", 0),
		Ads:       h.ads,
		OnEffects: func(fx Effects) { h.effects = append(h.effects, fx) },
		Rand:      rand.New(rand.NewSource(7)),
	})
	require.NoError(t, err)
	t.Cleanup(o.Close)
	return o
}

func (h *harness) seed(t *testing.T, p models.UserProgress) {
	t.Helper()
	require.NoError(t, migration.Save(context.Background(), h.store, p))
	require.NoError(t, h.store.Set(context.Background(), store.KeyHasVisited, "true"))
}

func word(text string) models.DailyWord {
	return models.DailyWord{Word: text, Translation: text + "-pt", Example: "I like " + text + "."}
}

func TestFirstLaunch(t *testing.T) {
	h := newHarness()
	o := h.open(t)

	assert.Equal(t, ScreenWelcome, o.Screen())
	native, target := o.Languages()
	assert.Equal(t, models.Portuguese, native)
	assert.Equal(t, models.English, target)

	require.NoError(t, o.Start())
	assert.Equal(t, ScreenHome, o.Screen())
	assert.True(t, o.ShowOnboarding())
	assert.ErrorIs(t, o.Start(), ErrWrongScreen)

	o.CompleteOnboarding()
	assert.False(t, o.ShowOnboarding())

	again := h.open(t)
	assert.Equal(t, ScreenHome, again.Screen())
	assert.False(t, again.ShowOnboarding())
}

func TestNavigateRejectsInvalidTransitions(t *testing.T) {
	h := newHarness()
	h.seed(t, models.DefaultProgress())
	o := h.open(t)

	assert.ErrorIs(t, o.Navigate(ScreenReview), ErrInvalidTransition)
	assert.ErrorIs(t, o.Navigate(ScreenLessonComplete), ErrInvalidTransition)
	assert.ErrorIs(t, o.Navigate(ScreenPractice), ErrInvalidTransition)

	require.NoError(t, o.Navigate(ScreenSettings))
	assert.ErrorIs(t, o.Navigate(ScreenLearning), ErrInvalidTransition)
}

func TestBackReturnsHome(t *testing.T) {
	h := newHarness()
	h.seed(t, models.DefaultProgress())
	o := h.open(t)

	assert.False(t, o.Back())

	require.NoError(t, o.Navigate(ScreenStatistics))
	ctx := o.ScreenContext()
	assert.True(t, o.Back())
	assert.Equal(t, ScreenHome, o.Screen())
	assert.Error(t, ctx.Err(), "leaving a screen cancels its context")
	assert.False(t, o.Back())
}

func TestCompleteLessonWithoutAd(t *testing.T) {
	h := newHarness()
	h.seed(t, models.DefaultProgress())
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenLearning))
	deferred, err := o.CompleteLesson(word("Ephemeral"), true)
	require.NoError(t, err)
	assert.False(t, deferred)
	assert.Equal(t, 0, h.ads.shown)

	assert.Equal(t, ScreenLessonComplete, o.Screen())
	lesson, ok := o.LessonWord()
	require.True(t, ok)
	assert.Equal(t, "Ephemeral", lesson.Word)

	p := o.Progress()
	assert.Equal(t, 30, p.XP)
	assert.Equal(t, 1, p.Streak.Count)

	require.Len(t, h.effects, 1)
	assert.True(t, h.effects[0].Celebrate)
	assert.Len(t, h.effects[0].Notifications, 4)
	assert.Len(t, o.Notifications(), 4)

	reloaded := h.open(t)
	assert.Equal(t, p, reloaded.Progress())
}

func TestCompleteLessonWaitsForAd(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.LessonsCompletedSinceAd = 2
	h.seed(t, seeded)
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenLearning))
	deferred, err := o.CompleteLesson(word("Serendipity"), false)
	require.NoError(t, err)
	assert.True(t, deferred)
	assert.Equal(t, 1, h.ads.shown)
	assert.True(t, o.AdPending())

	assert.Equal(t, 0, o.Progress().XP, "nothing is committed before the ad is dismissed")
	assert.Equal(t, ScreenLearning, o.Screen())
	assert.False(t, o.Back())

	_, err = o.CompleteLesson(word("Serendipity"), false)
	assert.ErrorIs(t, err, ErrAdPending)

	h.ads.onDismiss()
	h.ads.onDismiss()

	p := o.Progress()
	assert.Equal(t, 20, p.XP)
	assert.Equal(t, 0, p.LessonsCompletedSinceAd)
	assert.Len(t, p.LearnedWords, 1)
	assert.Equal(t, ScreenLessonComplete, o.Screen())
	assert.False(t, o.AdPending())
}

func TestAdPendingLocksSession(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.LessonsCompletedSinceAd = 2
	h.seed(t, seeded)
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenLearning))
	deferred, err := o.CompleteLesson(word("Serendipity"), false)
	require.NoError(t, err)
	require.True(t, deferred)

	assert.ErrorIs(t, o.Navigate(ScreenHome), ErrAdPending)
	assert.ErrorIs(t, o.Reset(context.Background(), true), ErrAdPending)
	assert.Equal(t, ScreenLearning, o.Screen())

	h.ads.onDismiss()
	assert.Equal(t, ScreenLessonComplete, o.Screen())
	assert.Len(t, o.Progress().LearnedWords, 1)

	require.NoError(t, o.Reset(context.Background(), true))
	assert.Equal(t, models.DefaultProgress(), o.Progress())
}

func TestCompleteLessonOnlyWhileLearning(t *testing.T) {
	h := newHarness()
	h.seed(t, models.DefaultProgress())
	o := h.open(t)

	_, err := o.CompleteLesson(word("Ephemeral"), true)
	assert.ErrorIs(t, err, ErrWrongScreen)
}

func TestPracticeFlow(t *testing.T) {
	h := newHarness()
	h.seed(t, models.DefaultProgress())
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenLearning))
	_, err := o.CompleteLesson(word("Lethargy"), false)
	require.NoError(t, err)

	require.NoError(t, o.Navigate(ScreenPractice))
	assert.ErrorIs(t, o.FinishReview(), ErrWrongScreen)
	require.NoError(t, o.FinishPractice())

	assert.Equal(t, ScreenHome, o.Screen())
	_, ok := o.LessonWord()
	assert.False(t, ok)

	p := o.Progress()
	assert.Equal(t, 1, p.PracticeCount)
	assert.Equal(t, 35, p.XP)
	assert.True(t, p.HasAchievement(gamification.AchievementPractice1))
}

func TestReviewFlow(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	for _, w := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		seeded.LearnedWords[w] = word(w)
	}
	h.seed(t, seeded)
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenMemoryChest))
	n, err := o.StartReview(nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, ScreenReview, o.Screen())
	assert.Len(t, o.ReviewWords(), 5)

	require.NoError(t, o.FinishReview())
	assert.Equal(t, ScreenHome, o.Screen())
	assert.Empty(t, o.ReviewWords())
	assert.Equal(t, 1, o.Progress().ReviewCount)
	assert.Equal(t, 30, o.Progress().XP)
}

func TestReviewSubsetAndEmpty(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.LearnedWords["a"] = word("a")
	seeded.LearnedWords["b"] = word("b")
	h.seed(t, seeded)
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenMemoryChest))
	n, err := o.StartReview([]string{})
	require.NoError(t, err)
	assert.Equal(t, 0, n, "an empty selection is not the whole chest")
	assert.Equal(t, ScreenMemoryChest, o.Screen())

	n, err = o.StartReview([]string{"missing"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, ScreenMemoryChest, o.Screen())

	n, err = o.StartReview([]string{"b", "missing", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "b", o.ReviewWords()[0].Word)
}

func TestCollections(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.LearnedWords["x"] = word("x")
	h.seed(t, seeded)
	o := h.open(t)

	_, err := o.CreateCollection(" ")
	assert.ErrorIs(t, err, gamification.ErrEmptyCollectionName)

	c, err := o.CreateCollection("Favorites")
	require.NoError(t, err)
	require.NoError(t, o.UpdateCollections("x", []string{c.ID}, "Travel"))

	p := h.open(t).Progress()
	require.Len(t, p.Collections, 2)
	assert.Equal(t, []string{"x"}, p.Collections[0].WordIDs)
	assert.Equal(t, "Travel", p.Collections[1].Name)

	assert.ErrorIs(t, o.UpdateCollections("nope", nil, ""), gamification.ErrUnknownWord)
}

func TestLanguagesSwap(t *testing.T) {
	h := newHarness()
	o := h.open(t)

	require.NoError(t, o.SetTargetLanguage(models.Portuguese))
	native, target := o.Languages()
	assert.Equal(t, models.English, native)
	assert.Equal(t, models.Portuguese, target)

	require.NoError(t, o.SetNativeLanguage(models.Spanish))
	native, target = o.Languages()
	assert.Equal(t, models.Spanish, native)
	assert.Equal(t, models.Portuguese, target)

	assert.ErrorIs(t, o.SetNativeLanguage("xx"), ErrUnsupportedLanguage)

	native, target = h.open(t).Languages()
	assert.Equal(t, models.Spanish, native)
	assert.Equal(t, models.Portuguese, target)
}

func TestReset(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.XP = 300
	h.seed(t, seeded)
	o := h.open(t)
	require.NoError(t, o.SetNativeLanguage(models.French))

	assert.ErrorIs(t, o.Reset(context.Background(), false), ErrResetNotConfirmed)
	assert.Equal(t, 300, o.Progress().XP)

	require.NoError(t, o.Reset(context.Background(), true))
	assert.Equal(t, models.DefaultProgress(), o.Progress())
	assert.Equal(t, ScreenWelcome, o.Screen())
	native, _ := o.Languages()
	assert.Equal(t, models.Portuguese, native)

	_, ok, err := h.store.Get(context.Background(), store.KeyUserData)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRefreshStreak(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.Streak = models.StreakData{Count: 4, LastCompletionDate: "2024-03-01"}
	seeded.LongestStreak = 4
	h.seed(t, seeded)
	o := h.open(t)

	assert.True(t, o.RefreshStreak())
	assert.False(t, o.RefreshStreak())
	assert.Equal(t, 0, h.open(t).Progress().Streak.Count)
}

func TestHomeChecksAchievements(t *testing.T) {
	h := newHarness()
	seeded := models.DefaultProgress()
	seeded.RelatedWordCount = 10
	h.seed(t, seeded)
	o := h.open(t)

	require.NoError(t, o.Navigate(ScreenStatistics))
	require.True(t, o.Back())

	assert.True(t, o.Progress().HasAchievement(gamification.AchievementRelated10))
	require.Len(t, h.effects, 1)
	assert.True(t, h.effects[0].Celebrate)
}
