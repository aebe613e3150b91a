package migration

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"github.com/example/verbadiem/internal/store"
	"github.com/example/verbadiem/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quietLogger = log.New(io.Discard, "", 0)

func TestMigrateEmpty(t *testing.T) {
	res, err := Migrate(Snapshot{})
	require.NoError(t, err)

	assert.Equal(t, VersionEmpty, res.Version)
	assert.Equal(t, models.DefaultProgress(), res.Progress)
	assert.Empty(t, res.Obsolete)
}

func TestMigrateWordListToMap(t *testing.T) {
	data := `{
		"streak": {"count": 2, "lastCompletionDate": "2024-03-01"},
		"longestStreak": 4,
		"learnedWords": [
			{"word": "Ephemeral", "translation": "Efêmero"},
			{"word": "Lethargy", "translation": "Letargia"},
			{"word": "Ephemeral", "translation": "duplicate"}
		],
		"xp": 60,
		"level": 1,
		"unlockedAchievements": ["LEARNED_1"],
		"practiceCount": 1, "visualizeCount": 0, "reviewCount": 0, "relatedWordCount": 0,
		"lessonsCompletedSinceAd": 1
	}`

	res, err := Migrate(Snapshot{UserData: data})
	require.NoError(t, err)

	assert.Equal(t, VersionWordList, res.Version)
	require.Len(t, res.Progress.LearnedWords, 2)
	assert.Equal(t, "Efêmero", res.Progress.LearnedWords["Ephemeral"].Translation)
	assert.Equal(t, []models.Collection{}, res.Progress.Collections)
	assert.Equal(t, 2, res.Progress.Streak.Count)
	assert.Equal(t, 4, res.Progress.LongestStreak)
	assert.Equal(t, 1, res.Progress.LessonsCompletedSinceAd)
	assert.Empty(t, res.Obsolete)
}

func TestMigrateCountersFromLegacyKeys(t *testing.T) {
	data := `{"learnedWords": {}, "xp": 0, "level": 1, "reviewCount": 7}`

	res, err := Migrate(Snapshot{
		UserData: data,
		Counters: map[string]string{
			store.LegacyKeyPracticeCount:  "3",
			store.LegacyKeyVisualizeCount: "junk",
			store.LegacyKeyReviewCount:    "99",
		},
	})
	require.NoError(t, err)

	assert.Equal(t, VersionNoCounters, res.Version)
	assert.Equal(t, 3, res.Progress.PracticeCount)
	assert.Equal(t, 0, res.Progress.VisualizeCount)
	assert.Equal(t, 7, res.Progress.ReviewCount, "present counters are kept")
	assert.Equal(t, 0, res.Progress.RelatedWordCount)
	assert.Equal(t, 0, res.Progress.LessonsCompletedSinceAd)
	assert.ElementsMatch(t, []string{
		store.LegacyKeyPracticeCount,
		store.LegacyKeyVisualizeCount,
		store.LegacyKeyReviewCount,
		store.LegacyKeyRelatedCount,
	}, res.Obsolete)
}

func TestMigrateMissingAdCounter(t *testing.T) {
	data := `{"learnedWords": {}, "collections": [], "xp": 0, "level": 1,
		"practiceCount": 0, "visualizeCount": 0, "reviewCount": 0, "relatedWordCount": 0}`

	res, err := Migrate(Snapshot{UserData: data})
	require.NoError(t, err)

	assert.Equal(t, VersionNoAdCounter, res.Version)
	assert.Equal(t, 0, res.Progress.LessonsCompletedSinceAd)
	assert.Empty(t, res.Obsolete)
}

func TestMigrateCurrentRecordFillsNewFields(t *testing.T) {
	current := models.DefaultProgress()
	current.XP = 520
	current.Level = 3
	current.Collections = []models.Collection{{ID: "c1", Name: "Verbs", WordIDs: []string{"run"}}}
	current.LearnedWords["run"] = models.DailyWord{Word: "run"}
	data, err := json.Marshal(current)
	require.NoError(t, err)

	res, err := Migrate(Snapshot{UserData: string(data)})
	require.NoError(t, err)

	assert.Equal(t, VersionCurrent, res.Version)
	assert.Equal(t, current, res.Progress)
}

func TestMigrateRederivesLevel(t *testing.T) {
	data := `{"xp": 250, "level": 5, "streak": {"count": 9, "lastCompletionDate": "2024-01-01"}, "longestStreak": 3,
		"practiceCount": 0, "visualizeCount": 0, "reviewCount": 0, "relatedWordCount": 0, "lessonsCompletedSinceAd": 0}`

	res, err := Migrate(Snapshot{UserData: data})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Progress.Level)
	assert.Equal(t, 9, res.Progress.LongestStreak)
	assert.NotNil(t, res.Progress.LearnedWords)
	assert.NotNil(t, res.Progress.UnlockedAchievements)
}

func TestMigrateLegacyWords(t *testing.T) {
	words := make([]models.DailyWord, 0, 11)
	for _, w := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k"} {
		words = append(words, models.DailyWord{Word: w})
	}
	data, err := json.Marshal(words)
	require.NoError(t, err)

	res, err := Migrate(Snapshot{LegacyWords: string(data)})
	require.NoError(t, err)

	assert.Equal(t, VersionLegacyWords, res.Version)
	assert.Len(t, res.Progress.LearnedWords, 11)
	assert.Equal(t, 220, res.Progress.XP)
	assert.Equal(t, 2, res.Progress.Level)
	assert.ElementsMatch(t, []string{
		store.LegacyKeyLearnedWords, store.LegacyKeyStreak, store.LegacyKeyLongestStreak,
	}, res.Obsolete)
}

func TestMigrateRecordWinsOverLegacyWords(t *testing.T) {
	res, err := Migrate(Snapshot{
		UserData:    `{"xp": 40, "practiceCount": 0, "visualizeCount": 0, "reviewCount": 0, "relatedWordCount": 0, "lessonsCompletedSinceAd": 0}`,
		LegacyWords: `[{"word": "old"}]`,
	})
	require.NoError(t, err)

	assert.Equal(t, 40, res.Progress.XP)
	assert.Empty(t, res.Progress.LearnedWords)
}

func TestMigrateParseErrors(t *testing.T) {
	for name, snap := range map[string]Snapshot{
		"broken record":       {UserData: "{not json"},
		"null record":         {UserData: "null"},
		"broken legacy words": {LegacyWords: "[{"},
		"bad word list":       {UserData: `{"learnedWords": [1, 2]}`},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Migrate(snap)
			assert.Error(t, err)
		})
	}
}

func TestLoadPersistsAndCleansUp(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.LegacyKeyLearnedWords, `[{"word": "Serendipity"}]`))
	require.NoError(t, st.Set(ctx, store.LegacyKeyStreak, "4"))
	require.NoError(t, st.Set(ctx, store.LegacyKeyLongestStreak, "6"))

	progress, err := Load(ctx, st, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, 20, progress.XP)
	assert.Contains(t, progress.LearnedWords, "Serendipity")

	for _, key := range []string{store.LegacyKeyLearnedWords, store.LegacyKeyStreak, store.LegacyKeyLongestStreak} {
		_, ok, err := st.Get(ctx, key)
		require.NoError(t, err)
		assert.False(t, ok, key)
	}

	raw, ok, err := st.Get(ctx, store.KeyUserData)
	require.NoError(t, err)
	require.True(t, ok)

	var saved models.UserProgress
	require.NoError(t, json.Unmarshal([]byte(raw), &saved))
	assert.Equal(t, progress, saved)

	// a second load sees the current layout and changes nothing
	again, err := Load(ctx, st, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, progress, again)
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.Set(ctx, store.KeyUserData, "garbage"))

	progress, err := Load(ctx, st, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProgress(), progress)
}

func TestLoadEmptyStoreWritesNothing(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	progress, err := Load(ctx, st, quietLogger)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultProgress(), progress)

	_, ok, err := st.Get(ctx, store.KeyUserData)
	require.NoError(t, err)
	assert.False(t, ok)
}

type unreachableStore struct {
	store.Store
	writes int
}

func (s *unreachableStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (s *unreachableStore) Set(ctx context.Context, key, value string) error {
	s.writes++
	return nil
}

func TestLoadReportsStoreErrors(t *testing.T) {
	st := &unreachableStore{Store: store.NewMemoryStore()}

	_, err := Load(context.Background(), st, quietLogger)
	assert.ErrorContains(t, err, "connection refused")
	assert.Zero(t, st.writes)
}
