package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/store"
	"github.com/example/verbadiem/pkg/models"
)

// Result is the outcome of a migration
type Result struct {
	Progress models.UserProgress
	Version  Version
	// Obsolete lists keys the caller should delete
	Obsolete []string
}

// Migrate converts a snapshot into the current record. It does not touch any
// store; callers persist Progress and delete Obsolete themselves.
func Migrate(s Snapshot) (Result, error) {
	switch {
	case s.UserData != "":
		return migrateRecord(s)
	case s.LegacyWords != "":
		return migrateLegacyWords(s.LegacyWords)
	default:
		return Result{Progress: models.DefaultProgress(), Version: VersionEmpty}, nil
	}
}

func migrateRecord(s Snapshot) (Result, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s.UserData), &fields); err != nil {
		return Result{}, fmt.Errorf("failed to parse user data: %w", err)
	}
	if fields == nil {
		return Result{}, fmt.Errorf("failed to parse user data: not an object")
	}

	res := Result{Version: VersionCurrent}
	older := func(v Version) {
		if v < res.Version {
			res.Version = v
		}
	}

	if raw, ok := fields["learnedWords"]; ok && isList(raw) {
		var list []models.DailyWord
		if err := json.Unmarshal(raw, &list); err != nil {
			return Result{}, fmt.Errorf("failed to parse learned words: %w", err)
		}
		encoded, err := json.Marshal(keyByWord(list))
		if err != nil {
			return Result{}, fmt.Errorf("failed to encode learned words: %w", err)
		}
		fields["learnedWords"] = encoded
		older(VersionWordList)
	}

	countersMissing := false
	for _, c := range counterFields {
		if _, ok := fields[c.Field]; ok {
			continue
		}
		countersMissing = true
		fields[c.Field] = json.RawMessage(strconv.Itoa(parseCounter(s.Counters[c.LegacyKey])))
	}
	if countersMissing {
		older(VersionNoCounters)
		for _, c := range counterFields {
			res.Obsolete = append(res.Obsolete, c.LegacyKey)
		}
	}

	if _, ok := fields["lessonsCompletedSinceAd"]; !ok {
		fields["lessonsCompletedSinceAd"] = json.RawMessage("0")
		older(VersionNoAdCounter)
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode user data: %w", err)
	}
	progress := models.DefaultProgress()
	if err := json.Unmarshal(merged, &progress); err != nil {
		return Result{}, fmt.Errorf("failed to decode user data: %w", err)
	}

	res.Progress = normalize(progress)
	return res, nil
}

func migrateLegacyWords(raw string) (Result, error) {
	var list []models.DailyWord
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return Result{}, fmt.Errorf("failed to parse legacy words: %w", err)
	}

	progress := models.DefaultProgress()
	progress.LearnedWords = keyByWord(list)
	progress.XP = len(list) * gamification.XPLessonComplete
	progress.Level = gamification.LevelFor(progress.XP).Level

	return Result{
		Progress: progress,
		Version:  VersionLegacyWords,
		Obsolete: []string{store.LegacyKeyLearnedWords, store.LegacyKeyStreak, store.LegacyKeyLongestStreak},
	}, nil
}

// keyByWord indexes words by their text; the first occurrence wins
func keyByWord(list []models.DailyWord) map[string]models.DailyWord {
	words := make(map[string]models.DailyWord, len(list))
	for _, w := range list {
		if w.Word == "" {
			continue
		}
		if _, ok := words[w.Word]; !ok {
			words[w.Word] = w
		}
	}
	return words
}

// normalize restores the record invariants that old or hand edited data may break
func normalize(p models.UserProgress) models.UserProgress {
	if p.LearnedWords == nil {
		p.LearnedWords = make(map[string]models.DailyWord)
	}
	if p.Collections == nil {
		p.Collections = []models.Collection{}
	}
	for i := range p.Collections {
		if p.Collections[i].WordIDs == nil {
			p.Collections[i].WordIDs = []string{}
		}
	}
	if p.UnlockedAchievements == nil {
		p.UnlockedAchievements = []string{}
	}
	if p.XP < 0 {
		p.XP = 0
	}
	p.Level = gamification.LevelFor(p.XP).Level
	if p.LongestStreak < p.Streak.Count {
		p.LongestStreak = p.Streak.Count
	}
	return p
}

func isList(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

// parseCounter reads a legacy counter; junk counts as zero
func parseCounter(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Load reads, migrates and persists the progress of one profile. Unreadable
// or corrupt data is logged and replaced by the default record; only a
// failure to read the store is returned, so that callers never mistake an
// I/O error for an empty profile.
func Load(ctx context.Context, st store.Store, logger *log.Logger) (models.UserProgress, error) {
	if logger == nil {
		logger = log.Default()
	}

	snap, err := ReadSnapshot(ctx, st)
	if err != nil {
		return models.UserProgress{}, err
	}

	res, err := Migrate(snap)
	if err != nil {
		logger.Printf("Failed to migrate user data: %v", err)
		return models.DefaultProgress(), nil
	}

	if res.Version != VersionCurrent && res.Version != VersionEmpty {
		logger.Printf("Migrated user data from %s layout", res.Version)
		if err := Save(ctx, st, res.Progress); err != nil {
			logger.Printf("Failed to persist migrated user data: %v", err)
		}
	}

	for _, key := range res.Obsolete {
		if err := st.Remove(ctx, key); err != nil {
			logger.Printf("Failed to remove legacy key %s: %v", key, err)
		}
	}

	return res.Progress, nil
}

// Save overwrites the stored progress record
func Save(ctx context.Context, st store.Store, p models.UserProgress) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode user data: %w", err)
	}
	if err := st.Set(ctx, store.KeyUserData, string(data)); err != nil {
		return fmt.Errorf("failed to save user data: %w", err)
	}
	return nil
}
