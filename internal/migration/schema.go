// Package migration upgrades stored learner data from every layout that has
// ever been written to the current UserProgress record.
package migration

import (
	"context"
	"fmt"

	"github.com/example/verbadiem/internal/store"
)

// Version identifies the layout a snapshot was written with
type Version int

const (
	// VersionEmpty means nothing was ever stored
	VersionEmpty Version = iota
	// VersionLegacyWords predates the unified record: only a word list exists
	VersionLegacyWords
	// VersionWordList is a unified record whose learnedWords is a list
	VersionWordList
	// VersionNoCounters lacks one of the per-feature counters
	VersionNoCounters
	// VersionNoAdCounter lacks lessonsCompletedSinceAd
	VersionNoAdCounter
	// VersionCurrent needs no upgrade
	VersionCurrent
)

func (v Version) String() string {
	switch v {
	case VersionEmpty:
		return "empty"
	case VersionLegacyWords:
		return "legacy-words"
	case VersionWordList:
		return "word-list"
	case VersionNoCounters:
		return "no-counters"
	case VersionNoAdCounter:
		return "no-ad-counter"
	case VersionCurrent:
		return "current"
	default:
		return fmt.Sprintf("version(%d)", int(v))
	}
}

// counterFields maps record fields to the keys they were stored under before
// the counters moved into the record
var counterFields = []struct {
	Field     string
	LegacyKey string
}{
	{Field: "practiceCount", LegacyKey: store.LegacyKeyPracticeCount},
	{Field: "visualizeCount", LegacyKey: store.LegacyKeyVisualizeCount},
	{Field: "reviewCount", LegacyKey: store.LegacyKeyReviewCount},
	{Field: "relatedWordCount", LegacyKey: store.LegacyKeyRelatedCount},
}

// Snapshot is everything migration reads from a store. Empty strings mean
// the key is absent.
type Snapshot struct {
	UserData    string
	LegacyWords string
	// Counters holds legacy counter values by legacy key
	Counters map[string]string
}

// ReadSnapshot collects the keys relevant to migration
func ReadSnapshot(ctx context.Context, st store.Store) (Snapshot, error) {
	snap := Snapshot{Counters: make(map[string]string)}

	var err error
	if snap.UserData, _, err = st.Get(ctx, store.KeyUserData); err != nil {
		return snap, fmt.Errorf("failed to read user data: %w", err)
	}
	if snap.LegacyWords, _, err = st.Get(ctx, store.LegacyKeyLearnedWords); err != nil {
		return snap, fmt.Errorf("failed to read legacy words: %w", err)
	}

	for _, c := range counterFields {
		value, ok, err := st.Get(ctx, c.LegacyKey)
		if err != nil {
			return snap, fmt.Errorf("failed to read %s: %w", c.LegacyKey, err)
		}
		if ok {
			snap.Counters[c.LegacyKey] = value
		}
	}
	return snap, nil
}
