// Package store provides the durable key-value storage used for learner data.
// Every profile (one learner) owns an isolated key namespace.
package store

import "context"

// Keys of the current data layout
const (
	KeyUserData       = "verbaDiemUserData"
	KeyNativeLanguage = "nativeLanguage"
	KeyTargetLanguage = "targetLanguage"
	KeyHasVisited     = "hasVisitedVerbaDiem"
	KeyHasOnboarded   = "hasSeenVerbaDiemOnboarding"
)

// Keys written by older versions; they are consumed and deleted by migration
const (
	LegacyKeyLearnedWords   = "verbaDiemLearnedWords"
	LegacyKeyStreak         = "verbaDiemStreak"
	LegacyKeyLongestStreak  = "verbaDiemLongestStreak"
	LegacyKeyPracticeCount  = "verbaDiemPracticeCount"
	LegacyKeyVisualizeCount = "verbaDiemVisualizeCount"
	LegacyKeyReviewCount    = "verbaDiemReviewCount"
	LegacyKeyRelatedCount   = "verbaDiemRelatedCount"
)

// Store is a string key-value store scoped to one profile. There are no
// transactions; the last write wins.
type Store interface {
	// Get returns the value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Clear removes every key of the profile
	Clear(ctx context.Context) error
}

// Backend hands out per-profile stores
type Backend interface {
	Profile(id int64) Store
	// Profiles lists profiles that have stored data
	Profiles(ctx context.Context) ([]int64, error)
	Close() error
}
