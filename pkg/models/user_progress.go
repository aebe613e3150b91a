package models

import "sort"

// DateLayout is the calendar date format used for streak bookkeeping
const DateLayout = "2006-01-02"

// StreakData tracks consecutive days with at least one completed lesson
type StreakData struct {
	Count              int    `json:"count"`
	LastCompletionDate string `json:"lastCompletionDate"` // YYYY-MM-DD, empty when never completed
}

// Collection is a user-defined group of learned words
type Collection struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	WordIDs []string `json:"wordIds"`
}

// Contains reports whether the collection holds wordID
func (c Collection) Contains(wordID string) bool {
	for _, id := range c.WordIDs {
		if id == wordID {
			return true
		}
	}
	return false
}

// UserProgress is the single progress record of a learner
type UserProgress struct {
	Streak                  StreakData           `json:"streak"`
	LongestStreak           int                  `json:"longestStreak"`
	LearnedWords            map[string]DailyWord `json:"learnedWords"`
	Collections             []Collection         `json:"collections"`
	XP                      int                  `json:"xp"`
	Level                   int                  `json:"level"`
	UnlockedAchievements    []string             `json:"unlockedAchievements"`
	PracticeCount           int                  `json:"practiceCount"`
	VisualizeCount          int                  `json:"visualizeCount"`
	ReviewCount             int                  `json:"reviewCount"`
	RelatedWordCount        int                  `json:"relatedWordCount"`
	LessonsCompletedSinceAd int                  `json:"lessonsCompletedSinceAd"`
}

// DefaultProgress returns the record of a learner who has never opened the app
func DefaultProgress() UserProgress {
	return UserProgress{
		LearnedWords:         make(map[string]DailyWord),
		Collections:          []Collection{},
		Level:                1,
		UnlockedAchievements: []string{},
	}
}

// Clone returns a deep copy so that callers can treat progress values as immutable
func (p UserProgress) Clone() UserProgress {
	clone := p

	clone.LearnedWords = make(map[string]DailyWord, len(p.LearnedWords))
	for key, word := range p.LearnedWords {
		clone.LearnedWords[key] = word
	}

	clone.Collections = make([]Collection, len(p.Collections))
	for i, c := range p.Collections {
		c.WordIDs = append([]string{}, c.WordIDs...)
		clone.Collections[i] = c
	}

	clone.UnlockedAchievements = append([]string{}, p.UnlockedAchievements...)
	return clone
}

// HasAchievement reports whether id is already unlocked
func (p UserProgress) HasAchievement(id string) bool {
	for _, unlocked := range p.UnlockedAchievements {
		if unlocked == id {
			return true
		}
	}
	return false
}

// LearnedWordKeys returns the learned words in alphabetical order
func (p UserProgress) LearnedWordKeys() []string {
	keys := make([]string, 0, len(p.LearnedWords))
	for key := range p.LearnedWords {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Collection returns the collection with the given id
func (p UserProgress) Collection(id string) (Collection, bool) {
	for _, c := range p.Collections {
		if c.ID == id {
			return c, true
		}
	}
	return Collection{}, false
}
