package gamification

import "github.com/example/verbadiem/pkg/models"

// AchievementStatus pairs an achievement with its unlock state
type AchievementStatus struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Unlocked    bool   `json:"unlocked"`
}

// Statistics is the read model behind the statistics screen
type Statistics struct {
	CurrentStreak   int                 `json:"currentStreak"`
	LongestStreak   int                 `json:"longestStreak"`
	WordsLearned    int                 `json:"wordsLearned"`
	Collections     int                 `json:"collections"`
	XP              int                 `json:"xp"`
	Level           int                 `json:"level"`
	LevelName       string              `json:"levelName"`
	NextLevelXP     int                 `json:"nextLevelXp,omitempty"`
	XPToNextLevel   int                 `json:"xpToNextLevel"`
	PracticeCount   int                 `json:"practiceCount"`
	VisualizeCount  int                 `json:"visualizeCount"`
	ReviewCount     int                 `json:"reviewCount"`
	RelatedCount    int                 `json:"relatedWordCount"`
	Achievements    []AchievementStatus `json:"achievements"`
	UnlockedPercent float64             `json:"unlockedPercent"`
}

// BuildStatistics summarises progress for display
func BuildStatistics(p models.UserProgress) Statistics {
	current := LevelFor(p.XP)
	stats := Statistics{
		CurrentStreak:  p.Streak.Count,
		LongestStreak:  p.LongestStreak,
		WordsLearned:   len(p.LearnedWords),
		Collections:    len(p.Collections),
		XP:             p.XP,
		Level:          current.Level,
		LevelName:      current.Name,
		PracticeCount:  p.PracticeCount,
		VisualizeCount: p.VisualizeCount,
		ReviewCount:    p.ReviewCount,
		RelatedCount:   p.RelatedWordCount,
	}

	if next, ok := NextLevel(current.Level); ok {
		stats.NextLevelXP = next.XPThreshold
		stats.XPToNextLevel = next.XPThreshold - p.XP
	}

	unlocked := 0
	for _, a := range Achievements {
		has := p.HasAchievement(a.ID)
		if has {
			unlocked++
		}
		stats.Achievements = append(stats.Achievements, AchievementStatus{
			ID:          a.ID,
			Name:        a.Name,
			Description: a.Description,
			Icon:        a.Icon,
			Unlocked:    has,
		})
	}
	stats.UnlockedPercent = float64(unlocked) / float64(len(Achievements)) * 100
	return stats
}
