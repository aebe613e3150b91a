package gamification

import "github.com/example/verbadiem/pkg/models"

// AdFrequency shows an interstitial every AdFrequency completed lessons
const AdFrequency = 3

// XP rewards
const (
	XPLessonComplete  = 20
	XPPerfectQuiz     = 10
	XPReviewSession   = 30
	XPRelatedWord     = 5
	XPPracticeSession = 15
	XPVisualizeWord   = 10
)

// Reason tags passed along with XP awards
const (
	TagLessonComplete = "lesson_complete"
	TagPerfectQuiz    = "perfect_quiz"
	TagReview         = "review"
	TagRelatedWord    = "related_word"
	TagPractice       = "practice"
	TagVisualize      = "visualize"
)

// Level is one row of the level table
type Level struct {
	Level       int
	Name        string
	XPThreshold int
}

// Levels is ascending by threshold and starts at level 1 / 0 XP
var Levels = []Level{
	{Level: 1, Name: "Novice", XPThreshold: 0},
	{Level: 2, Name: "Apprentice", XPThreshold: 200},
	{Level: 3, Name: "Explorer", XPThreshold: 500},
	{Level: 4, Name: "Scholar", XPThreshold: 1000},
	{Level: 5, Name: "Polyglot", XPThreshold: 2000},
}

// LevelFor returns the highest level whose threshold does not exceed xp
func LevelFor(xp int) Level {
	current := Levels[0]
	for _, l := range Levels {
		if l.XPThreshold <= xp {
			current = l
		}
	}
	return current
}

// NextLevel returns the level following level, if any
func NextLevel(level int) (Level, bool) {
	for _, l := range Levels {
		if l.Level == level+1 {
			return l, true
		}
	}
	return Level{}, false
}

// Achievement identifiers
const (
	AchievementLearned1      = "LEARNED_1"
	AchievementStreak7       = "STREAK_7"
	AchievementPerfectLesson = "PERFECT_LESSON"
	AchievementPractice1     = "PRACTICE_1"
	AchievementLearned25     = "LEARNED_25"
	AchievementVisualize5    = "VISUALIZE_5"
	AchievementReview10      = "REVIEW_10"
	AchievementRelated10     = "RELATED_10"
)

// Achievement is a one-time unlockable badge
type Achievement struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Condition   func(p models.UserProgress) bool
}

// Achievements are evaluated in this order
var Achievements = []Achievement{
	{
		ID:          AchievementLearned1,
		Name:        "First Word",
		Description: "Learn your first word",
		Icon:        "book",
		Condition:   func(p models.UserProgress) bool { return len(p.LearnedWords) >= 1 },
	},
	{
		ID:          AchievementStreak7,
		Name:        "On Fire",
		Description: "Keep a 7-day streak",
		Icon:        "flame",
		Condition:   func(p models.UserProgress) bool { return p.Streak.Count >= 7 },
	},
	{
		ID:          AchievementPerfectLesson,
		Name:        "Perfectionist",
		Description: "Answer a lesson quiz on the first try",
		Icon:        "trophy",
		// Unlocked only through the perfect_quiz tag
		Condition: func(models.UserProgress) bool { return false },
	},
	{
		ID:          AchievementPractice1,
		Name:        "Conversationalist",
		Description: "Finish a practice conversation",
		Icon:        "chat",
		Condition:   func(p models.UserProgress) bool { return p.PracticeCount >= 1 },
	},
	{
		ID:          AchievementLearned25,
		Name:        "Word Collector",
		Description: "Learn 25 words",
		Icon:        "book",
		Condition:   func(p models.UserProgress) bool { return len(p.LearnedWords) >= 25 },
	},
	{
		ID:          AchievementVisualize5,
		Name:        "Visionary",
		Description: "Visualize 5 words",
		Icon:        "sparkles",
		Condition:   func(p models.UserProgress) bool { return p.VisualizeCount >= 5 },
	},
	{
		ID:          AchievementReview10,
		Name:        "Memory Keeper",
		Description: "Finish 10 review sessions",
		Icon:        "chest",
		Condition:   func(p models.UserProgress) bool { return p.ReviewCount >= 10 },
	},
	{
		ID:          AchievementRelated10,
		Name:        "Word Explorer",
		Description: "Discover 10 related words",
		Icon:        "trophy",
		Condition:   func(p models.UserProgress) bool { return p.RelatedWordCount >= 10 },
	},
}

// FindAchievement looks an achievement up by id
func FindAchievement(id string) (Achievement, bool) {
	for _, a := range Achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}
