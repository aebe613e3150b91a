package session

// Screen is a state of the session state machine
type Screen string

const (
	ScreenWelcome        Screen = "WELCOME"
	ScreenHome           Screen = "HOME"
	ScreenLearning       Screen = "LEARNING"
	ScreenSettings       Screen = "SETTINGS"
	ScreenStatistics     Screen = "STATISTICS"
	ScreenLessonComplete Screen = "LESSON_COMPLETE"
	ScreenReview         Screen = "REVIEW"
	ScreenPractice       Screen = "PRACTICE"
	ScreenMemoryChest    Screen = "MEMORY_CHEST"
)

var transitions = map[Screen][]Screen{
	ScreenWelcome:        {ScreenHome},
	ScreenHome:           {ScreenLearning, ScreenSettings, ScreenStatistics, ScreenMemoryChest},
	ScreenLearning:       {ScreenLessonComplete, ScreenHome},
	ScreenLessonComplete: {ScreenPractice, ScreenHome},
	ScreenPractice:       {ScreenHome},
	ScreenSettings:       {ScreenHome},
	ScreenStatistics:     {ScreenHome},
	ScreenMemoryChest:    {ScreenReview, ScreenHome},
	ScreenReview:         {ScreenHome},
}

// CanTransition reports whether the state machine allows moving from one
// screen to another
func CanTransition(from, to Screen) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// tracked screens push a navigation marker so that back returns home
func (s Screen) tracked() bool {
	return s != ScreenHome && s != ScreenWelcome
}
