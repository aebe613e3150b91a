package bot

import (
	"fmt"
	"strings"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/internal/session"
	"github.com/example/verbadiem/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Constants for callback data
const (
	callbackStart           = "start"
	callbackOnboardingDone  = "onboarding_done"
	callbackHome            = "home"
	callbackLesson          = "lesson"
	callbackPronounce       = "pronounce"
	callbackVisualize       = "visualize"
	callbackChallenge       = "challenge"
	callbackAnswerPrefix    = "answer_"
	callbackSkipQuiz        = "skip_quiz"
	callbackRelated         = "related"
	callbackPractice        = "practice"
	callbackEndPractice     = "end_practice"
	callbackCollect         = "collect"
	callbackTogglePrefix    = "toggle_"
	callbackNewCollection   = "newcol"
	callbackCollectDone     = "collect_done"
	callbackChest           = "chest"
	callbackReviewAll       = "review_all"
	callbackReviewColPrefix = "review_col_"
	callbackReviewNext      = "review_next"
	callbackStats           = "stats"
	callbackSettings        = "settings"
	callbackNativePrefix    = "native_"
	callbackTargetPrefix    = "target_"
	callbackReset           = "reset"
	callbackResetConfirm    = "reset_confirm"
)

var homeButton = MenuButton{Text: "🏠 Home", CallbackData: callbackHome}

// maxChestWords caps the word list of the memory chest message
const maxChestWords = 40

// MainMenuButtons returns the buttons of the home screen
func (b *Bot) MainMenuButtons() [][]MenuButton {
	return [][]MenuButton{
		{{Text: "📖 Today's word", CallbackData: callbackLesson}},
		{
			{Text: "🧰 Memory chest", CallbackData: callbackChest},
			{Text: "📊 Statistics", CallbackData: callbackStats},
		},
		{{Text: "⚙️ Settings", CallbackData: callbackSettings}},
	}
}

func (b *Bot) showWelcome(chatID int64) error {
	text := "👋 Welcome to VerbaDiem!\n\n" +
		"Learn one new word every day, prove you can use it in a sentence " +
		"and keep your streak alive."
	return b.sendText(chatID, text, [][]MenuButton{{{Text: "🚀 Let's start", CallbackData: callbackStart}}})
}

func (b *Bot) showHome(chatID int64, o *session.Orchestrator) error {
	o.RefreshStreak()
	p := o.Progress()
	level := gamification.LevelFor(p.XP)
	native, target := o.Languages()

	var sb strings.Builder
	if o.ShowOnboarding() {
		sb.WriteString("📘 How it works\n" +
			"1. Open today's word and listen to it.\n" +
			"2. Pick the sentence that uses it correctly.\n" +
			"3. Come back tomorrow to grow your streak.\n\n")
	}
	fmt.Fprintf(&sb, "🏠 %s → %s\n\n", native.NativeName(), target.NativeName())
	fmt.Fprintf(&sb, "🔥 Streak: %d days\n", p.Streak.Count)
	fmt.Fprintf(&sb, "⭐ %d XP, level %d (%s)\n", p.XP, level.Level, level.Name)
	fmt.Fprintf(&sb, "📚 Words learned: %d", len(p.LearnedWords))

	buttons := b.MainMenuButtons()
	if o.ShowOnboarding() {
		buttons = append([][]MenuButton{{{Text: "👍 Got it", CallbackData: callbackOnboardingDone}}}, buttons...)
	}
	return b.sendText(chatID, sb.String(), buttons)
}

func wordCard(w models.DailyWord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📖 %s", w.Word)
	if w.Pronunciation != "" {
		fmt.Fprintf(&sb, "  [%s]", w.Pronunciation)
	}
	fmt.Fprintf(&sb, "\n%s\n", w.Translation)
	if w.Etymology != "" {
		fmt.Fprintf(&sb, "\n🌱 %s\n", w.Etymology)
	}
	fmt.Fprintf(&sb, "\n💬 %s\n%s", w.Example, w.ExampleTranslation)
	return sb.String()
}

func (b *Bot) showWord(chatID int64, w models.DailyWord, offline bool) error {
	text := wordCard(w)
	if offline {
		text = "📴 Offline word\n\n" + text
	}
	buttons := [][]MenuButton{}
	if b.generator != nil {
		buttons = append(buttons, []MenuButton{
			{Text: "🔊 Listen", CallbackData: callbackPronounce},
			{Text: "🎨 Visualize", CallbackData: callbackVisualize},
		})
		buttons = append(buttons, []MenuButton{{Text: "✅ Take the challenge", CallbackData: callbackChallenge}})
	} else {
		buttons = append(buttons, []MenuButton{{Text: "✅ Mark as learned", CallbackData: callbackSkipQuiz}})
	}
	buttons = append(buttons, []MenuButton{homeButton})
	return b.sendText(chatID, text, buttons)
}

func (b *Bot) showChallenge(chatID int64, w models.DailyWord, q *quiz.Quiz) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🧩 Which sentence uses \"%s\" correctly?\n", w.Word)
	row := make([]MenuButton, 0, len(q.Challenge.Options))
	for i, option := range q.Challenge.Options {
		fmt.Fprintf(&sb, "\n%d. %s", i+1, option.Sentence)
		row = append(row, MenuButton{
			Text:         fmt.Sprintf("%d", i+1),
			CallbackData: fmt.Sprintf("%s%d", callbackAnswerPrefix, i),
		})
	}
	return b.sendText(chatID, sb.String(), [][]MenuButton{row, {homeButton}})
}

func (b *Bot) lessonCompleteButtons() [][]MenuButton {
	buttons := [][]MenuButton{}
	if b.generator != nil {
		buttons = append(buttons, []MenuButton{
			{Text: "🔗 Related word", CallbackData: callbackRelated},
			{Text: "💬 Practice", CallbackData: callbackPractice},
		})
	}
	buttons = append(buttons,
		[]MenuButton{{Text: "📂 Add to collection", CallbackData: callbackCollect}},
		[]MenuButton{homeButton},
	)
	return buttons
}

func (b *Bot) showLessonComplete(chatID int64, o *session.Orchestrator) error {
	w, ok := o.LessonWord()
	if !ok || o.Screen() != session.ScreenLessonComplete {
		return b.showHome(chatID, o)
	}
	p := o.Progress()
	text := fmt.Sprintf("🏆 Lesson complete!\n\nYou learned \"%s\" (%s).\n🔥 Streak: %d days",
		w.Word, w.Translation, p.Streak.Count)
	return b.sendText(chatID, text, b.lessonCompleteButtons())
}

func collectionsView(p models.UserProgress, wordID string) (string, [][]MenuButton) {
	text := fmt.Sprintf("📂 Collections of \"%s\"", wordID)
	if len(p.Collections) == 0 {
		text += "\n\nYou have no collections yet."
	}

	var buttons [][]MenuButton
	for _, c := range p.Collections {
		mark := "⬜"
		if c.Contains(wordID) {
			mark = "☑️"
		}
		buttons = append(buttons, []MenuButton{{
			Text:         fmt.Sprintf("%s %s", mark, c.Name),
			CallbackData: callbackTogglePrefix + c.ID,
		}})
	}
	buttons = append(buttons, []MenuButton{
		{Text: "➕ New collection", CallbackData: callbackNewCollection},
		{Text: "✅ Done", CallbackData: callbackCollectDone},
	})
	return text, buttons
}

func (b *Bot) showCollections(chatID int64, o *session.Orchestrator, wordID string) error {
	text, buttons := collectionsView(o.Progress(), wordID)
	return b.sendText(chatID, text, buttons)
}

func (b *Bot) showChest(chatID int64, o *session.Orchestrator) error {
	p := o.Progress()
	keys := p.LearnedWordKeys()

	var sb strings.Builder
	fmt.Fprintf(&sb, "🧰 Memory chest: %d words\n", len(keys))
	for i, key := range keys {
		if i == maxChestWords {
			fmt.Fprintf(&sb, "\n…and %d more", len(keys)-maxChestWords)
			break
		}
		fmt.Fprintf(&sb, "\n• %s: %s", key, p.LearnedWords[key].Translation)
	}

	var buttons [][]MenuButton
	if len(keys) > 0 {
		buttons = append(buttons, []MenuButton{{Text: "🧠 Review all words", CallbackData: callbackReviewAll}})
	}
	for _, c := range p.Collections {
		buttons = append(buttons, []MenuButton{{
			Text:         fmt.Sprintf("📂 %s (%d)", c.Name, len(c.WordIDs)),
			CallbackData: callbackReviewColPrefix + c.ID,
		}})
	}
	buttons = append(buttons, []MenuButton{{Text: "➕ New collection", CallbackData: callbackNewCollection}})
	buttons = append(buttons, []MenuButton{homeButton})
	return b.sendText(chatID, sb.String(), buttons)
}

func (b *Bot) showReviewPrompt(chatID int64, round *quiz.ReviewRound) error {
	w, ok := round.Current()
	if !ok {
		return nil
	}
	pos, total := round.Position()
	text := fmt.Sprintf("🧠 Review %d/%d\n\n%s\n%s\n\nType the missing word.",
		pos, total, round.Prompt(), w.ExampleTranslation)
	return b.sendText(chatID, text, [][]MenuButton{{homeButton}})
}

func statisticsText(stats gamification.Statistics) string {
	var sb strings.Builder
	sb.WriteString("📊 Statistics\n\n")
	fmt.Fprintf(&sb, "🔥 Current streak: %d days\n", stats.CurrentStreak)
	fmt.Fprintf(&sb, "🏅 Longest streak: %d days\n", stats.LongestStreak)
	fmt.Fprintf(&sb, "📚 Words learned: %d\n", stats.WordsLearned)
	fmt.Fprintf(&sb, "⭐ %d XP, level %d (%s)\n", stats.XP, stats.Level, stats.LevelName)
	if stats.NextLevelXP > 0 {
		fmt.Fprintf(&sb, "⬆️ %d XP to the next level\n", stats.XPToNextLevel)
	}
	fmt.Fprintf(&sb, "🧠 Reviews: %d  💬 Practices: %d\n", stats.ReviewCount, stats.PracticeCount)
	fmt.Fprintf(&sb, "🎨 Visualized: %d  🔗 Related words: %d\n", stats.VisualizeCount, stats.RelatedCount)

	fmt.Fprintf(&sb, "\nAchievements (%.0f%%)\n", stats.UnlockedPercent)
	for _, a := range stats.Achievements {
		mark := "🔒"
		if a.Unlocked {
			mark = "✅"
		}
		fmt.Fprintf(&sb, "%s %s: %s\n", mark, a.Name, a.Description)
	}
	return sb.String()
}

func (b *Bot) showStats(chatID int64, o *session.Orchestrator) error {
	return b.sendText(chatID, statisticsText(o.Statistics()), [][]MenuButton{{homeButton}})
}

func languageRows(prefix string, selected models.Language) [][]MenuButton {
	var rows [][]MenuButton
	var row []MenuButton
	for _, lang := range models.Languages {
		text := lang.NativeName()
		if lang == selected {
			text = "✓ " + text
		}
		row = append(row, MenuButton{Text: text, CallbackData: prefix + string(lang)})
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return rows
}

func settingsView(o *session.Orchestrator) (string, [][]MenuButton) {
	native, target := o.Languages()
	text := fmt.Sprintf("⚙️ Settings\n\nI speak: %s\nI learn: %s\n\n"+
		"Choose your native language in the first block and the language you learn in the second.",
		native.NativeName(), target.NativeName())

	buttons := languageRows(callbackNativePrefix, native)
	buttons = append(buttons, languageRows(callbackTargetPrefix, target)...)
	buttons = append(buttons,
		[]MenuButton{{Text: "🗑 Reset progress", CallbackData: callbackReset}},
		[]MenuButton{homeButton},
	)
	return text, buttons
}

func (b *Bot) showSettings(chatID int64, o *session.Orchestrator) error {
	text, buttons := settingsView(o)
	return b.sendText(chatID, text, buttons)
}

// editMessage replaces the text and keyboard of a message in place
func (b *Bot) editMessage(chatID int64, messageID int, text string, buttons [][]MenuButton) error {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, createKeyboard(buttons))
	return b.sendMessage(edit)
}
