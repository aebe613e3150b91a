package bot

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/example/verbadiem/internal/ai"
	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/internal/session"
	"github.com/example/verbadiem/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCommand handles bot commands
func (b *Bot) HandleCommand(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	o, err := b.session(ctx, chatID)
	if err != nil {
		return err
	}

	if o.Screen() == session.ScreenWelcome && message.Command() != "help" {
		return b.showWelcome(chatID)
	}

	switch message.Command() {
	case "start", "menu":
		err = b.openHome(chatID, o)
	case "back":
		err = b.handleBack(chatID, o)
	case "lesson":
		err = b.handleLesson(chatID, o)
	case "review", "chest":
		err = b.openFromHome(chatID, o, session.ScreenMemoryChest, b.showChest)
	case "stats":
		err = b.openFromHome(chatID, o, session.ScreenStatistics, b.showStats)
	case "settings":
		err = b.openFromHome(chatID, o, session.ScreenSettings, b.showSettings)
	case "help":
		err = b.handleHelp(chatID)
	case "profiles":
		err = b.handleProfiles(ctx, message)
	default:
		err = b.sendText(chatID, "❓ Unknown command. Send /help to see what I can do.", nil)
	}
	return err
}

func (b *Bot) handleHelp(chatID int64) error {
	text := "📖 Commands\n\n" +
		"/menu - Home screen\n" +
		"/lesson - Today's word\n" +
		"/chest - Memory chest and reviews\n" +
		"/stats - Statistics and achievements\n" +
		"/settings - Languages and reset\n" +
		"/back - Go back home"
	return b.sendText(chatID, text, nil)
}

func (b *Bot) handleProfiles(ctx context.Context, message *tgbotapi.Message) error {
	if message.From == nil || !b.isAdmin(message.From.ID) {
		return b.sendText(message.Chat.ID, "⛔ This command is for admins only.", nil)
	}
	ids, err := b.registry.Profiles(ctx)
	if err != nil {
		return b.sendError(message.Chat.ID, "Failed to list profiles", err, nil)
	}
	return b.sendText(message.Chat.ID, fmt.Sprintf("👥 Profiles with stored data: %d", len(ids)), nil)
}

// session opens the learner's session. A failed load is reported to the
// chat and retried on the next update.
func (b *Bot) session(ctx context.Context, chatID int64) (*session.Orchestrator, error) {
	o, err := b.registry.Get(ctx, chatID)
	if err != nil {
		if sendErr := b.sendText(chatID, "❌ Your progress could not be loaded. Please try again in a moment.", nil); sendErr != nil {
			b.logger.Printf("Failed to report load error: %v", sendErr)
		}
		return nil, err
	}
	return o, nil
}

// goHome returns to the home screen from wherever the session is
func (b *Bot) goHome(o *session.Orchestrator) error {
	switch o.Screen() {
	case session.ScreenHome:
		return nil
	case session.ScreenWelcome:
		return session.ErrWrongScreen
	}
	if o.Back() {
		return nil
	}
	if o.AdPending() {
		return session.ErrAdPending
	}
	return o.Navigate(session.ScreenHome)
}

func (b *Bot) openHome(chatID int64, o *session.Orchestrator) error {
	if err := b.goHome(o); err != nil {
		return b.screenError(chatID, err)
	}
	b.chat(chatID).reset()
	return b.showHome(chatID, o)
}

func (b *Bot) handleBack(chatID int64, o *session.Orchestrator) error {
	if o.Back() {
		b.chat(chatID).reset()
		return b.showHome(chatID, o)
	}
	if o.AdPending() {
		return b.screenError(chatID, session.ErrAdPending)
	}
	return b.showHome(chatID, o)
}

// openFromHome passes through home on the way to a top-level screen
func (b *Bot) openFromHome(chatID int64, o *session.Orchestrator, to session.Screen,
	render func(int64, *session.Orchestrator) error) error {
	if err := b.goHome(o); err != nil {
		return b.screenError(chatID, err)
	}
	b.chat(chatID).reset()
	if err := o.Navigate(to); err != nil {
		return b.screenError(chatID, err)
	}
	return render(chatID, o)
}

// screenError explains a refused action to the user
func (b *Bot) screenError(chatID int64, err error) error {
	switch {
	case errors.Is(err, session.ErrAdPending):
		return b.sendText(chatID, "📺 Please finish the break first, then press Continue.", nil)
	case errors.Is(err, session.ErrWrongScreen), errors.Is(err, session.ErrInvalidTransition):
		return b.sendText(chatID, "🤔 That is not available right now.", [][]MenuButton{{homeButton}})
	default:
		return b.sendError(chatID, "Something went wrong", err, nil)
	}
}

func (b *Bot) answerCallback(id, text string) {
	if b.api == nil {
		return
	}
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Printf("Failed to answer callback: %v", err)
	}
}

// HandleCallback handles callback queries from inline keyboards
func (b *Bot) HandleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.Message == nil || query.Message.Chat == nil {
		return fmt.Errorf("invalid callback: message is missing")
	}
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID
	data := query.Data
	o, err := b.session(ctx, chatID)
	if err != nil {
		return err
	}

	if data == callbackAdDismiss {
		return b.handleAdDismiss(chatID, query.ID, o)
	}
	b.answerCallback(query.ID, "")

	if o.Screen() == session.ScreenWelcome && data != callbackStart {
		return b.showWelcome(chatID)
	}

	switch {
	case data == callbackStart:
		return b.handleStartSession(chatID, o)
	case data == callbackOnboardingDone:
		o.CompleteOnboarding()
		return b.showHome(chatID, o)
	case data == callbackHome:
		return b.openHome(chatID, o)
	case data == callbackLesson:
		return b.handleLesson(chatID, o)
	case data == callbackPronounce:
		return b.handlePronounce(chatID, o)
	case data == callbackVisualize:
		return b.handleVisualize(chatID, o)
	case data == callbackChallenge:
		return b.handleChallenge(chatID, o)
	case strings.HasPrefix(data, callbackAnswerPrefix):
		index, err := strconv.Atoi(strings.TrimPrefix(data, callbackAnswerPrefix))
		if err != nil {
			return fmt.Errorf("invalid answer callback %q: %w", data, err)
		}
		return b.handleAnswer(chatID, o, index)
	case data == callbackSkipQuiz:
		return b.handleSkipQuiz(chatID, o)
	case data == callbackRelated:
		return b.handleRelated(chatID, o)
	case data == callbackPractice:
		return b.handlePractice(chatID, o)
	case data == callbackEndPractice:
		return b.handleBack(chatID, o)
	case data == callbackCollect:
		return b.handleCollect(chatID, o)
	case strings.HasPrefix(data, callbackTogglePrefix):
		return b.handleToggleCollection(chatID, messageID, o, strings.TrimPrefix(data, callbackTogglePrefix))
	case data == callbackNewCollection:
		return b.handleNewCollection(chatID, o)
	case data == callbackCollectDone:
		b.chat(chatID).setCollectWord("")
		return b.showLessonComplete(chatID, o)
	case data == callbackChest:
		return b.openFromHome(chatID, o, session.ScreenMemoryChest, b.showChest)
	case data == callbackReviewAll:
		return b.handleStartReview(chatID, o, "")
	case strings.HasPrefix(data, callbackReviewColPrefix):
		return b.handleStartReview(chatID, o, strings.TrimPrefix(data, callbackReviewColPrefix))
	case data == callbackReviewNext:
		return b.handleReviewNext(chatID, o)
	case data == callbackStats:
		return b.openFromHome(chatID, o, session.ScreenStatistics, b.showStats)
	case data == callbackSettings:
		return b.openFromHome(chatID, o, session.ScreenSettings, b.showSettings)
	case strings.HasPrefix(data, callbackNativePrefix):
		return b.handleLanguage(chatID, messageID, o, strings.TrimPrefix(data, callbackNativePrefix), true)
	case strings.HasPrefix(data, callbackTargetPrefix):
		return b.handleLanguage(chatID, messageID, o, strings.TrimPrefix(data, callbackTargetPrefix), false)
	case data == callbackReset:
		return b.handleResetRequest(chatID, o)
	case data == callbackResetConfirm:
		return b.handleResetConfirm(chatID, o)
	default:
		return fmt.Errorf("unknown callback data: %s", data)
	}
}

func (b *Bot) handleStartSession(chatID int64, o *session.Orchestrator) error {
	if err := o.Start(); err != nil {
		if errors.Is(err, session.ErrWrongScreen) {
			return b.showHome(chatID, o)
		}
		return err
	}
	return b.showHome(chatID, o)
}

func (b *Bot) handleAdDismiss(chatID int64, queryID string, o *session.Orchestrator) error {
	dismissed, remaining := b.dismissAd(chatID, false)
	if !dismissed {
		if remaining > 0 {
			b.answerCallback(queryID, fmt.Sprintf("You can continue in %d s", int(math.Ceil(remaining.Seconds()))))
			return nil
		}
		b.answerCallback(queryID, "")
		return nil
	}
	b.answerCallback(queryID, "")
	b.chat(chatID).reset()
	return b.showLessonComplete(chatID, o)
}

// wordSource returns the generator as a word source, or nil to use the deck only
func (b *Bot) wordSource() quiz.WordSource {
	if b.generator == nil {
		return nil
	}
	return b.generator
}

func (b *Bot) handleLesson(chatID int64, o *session.Orchestrator) error {
	if o.Screen() != session.ScreenHome {
		if err := b.goHome(o); err != nil {
			return b.screenError(chatID, err)
		}
	}
	if err := o.Navigate(session.ScreenLearning); err != nil {
		return b.screenError(chatID, err)
	}
	st := b.chat(chatID)
	st.reset()

	if err := b.sendText(chatID, "⏳ Finding today's word…", nil); err != nil {
		b.logger.Printf("Failed to send loading message: %v", err)
	}

	native, target := o.Languages()
	learned := o.Progress().LearnedWords
	ctx, cancel := b.requestContext(o)
	defer cancel()

	var result quiz.WordResult
	var err error
	o.WithRand(func(rnd *rand.Rand) {
		result, err = quiz.NextWord(ctx, b.wordSource(), b.deck, rnd, target, native, learned)
	})
	if o.Screen() != session.ScreenLearning {
		return nil
	}
	if err != nil {
		if errors.Is(err, quiz.ErrNoWordAvailable) {
			if err := b.goHome(o); err != nil {
				b.logger.Printf("Failed to leave the lesson: %v", err)
			}
			return b.sendText(chatID, "🎓 You have learned every word available right now. Come back later!",
				[][]MenuButton{{homeButton}})
		}
		return b.sendError(chatID, "Failed to load today's word", err,
			[][]MenuButton{{{Text: "🔄 Try again", CallbackData: callbackLesson}}, {homeButton}})
	}
	if result.SourceErr != nil {
		b.logger.Printf("Chat %d: generator failed, using offline deck: %v", chatID, result.SourceErr)
	}

	st.mu.Lock()
	st.word = &result.Word
	st.offline = result.Offline
	st.mu.Unlock()
	return b.showWord(chatID, result.Word, result.Offline)
}

// currentWord is the word shown on the learning or lesson complete screen
func (b *Bot) currentWord(chatID int64, o *session.Orchestrator) (models.DailyWord, bool) {
	switch o.Screen() {
	case session.ScreenLearning:
		st := b.chat(chatID)
		st.mu.Lock()
		defer st.mu.Unlock()
		if st.word == nil {
			return models.DailyWord{}, false
		}
		return *st.word, true
	case session.ScreenLessonComplete, session.ScreenPractice:
		return o.LessonWord()
	}
	return models.DailyWord{}, false
}

func (b *Bot) handlePronounce(chatID int64, o *session.Orchestrator) error {
	w, ok := b.currentWord(chatID, o)
	if !ok {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	st := b.chat(chatID)
	if st.pronouncer == nil {
		return b.sendText(chatID, "🔇 Pronunciation is not available offline.", nil)
	}

	_, target := o.Languages()
	ctx, cancel := b.requestContext(o)
	defer cancel()
	wav, err := st.pronouncer.Pronounce(ctx, w.Word, target)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	if err != nil {
		return b.sendError(chatID, "Failed to load the pronunciation", err, [][]MenuButton{})
	}

	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: w.Word + ".wav", Bytes: wav})
	audio.Title = w.Word
	return b.sendMessage(audio)
}

func (b *Bot) handleVisualize(chatID int64, o *session.Orchestrator) error {
	w, ok := b.currentWord(chatID, o)
	if !ok {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	if b.generator == nil {
		return b.sendText(chatID, "🖼 Images are not available offline.", nil)
	}

	native, _ := o.Languages()
	ctx, cancel := b.requestContext(o)
	defer cancel()
	encoded, err := b.generator.MnemonicImage(ctx, w, native)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	if err != nil {
		return b.sendError(chatID, "Failed to create the image", err, [][]MenuButton{})
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return b.sendError(chatID, "Failed to create the image", err, [][]MenuButton{})
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "mnemonic.jpg", Bytes: image})
	photo.Caption = fmt.Sprintf("🎨 %s: %s", w.Word, w.Translation)
	if err := b.sendMessage(photo); err != nil {
		return fmt.Errorf("failed to send image: %w", err)
	}
	o.VisualizedWord()
	return nil
}

func (b *Bot) handleChallenge(chatID int64, o *session.Orchestrator) error {
	if o.Screen() != session.ScreenLearning {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	w, ok := b.currentWord(chatID, o)
	if !ok {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	if b.generator == nil {
		return b.handleSkipQuiz(chatID, o)
	}

	native, target := o.Languages()
	ctx, cancel := b.requestContext(o)
	defer cancel()
	challenge, err := b.generator.SentenceChallenge(ctx, w, target, native)
	if o.Screen() != session.ScreenLearning {
		return nil
	}
	if err == nil {
		o.WithRand(func(rnd *rand.Rand) { challenge, err = quiz.PrepareChallenge(rnd, challenge) })
	}
	if err != nil {
		return b.sendError(chatID, "Failed to create the challenge", err, [][]MenuButton{
			{{Text: "🔄 Try again", CallbackData: callbackChallenge}},
			{{Text: "⏭ Skip the challenge", CallbackData: callbackSkipQuiz}},
			{homeButton},
		})
	}

	q := quiz.NewQuiz(challenge)
	st := b.chat(chatID)
	st.mu.Lock()
	st.quiz = q
	st.mu.Unlock()
	return b.showChallenge(chatID, w, q)
}

func (b *Bot) handleAnswer(chatID int64, o *session.Orchestrator, index int) error {
	st := b.chat(chatID)
	st.mu.Lock()
	q, word := st.quiz, st.word
	if q == nil || word == nil {
		st.mu.Unlock()
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	correct, err := q.Answer(index)
	st.mu.Unlock()

	if errors.Is(err, quiz.ErrQuizSolved) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to record answer: %w", err)
	}
	if !correct {
		return b.sendText(chatID, "❌ Not quite. Try another sentence!", nil)
	}

	text := "✅ Correct!"
	if q.IsFirstTry() {
		text = "✅ Perfect, first try!"
	}
	if err := b.sendText(chatID, text, nil); err != nil {
		b.logger.Printf("Failed to send answer feedback: %v", err)
	}
	return b.completeLesson(chatID, o, *word, q.IsFirstTry())
}

func (b *Bot) handleSkipQuiz(chatID int64, o *session.Orchestrator) error {
	w, ok := b.currentWord(chatID, o)
	if !ok || o.Screen() != session.ScreenLearning {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	return b.completeLesson(chatID, o, w, false)
}

func (b *Bot) completeLesson(chatID int64, o *session.Orchestrator, w models.DailyWord, isFirstTry bool) error {
	deferred, err := o.CompleteLesson(w, isFirstTry)
	if err != nil {
		if errors.Is(err, gamification.ErrInvalidWord) {
			return b.sendError(chatID, "This word cannot be saved", err, nil)
		}
		return b.screenError(chatID, err)
	}
	if deferred && o.AdPending() {
		return nil
	}
	b.chat(chatID).reset()
	return b.showLessonComplete(chatID, o)
}

func (b *Bot) handleRelated(chatID int64, o *session.Orchestrator) error {
	w, ok := o.LessonWord()
	if !ok || o.Screen() != session.ScreenLessonComplete {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	if b.generator == nil {
		return b.sendText(chatID, "🔗 Related words are not available offline.", nil)
	}

	native, target := o.Languages()
	ctx, cancel := b.requestContext(o)
	defer cancel()
	related, err := b.generator.RelatedWord(ctx, w, target, native)
	if o.Screen() != session.ScreenLessonComplete {
		return nil
	}
	if err != nil {
		return b.sendError(chatID, "Failed to find a related word", err, b.lessonCompleteButtons())
	}

	text := fmt.Sprintf("🔗 %s: %s\n\n%s", related.Word, related.Translation, related.Reason)
	if err := b.sendText(chatID, text, b.lessonCompleteButtons()); err != nil {
		return err
	}
	o.FoundRelatedWord()
	return nil
}

func (b *Bot) handlePractice(chatID int64, o *session.Orchestrator) error {
	w, ok := o.LessonWord()
	if !ok || b.generator == nil {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	if err := o.Navigate(session.ScreenPractice); err != nil {
		return b.screenError(chatID, err)
	}

	native, target := o.Languages()
	practice := b.generator.NewPractice(w, target, native)
	st := b.chat(chatID)
	st.mu.Lock()
	st.practice = practice
	st.mu.Unlock()

	return b.sendPractice(chatID, o, practice, ai.PracticeOpening)
}

// sendPractice forwards a learner message to the tutor and relays the reply
func (b *Bot) sendPractice(chatID int64, o *session.Orchestrator, practice ai.Practice, message string) error {
	ctx, cancel := b.requestContext(o)
	defer cancel()
	reply, ended, err := practice.Send(ctx, message)
	if o.Screen() != session.ScreenPractice {
		return nil
	}
	if err != nil {
		return b.sendError(chatID, "The tutor did not answer", err, [][]MenuButton{
			{{Text: "🚪 End practice", CallbackData: callbackEndPractice}},
		})
	}

	if !ended {
		return b.sendText(chatID, "🧑‍🏫 "+reply, [][]MenuButton{
			{{Text: "🚪 End practice", CallbackData: callbackEndPractice}},
		})
	}

	if reply != "" {
		if err := b.sendText(chatID, "🧑‍🏫 "+reply, nil); err != nil {
			b.logger.Printf("Failed to send tutor reply: %v", err)
		}
	}
	if err := o.FinishPractice(); err != nil {
		return b.screenError(chatID, err)
	}
	b.chat(chatID).reset()
	return b.showHome(chatID, o)
}

func (b *Bot) handleCollect(chatID int64, o *session.Orchestrator) error {
	w, ok := o.LessonWord()
	if !ok || o.Screen() != session.ScreenLessonComplete {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	b.chat(chatID).setCollectWord(w.Word)
	return b.showCollections(chatID, o, w.Word)
}

// selectedCollections returns the ids of the collections holding wordID
func selectedCollections(p models.UserProgress, wordID string) []string {
	var ids []string
	for _, c := range p.Collections {
		if c.Contains(wordID) {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

func (b *Bot) handleToggleCollection(chatID int64, messageID int, o *session.Orchestrator, collectionID string) error {
	wordID := b.chat(chatID).collectedWord()
	if wordID == "" {
		return b.screenError(chatID, session.ErrWrongScreen)
	}

	p := o.Progress()
	var selected []string
	found := false
	for _, id := range selectedCollections(p, wordID) {
		if id == collectionID {
			found = true
			continue
		}
		selected = append(selected, id)
	}
	if !found {
		selected = append(selected, collectionID)
	}

	if err := o.UpdateCollections(wordID, selected, ""); err != nil {
		return b.sendError(chatID, "Failed to update collections", err, nil)
	}
	text, buttons := collectionsView(o.Progress(), wordID)
	return b.editMessage(chatID, messageID, text, buttons)
}

func (b *Bot) handleNewCollection(chatID int64, o *session.Orchestrator) error {
	screen := o.Screen()
	if screen != session.ScreenLessonComplete && screen != session.ScreenMemoryChest {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	st := b.chat(chatID)
	st.mu.Lock()
	st.awaiting = awaitCollectionName
	st.mu.Unlock()
	return b.sendText(chatID, "✏️ Send me the name of the new collection.", nil)
}

func (b *Bot) handleCollectionName(chatID int64, o *session.Orchestrator, name string) error {
	if name == "" {
		return b.sendText(chatID, "✏️ The name cannot be empty. Try again.", nil)
	}

	st := b.chat(chatID)
	st.mu.Lock()
	st.awaiting = awaitNothing
	wordID := st.collectWord
	st.mu.Unlock()

	var err error
	if wordID != "" {
		err = o.UpdateCollections(wordID, selectedCollections(o.Progress(), wordID), name)
	} else {
		_, err = o.CreateCollection(name)
	}
	if err != nil {
		return b.sendError(chatID, "Failed to create the collection", err, nil)
	}

	if wordID != "" {
		return b.showCollections(chatID, o, wordID)
	}
	return b.showChest(chatID, o)
}

func (b *Bot) handleStartReview(chatID int64, o *session.Orchestrator, collectionID string) error {
	var ids []string
	if collectionID != "" {
		c, ok := o.Progress().Collection(collectionID)
		if !ok {
			return b.screenError(chatID, session.ErrWrongScreen)
		}
		if len(c.WordIDs) == 0 {
			return b.sendText(chatID, "📂 This collection is empty.", nil)
		}
		ids = c.WordIDs
	}

	n, err := o.StartReview(ids)
	if err != nil {
		return b.screenError(chatID, err)
	}
	if n == 0 {
		return b.sendText(chatID, "📭 Learn a word first, then come back to review it.", nil)
	}

	round := quiz.NewReviewRound(o.ReviewWords())
	st := b.chat(chatID)
	st.mu.Lock()
	st.review = round
	st.mu.Unlock()
	return b.showReviewPrompt(chatID, round)
}

func (b *Bot) handleReviewAnswer(chatID int64, answer string) error {
	st := b.chat(chatID)
	st.mu.Lock()
	round := st.review
	if round == nil {
		st.mu.Unlock()
		return nil
	}
	w, _ := round.Current()
	correct, err := round.Answer(answer)
	last := round.Len()
	pos, _ := round.Position()
	st.mu.Unlock()

	switch {
	case errors.Is(err, quiz.ErrEmptyAnswer):
		return b.sendText(chatID, "✏️ Type the missing word.", nil)
	case errors.Is(err, quiz.ErrAlreadyAnswered):
		return b.sendText(chatID, "👉 Press Next to continue.", nil)
	case errors.Is(err, quiz.ErrRoundFinished):
		return nil
	case err != nil:
		return fmt.Errorf("failed to check answer: %w", err)
	}

	text := fmt.Sprintf("❌ The word was \"%s\".", w.Word)
	if correct {
		text = "✅ Correct!"
	}
	next := "➡️ Next"
	if pos == last {
		next = "🏁 Finish"
	}
	return b.sendText(chatID, text, [][]MenuButton{{{Text: next, CallbackData: callbackReviewNext}}})
}

func (b *Bot) handleReviewNext(chatID int64, o *session.Orchestrator) error {
	st := b.chat(chatID)
	st.mu.Lock()
	round := st.review
	if round == nil {
		st.mu.Unlock()
		return nil
	}
	more := round.Next()
	st.mu.Unlock()

	if more {
		return b.showReviewPrompt(chatID, round)
	}

	if err := o.FinishReview(); err != nil {
		return b.screenError(chatID, err)
	}
	st.reset()
	if err := b.sendText(chatID, fmt.Sprintf("🧠 Review finished: %d/%d correct.", round.Score(), round.Len()), nil); err != nil {
		b.logger.Printf("Failed to send review result: %v", err)
	}
	return b.showHome(chatID, o)
}

func (b *Bot) handleLanguage(chatID int64, messageID int, o *session.Orchestrator, code string, native bool) error {
	if o.Screen() != session.ScreenSettings {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	lang := models.Language(code)
	var err error
	if native {
		err = o.SetNativeLanguage(lang)
	} else {
		err = o.SetTargetLanguage(lang)
	}
	if err != nil {
		return b.sendError(chatID, "Unsupported language", err, nil)
	}
	text, buttons := settingsView(o)
	return b.editMessage(chatID, messageID, text, buttons)
}

func (b *Bot) handleResetRequest(chatID int64, o *session.Orchestrator) error {
	if o.Screen() != session.ScreenSettings {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	text := "⚠️ This deletes your words, collections, streak and achievements. It cannot be undone."
	return b.sendText(chatID, text, [][]MenuButton{
		{{Text: "🗑 Yes, delete everything", CallbackData: callbackResetConfirm}},
		{{Text: "↩️ Cancel", CallbackData: callbackSettings}},
	})
}

func (b *Bot) handleResetConfirm(chatID int64, o *session.Orchestrator) error {
	if o.Screen() != session.ScreenSettings {
		return b.screenError(chatID, session.ErrWrongScreen)
	}
	if err := o.Reset(context.Background(), true); err != nil {
		if errors.Is(err, session.ErrAdPending) {
			return b.screenError(chatID, err)
		}
		return b.sendError(chatID, "Failed to reset progress", err, nil)
	}
	b.forgetChat(chatID)
	if err := b.sendText(chatID, "🧹 Your progress was reset.", nil); err != nil {
		b.logger.Printf("Failed to confirm reset: %v", err)
	}
	return b.showWelcome(chatID)
}

// HandleText routes free text by the current screen
func (b *Bot) HandleText(ctx context.Context, message *tgbotapi.Message) error {
	if message == nil || message.Chat == nil {
		return fmt.Errorf("invalid message: required fields are missing")
	}
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)
	o, err := b.session(ctx, chatID)
	if err != nil {
		return err
	}

	st := b.chat(chatID)
	st.mu.Lock()
	awaiting, practice := st.awaiting, st.practice
	st.mu.Unlock()

	if awaiting == awaitCollectionName {
		return b.handleCollectionName(chatID, o, text)
	}

	switch o.Screen() {
	case session.ScreenWelcome:
		return b.showWelcome(chatID)
	case session.ScreenReview:
		return b.handleReviewAnswer(chatID, text)
	case session.ScreenPractice:
		if practice == nil || text == "" {
			return nil
		}
		return b.sendPractice(chatID, o, practice, text)
	default:
		return b.sendText(chatID, "Use the buttons below or send /menu.", [][]MenuButton{{homeButton}})
	}
}
