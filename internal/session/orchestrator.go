// Package session owns the state of one learner: the progress record, the
// current screen and the pending notifications. All mutations go through the
// gamification engine and are persisted right away.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/example/verbadiem/internal/gamification"
	"github.com/example/verbadiem/internal/migration"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/internal/store"
	"github.com/example/verbadiem/pkg/models"
)

var (
	// ErrInvalidTransition is returned for a screen change the state machine forbids
	ErrInvalidTransition = errors.New("invalid screen transition")
	// ErrWrongScreen is returned for an action not available on the current screen
	ErrWrongScreen = errors.New("action not available on this screen")
	// ErrAdPending is returned while a lesson waits for an ad to be dismissed
	ErrAdPending = errors.New("lesson completion is waiting for the ad")
	// ErrResetNotConfirmed is returned when a reset lacks confirmation
	ErrResetNotConfirmed = errors.New("reset must be confirmed")
	// ErrUnsupportedLanguage is returned for an unknown language code
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// AdPresenter shows an interstitial ad. onDismiss must be called once the ad
// is dismissed or skipped.
type AdPresenter interface {
	Show(onDismiss func())
}

// Effects are the side announcements of one transition
type Effects struct {
	Notifications []models.Notification
	Celebrate     bool
}

// Options configure an orchestrator
type Options struct {
	Engine *gamification.Engine
	Logger *log.Logger
	Ads    AdPresenter
	// OnEffects receives notifications and celebrations as they happen
	OnEffects func(Effects)
	Rand      *rand.Rand
	// Notifications defaults to a queue with NotificationTTL on the engine clock
	Notifications *NotificationQueue
}

// Orchestrator is the state container of one learner
type Orchestrator struct {
	store     store.Store
	engine    *gamification.Engine
	logger    *log.Logger
	ads       AdPresenter
	onEffects func(Effects)
	queue     *NotificationQueue

	randMu sync.Mutex
	rnd    *rand.Rand

	mu             sync.Mutex
	progress       models.UserProgress
	native         models.Language
	target         models.Language
	visited        bool
	onboarded      bool
	showOnboarding bool
	screen         Screen
	markers        []Screen
	screenCtx      context.Context
	cancelScreen   context.CancelFunc
	lessonWord     *models.DailyWord
	reviewWords    []models.DailyWord
	adPending      bool
}

// New loads the learner's data from st and opens the session on the welcome
// screen, or on the home screen for returning learners. It fails when the
// store cannot be read.
func New(ctx context.Context, st store.Store, opts Options) (*Orchestrator, error) {
	o := &Orchestrator{
		store:     st,
		engine:    opts.Engine,
		logger:    opts.Logger,
		ads:       opts.Ads,
		onEffects: opts.OnEffects,
		rnd:       opts.Rand,
	}
	if o.engine == nil {
		o.engine = gamification.NewEngine(nil)
	}
	if o.logger == nil {
		o.logger = log.Default()
	}
	if o.rnd == nil {
		o.rnd = quiz.NewRand()
	}
	if opts.Notifications != nil {
		o.queue = opts.Notifications
	} else {
		o.queue = NewNotificationQueue(NotificationTTL, o.engine.Now)
	}

	if err := o.load(ctx); err != nil {
		if opts.Notifications == nil {
			o.queue.Close()
		}
		return nil, err
	}
	o.screenCtx, o.cancelScreen = context.WithCancel(context.Background())
	return o, nil
}

// load replaces the in-memory state with what is stored. Nothing changes
// when a read fails.
func (o *Orchestrator) load(ctx context.Context) error {
	progress, err := migration.Load(ctx, o.store, o.logger)
	if err != nil {
		return err
	}
	native, err := o.readLanguage(ctx, store.KeyNativeLanguage, models.DefaultNativeLanguage)
	if err != nil {
		return err
	}
	target, err := o.readLanguage(ctx, store.KeyTargetLanguage, models.DefaultTargetLanguage)
	if err != nil {
		return err
	}
	visited, err := o.readFlag(ctx, store.KeyHasVisited)
	if err != nil {
		return err
	}
	onboarded, err := o.readFlag(ctx, store.KeyHasOnboarded)
	if err != nil {
		return err
	}

	o.restore(progress, native, target, visited, onboarded)
	return nil
}

// restore sets the stored state and resets everything transient
func (o *Orchestrator) restore(progress models.UserProgress, native, target models.Language, visited, onboarded bool) {
	o.progress = progress
	o.native = native
	o.target = target
	o.visited = visited
	o.onboarded = onboarded
	o.showOnboarding = false
	o.markers = nil
	o.lessonWord = nil
	o.reviewWords = nil
	o.adPending = false

	o.screen = ScreenWelcome
	if o.visited {
		o.screen = ScreenHome
	}
}

// readLanguage falls back for missing or unknown values
func (o *Orchestrator) readLanguage(ctx context.Context, key string, fallback models.Language) (models.Language, error) {
	value, ok, err := o.store.Get(ctx, key)
	if err != nil {
		return fallback, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if lang := models.Language(value); ok && lang.Valid() {
		return lang, nil
	}
	return fallback, nil
}

func (o *Orchestrator) readFlag(ctx context.Context, key string) (bool, error) {
	value, ok, err := o.store.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return ok && value == "true", nil
}

func (o *Orchestrator) writeKey(key, value string) {
	if err := o.store.Set(context.Background(), key, value); err != nil {
		o.logger.Printf("Failed to save %s: %v", key, err)
	}
}

// persist writes the whole progress record; last writer wins
func (o *Orchestrator) persist() {
	if err := migration.Save(context.Background(), o.store, o.progress); err != nil {
		o.logger.Printf("Failed to persist progress: %v", err)
	}
}

// apply commits an engine outcome and returns its effects. Callers hold o.mu.
func (o *Orchestrator) apply(out gamification.Outcome) Effects {
	o.progress = out.Progress
	o.persist()
	return Effects{Notifications: out.Notifications, Celebrate: out.Celebrate}
}

// emit queues notifications and forwards effects. Must be called without o.mu.
func (o *Orchestrator) emit(fx Effects) {
	if len(fx.Notifications) == 0 && !fx.Celebrate {
		return
	}
	queued := make([]models.Notification, 0, len(fx.Notifications))
	for _, n := range fx.Notifications {
		queued = append(queued, o.queue.Push(n))
	}
	if o.onEffects != nil {
		o.onEffects(Effects{Notifications: queued, Celebrate: fx.Celebrate})
	}
}

// setScreen switches screens, cancelling work started by the previous one.
// Callers hold o.mu.
func (o *Orchestrator) setScreen(to Screen) Effects {
	o.cancelScreen()
	o.screenCtx, o.cancelScreen = context.WithCancel(context.Background())
	o.screen = to

	if to.tracked() {
		o.markers = append(o.markers, to)
		return Effects{}
	}

	o.markers = nil
	if to != ScreenHome {
		return Effects{}
	}

	o.lessonWord = nil
	o.reviewWords = nil
	out := o.engine.CheckAchievements(o.progress, "")
	if len(out.Notifications) == 0 {
		return Effects{}
	}
	return o.apply(out)
}

// Start leaves the welcome screen
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	if o.screen != ScreenWelcome {
		o.mu.Unlock()
		return ErrWrongScreen
	}
	o.visited = true
	o.writeKey(store.KeyHasVisited, "true")
	if !o.onboarded {
		o.showOnboarding = true
	}
	fx := o.setScreen(ScreenHome)
	o.mu.Unlock()

	o.emit(fx)
	return nil
}

// ShowOnboarding reports whether the onboarding guide should be displayed
func (o *Orchestrator) ShowOnboarding() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.showOnboarding
}

// CompleteOnboarding hides the onboarding guide for good
func (o *Orchestrator) CompleteOnboarding() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.showOnboarding = false
	o.onboarded = true
	o.writeKey(store.KeyHasOnboarded, "true")
}

// Navigate moves to another screen. Lesson completion and review are entered
// through CompleteLesson and StartReview. The screen is locked while an ad is
// pending.
func (o *Orchestrator) Navigate(to Screen) error {
	o.mu.Lock()
	if o.adPending {
		o.mu.Unlock()
		return ErrAdPending
	}
	if !CanTransition(o.screen, to) || to == ScreenLessonComplete || to == ScreenReview {
		from := o.screen
		o.mu.Unlock()
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	if to == ScreenPractice && o.lessonWord == nil {
		o.mu.Unlock()
		return ErrWrongScreen
	}
	fx := o.setScreen(to)
	o.mu.Unlock()

	o.emit(fx)
	return nil
}

// Back handles the platform back signal: any screen with a navigation marker
// returns home. It reports false when there is nothing to go back from.
func (o *Orchestrator) Back() bool {
	o.mu.Lock()
	if len(o.markers) == 0 || o.adPending {
		o.mu.Unlock()
		return false
	}
	fx := o.setScreen(ScreenHome)
	o.mu.Unlock()

	o.emit(fx)
	return true
}

// CompleteLesson records the lesson of word. When an ad is due it is shown
// first and the lesson is committed once the ad is dismissed; deferred then
// reports true.
func (o *Orchestrator) CompleteLesson(word models.DailyWord, isFirstTry bool) (deferred bool, err error) {
	o.mu.Lock()
	if o.screen != ScreenLearning {
		o.mu.Unlock()
		return false, ErrWrongScreen
	}
	if o.adPending {
		o.mu.Unlock()
		return false, ErrAdPending
	}

	if !gamification.ShouldShowAd(o.progress) || o.ads == nil {
		fx, err := o.commitLesson(word, isFirstTry)
		o.mu.Unlock()
		if err != nil {
			return false, err
		}
		o.emit(fx)
		return false, nil
	}

	o.adPending = true
	o.mu.Unlock()

	var once sync.Once
	o.ads.Show(func() {
		once.Do(func() {
			o.mu.Lock()
			fx, err := o.commitLesson(word, isFirstTry)
			o.mu.Unlock()
			if err != nil {
				o.logger.Printf("Failed to complete lesson after ad: %v", err)
				return
			}
			o.emit(fx)
		})
	})
	return true, nil
}

// commitLesson applies a lesson completion. Callers hold o.mu.
func (o *Orchestrator) commitLesson(word models.DailyWord, isFirstTry bool) (Effects, error) {
	o.adPending = false
	out, err := o.engine.CompleteLesson(o.progress, word, isFirstTry)
	if err != nil {
		return Effects{}, err
	}
	fx := o.apply(out)

	if o.screen == ScreenLearning {
		o.setScreen(ScreenLessonComplete)
		w := word
		o.lessonWord = &w
	}
	return fx, nil
}

// AdPending reports whether a lesson waits for an ad to be dismissed
func (o *Orchestrator) AdPending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.adPending
}

// FinishReview rewards the review session and returns home
func (o *Orchestrator) FinishReview() error {
	return o.finishActivity(ScreenReview, o.engine.ReviewSession)
}

// FinishPractice rewards the practice conversation and returns home
func (o *Orchestrator) FinishPractice() error {
	return o.finishActivity(ScreenPractice, o.engine.PracticeSession)
}

func (o *Orchestrator) finishActivity(on Screen, reward func(models.UserProgress) gamification.Outcome) error {
	o.mu.Lock()
	if o.screen != on {
		o.mu.Unlock()
		return ErrWrongScreen
	}
	fx := o.apply(reward(o.progress))
	home := o.setScreen(ScreenHome)
	o.mu.Unlock()

	o.emit(merge(fx, home))
	return nil
}

// FoundRelatedWord rewards discovering a related word
func (o *Orchestrator) FoundRelatedWord() {
	o.reward(o.engine.RelatedWordFound)
}

// VisualizedWord rewards generating a mnemonic image
func (o *Orchestrator) VisualizedWord() {
	o.reward(o.engine.VisualizeWord)
}

func (o *Orchestrator) reward(reward func(models.UserProgress) gamification.Outcome) {
	o.mu.Lock()
	fx := o.apply(reward(o.progress))
	o.mu.Unlock()
	o.emit(fx)
}

// StartReview picks up to five words at random, from the given ids or from
// every learned word when ids is nil, and enters the review screen. It
// returns the number of words picked; zero leaves the session unchanged.
func (o *Orchestrator) StartReview(ids []string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.screen != ScreenMemoryChest {
		return 0, ErrWrongScreen
	}

	var candidates []models.DailyWord
	if ids == nil {
		for _, key := range o.progress.LearnedWordKeys() {
			candidates = append(candidates, o.progress.LearnedWords[key])
		}
	} else {
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if w, ok := o.progress.LearnedWords[id]; ok && !seen[id] {
				seen[id] = true
				candidates = append(candidates, w)
			}
		}
	}

	var words []models.DailyWord
	o.WithRand(func(rnd *rand.Rand) { words = quiz.SelectReview(rnd, candidates) })
	if len(words) == 0 {
		return 0, nil
	}

	o.setScreen(ScreenReview)
	o.reviewWords = words
	return len(words), nil
}

// ReviewWords returns the words of the running review session
func (o *Orchestrator) ReviewWords() []models.DailyWord {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]models.DailyWord{}, o.reviewWords...)
}

// CreateCollection adds an empty collection
func (o *Orchestrator) CreateCollection(name string) (models.Collection, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, c, err := o.engine.CreateCollection(o.progress, name)
	if err != nil {
		return models.Collection{}, err
	}
	o.progress = next
	o.persist()
	return c, nil
}

// UpdateCollections sets which collections hold wordID
func (o *Orchestrator) UpdateCollections(wordID string, selectedIDs []string, newName string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, err := o.engine.UpdateCollections(o.progress, wordID, selectedIDs, newName)
	if err != nil {
		return err
	}
	o.progress = next
	o.persist()
	return nil
}

// SetNativeLanguage changes the native language. Choosing the target
// language swaps the pair.
func (o *Orchestrator) SetNativeLanguage(lang models.Language) error {
	return o.setLanguages(lang, true)
}

// SetTargetLanguage changes the language being learned. Choosing the native
// language swaps the pair.
func (o *Orchestrator) SetTargetLanguage(lang models.Language) error {
	return o.setLanguages(lang, false)
}

func (o *Orchestrator) setLanguages(lang models.Language, native bool) error {
	if !lang.Valid() {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, lang)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if native {
		if lang == o.target {
			o.target = o.native
		}
		o.native = lang
	} else {
		if lang == o.native {
			o.native = o.target
		}
		o.target = lang
	}
	o.writeKey(store.KeyNativeLanguage, string(o.native))
	o.writeKey(store.KeyTargetLanguage, string(o.target))
	return nil
}

// Languages returns the native and target languages
func (o *Orchestrator) Languages() (native, target models.Language) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.native, o.target
}

// Reset wipes every stored key of the learner and starts over from the
// welcome screen. It is refused while an ad is pending.
func (o *Orchestrator) Reset(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrResetNotConfirmed
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.adPending {
		return ErrAdPending
	}
	if err := o.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear progress: %w", err)
	}
	o.cancelScreen()
	o.restore(models.DefaultProgress(), models.DefaultNativeLanguage, models.DefaultTargetLanguage, false, false)
	o.screenCtx, o.cancelScreen = context.WithCancel(context.Background())
	return nil
}

// RefreshStreak zeroes a lapsed streak and reports whether it changed
func (o *Orchestrator) RefreshStreak() bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	next, changed := o.engine.RefreshStreak(o.progress)
	if changed {
		o.progress = next
		o.persist()
	}
	return changed
}

// Progress returns a copy of the progress record
func (o *Orchestrator) Progress() models.UserProgress {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.progress.Clone()
}

// Statistics summarises the progress record
func (o *Orchestrator) Statistics() gamification.Statistics {
	o.mu.Lock()
	defer o.mu.Unlock()
	return gamification.BuildStatistics(o.progress)
}

// Screen returns the current screen
func (o *Orchestrator) Screen() Screen {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screen
}

// ScreenContext is cancelled as soon as the screen changes. Requests started
// for a screen use it so that late results are dropped.
func (o *Orchestrator) ScreenContext() context.Context {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.screenCtx
}

// LessonWord returns the word of the lesson just completed
func (o *Orchestrator) LessonWord() (models.DailyWord, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.lessonWord == nil {
		return models.DailyWord{}, false
	}
	return *o.lessonWord, true
}

// Notifications returns the visible notifications
func (o *Orchestrator) Notifications() []models.Notification {
	return o.queue.Active()
}

// WithRand runs fn with exclusive use of the session's random source
func (o *Orchestrator) WithRand(fn func(rnd *rand.Rand)) {
	o.randMu.Lock()
	defer o.randMu.Unlock()
	fn(o.rnd)
}

// Close cancels screen work and notification timers
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.cancelScreen()
	o.mu.Unlock()
	o.queue.Close()
}

func merge(a, b Effects) Effects {
	return Effects{
		Notifications: append(append([]models.Notification{}, a.Notifications...), b.Notifications...),
		Celebrate:     a.Celebrate || b.Celebrate,
	}
}
