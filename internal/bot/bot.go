// Package bot is the Telegram front end: every chat drives one learner
// session through commands, inline buttons and free text.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/example/verbadiem/internal/ai"
	"github.com/example/verbadiem/internal/quiz"
	"github.com/example/verbadiem/internal/session"
	"github.com/example/verbadiem/pkg/models"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MenuButton represents a button in the menu
type MenuButton struct {
	Text         string
	CallbackData string
}

// createKeyboard creates a keyboard from menu buttons
func createKeyboard(buttons [][]MenuButton) tgbotapi.InlineKeyboardMarkup {
	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, row := range buttons {
		var keyboardRow []tgbotapi.InlineKeyboardButton
		for _, button := range row {
			keyboardRow = append(keyboardRow, tgbotapi.NewInlineKeyboardButtonData(button.Text, button.CallbackData))
		}
		keyboard = append(keyboard, keyboardRow)
	}
	return tgbotapi.NewInlineKeyboardMarkup(keyboard...)
}

// sender is the part of the Telegram API the bot uses
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Publisher receives every notification shown to a learner
type Publisher interface {
	Publish(profileID int64, n models.Notification)
}

// Bot represents the Telegram bot application
type Bot struct {
	api       sender
	botAPI    *tgbotapi.BotAPI
	token     string
	config    *BotConfig
	registry  *session.Registry
	generator ai.Generator
	deck      *quiz.Deck
	publisher Publisher
	logger    *log.Logger
	now       func() time.Time

	mu    sync.Mutex
	chats map[int64]*chatState
	ads   map[int64]*pendingAd
}

// Options are the collaborators of the bot. Generator and Publisher may be nil.
type Options struct {
	Token     string
	Config    *BotConfig
	Registry  *session.Registry
	Generator ai.Generator
	Deck      *quiz.Deck
	Publisher Publisher
	Logger    *log.Logger
}

// New creates a new bot instance
func New(opts Options) (*Bot, error) {
	if opts.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	if opts.Registry == nil {
		return nil, fmt.Errorf("session registry is required")
	}

	b := newBot(nil, opts)
	b.token = opts.Token
	return b, nil
}

func newBot(api sender, opts Options) *Bot {
	b := &Bot{
		api:       api,
		config:    opts.Config,
		registry:  opts.Registry,
		generator: opts.Generator,
		deck:      opts.Deck,
		publisher: opts.Publisher,
		logger:    opts.Logger,
		now:       time.Now,
		chats:     make(map[int64]*chatState),
		ads:       make(map[int64]*pendingAd),
	}
	if b.config == nil {
		b.config = DefaultConfig()
	}
	if b.deck == nil {
		b.deck = quiz.NewDeck()
	}
	if b.logger == nil {
		b.logger = log.Default()
	}
	return b
}

// ConfigureSession wires a learner session to this chat: ads and
// notifications are delivered as chat messages. Pass it to session.NewRegistry.
func (b *Bot) ConfigureSession(profileID int64, opts *session.Options) {
	opts.Ads = &adPresenter{bot: b, chatID: profileID}
	opts.OnEffects = func(fx session.Effects) {
		b.deliverEffects(profileID, fx)
	}
}

// Start connects to Telegram and handles updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	botAPI, err := tgbotapi.NewBotAPI(b.token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	b.botAPI = botAPI
	b.api = botAPI
	b.logger.Printf("Authorized on account %s", botAPI.Self.UserName)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	if b.botAPI != nil {
		b.botAPI.StopReceivingUpdates()
	}
	b.logger.Println("Bot stopped")
}

// SendStreakReminder implements scheduler.Notifier. In private chats the
// user id is the chat id.
func (b *Bot) SendStreakReminder(profileID int64, streak int) error {
	msg := tgbotapi.NewMessage(profileID, fmt.Sprintf(
		"🔥 Your %d-day streak ends tonight! Learn today's word to keep it going.", streak))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "📖 Today's word", CallbackData: callbackLesson}}})
	if err := b.sendMessage(msg); err != nil {
		return fmt.Errorf("failed to send reminder: %w", err)
	}
	return nil
}

// deliverEffects sends notifications as one short message
func (b *Bot) deliverEffects(profileID int64, fx session.Effects) {
	if b.publisher != nil {
		for _, n := range fx.Notifications {
			b.publisher.Publish(profileID, n)
		}
	}

	lines := make([]string, 0, len(fx.Notifications))
	for _, n := range fx.Notifications {
		lines = append(lines, notificationText(n))
	}
	if fx.Celebrate {
		lines = append(lines, b.config.CelebrationMark)
	}
	if len(lines) == 0 {
		return
	}

	if err := b.sendMessage(tgbotapi.NewMessage(profileID, strings.Join(lines, "\n"))); err != nil {
		b.logger.Printf("Failed to send notifications to %d: %v", profileID, err)
	}
}

func notificationText(n models.Notification) string {
	switch n.Category {
	case models.CategoryXP:
		return "⭐ " + n.Message
	case models.CategoryLevel:
		return "🆙 " + n.Message
	case models.CategoryAchievement:
		return "🏅 " + n.Message
	default:
		return n.Message
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	return b.config.AdminUserIDs[userID]
}

// handleUpdate handles incoming updates from Telegram
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	var err error
	switch {
	case update.Message != nil && update.Message.IsCommand():
		err = b.HandleCommand(ctx, update.Message)
	case update.Message != nil:
		err = b.HandleText(ctx, update.Message)
	case update.CallbackQuery != nil:
		err = b.HandleCallback(ctx, update.CallbackQuery)
	}
	if err != nil {
		b.logger.Printf("Error handling update %d: %v", update.UpdateID, err)
	}
}

func (b *Bot) sendMessage(msg tgbotapi.Chattable) error {
	if b.api == nil {
		return errors.New("bot is not connected")
	}
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendText(chatID int64, text string, buttons [][]MenuButton) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		msg.ReplyMarkup = createKeyboard(buttons)
	}
	return b.sendMessage(msg)
}

// sendError tells the user something failed and offers a way out
func (b *Bot) sendError(chatID int64, text string, err error, buttons [][]MenuButton) error {
	b.logger.Printf("Chat %d: %s: %v", chatID, text, err)
	if len(buttons) == 0 {
		buttons = [][]MenuButton{{homeButton}}
	}
	return b.sendText(chatID, "❌ "+text, buttons)
}

// requestContext bounds a content request by the screen's lifetime and the
// configured timeout
func (b *Bot) requestContext(o *session.Orchestrator) (context.Context, context.CancelFunc) {
	return context.WithTimeout(o.ScreenContext(), b.config.RequestTimeout)
}
