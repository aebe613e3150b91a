package bot

import (
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const callbackAdDismiss = "ad_dismiss"

type pendingAd struct {
	shownAt   time.Time
	onDismiss func()
}

// adPresenter shows interstitials as a chat message with a continue button
type adPresenter struct {
	bot    *Bot
	chatID int64
}

// Show implements session.AdPresenter
func (a *adPresenter) Show(onDismiss func()) {
	a.bot.mu.Lock()
	a.bot.ads[a.chatID] = &pendingAd{shownAt: a.bot.now(), onDismiss: onDismiss}
	a.bot.mu.Unlock()

	msg := tgbotapi.NewMessage(a.chatID, fmt.Sprintf(
		"📺 A short break from our sponsor.\n\nYour lesson reward is waiting: press Continue in %d seconds to collect it.",
		int(a.bot.config.AdSkipDelay.Seconds())))
	msg.ReplyMarkup = createKeyboard([][]MenuButton{{{Text: "▶️ Continue", CallbackData: callbackAdDismiss}}})
	if err := a.bot.sendMessage(msg); err != nil {
		a.bot.logger.Printf("Failed to show ad to chat %d, releasing reward: %v", a.chatID, err)
		a.bot.dismissAd(a.chatID, true)
	}
}

// dismissAd runs the pending dismiss callback once. Unless force is set the
// ad must have been visible for AdSkipDelay; remaining is returned otherwise.
func (b *Bot) dismissAd(chatID int64, force bool) (dismissed bool, remaining time.Duration) {
	b.mu.Lock()
	ad, ok := b.ads[chatID]
	if !ok {
		b.mu.Unlock()
		return false, 0
	}
	if elapsed := b.now().Sub(ad.shownAt); !force && elapsed < b.config.AdSkipDelay {
		b.mu.Unlock()
		return false, b.config.AdSkipDelay - elapsed
	}
	delete(b.ads, chatID)
	b.mu.Unlock()

	ad.onDismiss()
	return true, 0
}
