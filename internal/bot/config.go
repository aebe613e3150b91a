package bot

import (
	"time"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// AdSkipDelay is how long an interstitial must stay before it can be skipped
	AdSkipDelay time.Duration
	// RequestTimeout bounds every content request
	RequestTimeout time.Duration
	// CelebrationMark is appended to messages that deserve confetti
	CelebrationMark string
	// AdminUserIDs may use admin commands
	AdminUserIDs map[int64]bool
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		AdSkipDelay:     5 * time.Second,
		RequestTimeout:  45 * time.Second,
		CelebrationMark: "🎉",
		AdminUserIDs:    make(map[int64]bool),
	}
}
