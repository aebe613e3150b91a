package models

import "time"

// NotificationCategory is the kind of a toast notification
type NotificationCategory string

const (
	CategoryXP          NotificationCategory = "xp"
	CategoryLevel       NotificationCategory = "level"
	CategoryAchievement NotificationCategory = "achievement"
)

// Notification is an ephemeral message shown to the learner. It is never persisted.
type Notification struct {
	ID        int64                `json:"id"`
	Category  NotificationCategory `json:"category"`
	Message   string               `json:"message"`
	Icon      string               `json:"icon,omitempty"`
	ExpiresAt time.Time            `json:"expiresAt"`
}
