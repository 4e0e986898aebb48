package model

import "time"

// User owns all planner data. Identity is resolved by the API layer from a
// trusted header; authentication itself lives in front of the service.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `json:"name"`
	Email          string    `gorm:"uniqueIndex" json:"email"`
	Timezone       string    `json:"timezone"`
	TelegramChatID *int64    `gorm:"uniqueIndex" json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
