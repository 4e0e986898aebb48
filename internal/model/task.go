package model

import "time"

// Task represents a single item in the planner. Tasks live independently of
// any particular day; daily plans reference them through allocations.
type Task struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	UserID         uint       `gorm:"index" json:"user_id"`
	CategoryID     *uint      `gorm:"index" json:"category_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	IsCompleted    bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	PomodorosSpent int        `gorm:"default:0" json:"pomodoros_spent"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
