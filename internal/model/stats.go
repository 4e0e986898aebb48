package model

import "time"

// DailyStats aggregates one user-day: planned versus completed tasks and
// the pomodoro work logged against it. Rows are upserted incrementally as
// events happen and reconciled by the nightly rollup job.
type DailyStats struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	UserID             uint      `gorm:"index:idx_user_stats_date,unique" json:"user_id"`
	Date               string    `gorm:"index:idx_user_stats_date,unique" json:"date"` // YYYY-MM-DD
	TasksPlanned       int       `gorm:"default:0" json:"tasks_planned"`
	TasksCompleted     int       `gorm:"default:0" json:"tasks_completed"`
	PomodorosCompleted int       `gorm:"default:0" json:"pomodoros_completed"`
	WorkSeconds        int       `gorm:"default:0" json:"work_seconds"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
