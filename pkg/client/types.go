package client

import "time"

// User is the identity resolved for the request.
type User struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Timezone       string `json:"timezone"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
}

// Task mirrors the API's task entity.
type Task struct {
	ID             uint       `json:"id"`
	UserID         uint       `json:"user_id"`
	CategoryID     *uint      `json:"category_id,omitempty"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Deadline       *time.Time `json:"deadline,omitempty"`
	IsCompleted    bool       `json:"is_completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	PomodorosSpent int        `json:"pomodoros_spent"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Category is a user-scoped task label.
type Category struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeWindow is one block inside a template.
type TimeWindow struct {
	ID          uint   `json:"id"`
	TemplateID  uint   `json:"template_id"`
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id,omitempty"`
	Position    int    `json:"position"`
}

// Template is a reusable day layout.
type Template struct {
	ID        uint         `json:"id"`
	UserID    uint         `json:"user_id"`
	Name      string       `json:"name"`
	IsDefault bool         `json:"is_default"`
	Windows   []TimeWindow `json:"windows"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Allocation is one scheduled block of a daily plan. Times are minutes from
// midnight, the interval is half-open.
type Allocation struct {
	ID          uint   `json:"id"`
	PlanID      uint   `json:"plan_id"`
	Description string `json:"description"`
	StartTime   int    `json:"start_time"`
	EndTime     int    `json:"end_time"`
	CategoryID  *uint  `json:"category_id,omitempty"`
	Position    int    `json:"position"`
	Tasks       []Task `json:"tasks"`
}

// DailyPlan is one day's schedule.
type DailyPlan struct {
	ID          uint         `json:"id"`
	UserID      uint         `json:"user_id"`
	Date        string       `json:"date"`
	TemplateID  *uint        `json:"template_id,omitempty"`
	Allocations []Allocation `json:"allocations"`
}

// Conflict is a derived problem between two windows of a plan.
type Conflict struct {
	TimeWindowIDs [2]uint `json:"time_window_ids"`
	Message       string  `json:"message"`
	Type          string  `json:"type"`
}

// DailyStats is one day's productivity counters.
type DailyStats struct {
	ID                 uint   `json:"id"`
	UserID             uint   `json:"user_id"`
	Date               string `json:"date"`
	TasksPlanned       int    `json:"tasks_planned"`
	TasksCompleted     int    `json:"tasks_completed"`
	PomodorosCompleted int    `json:"pomodoros_completed"`
	WorkSeconds        int    `json:"work_seconds"`
}

// TimerState is the pomodoro timer as the API reports it. Field names are
// the timer's persisted camelCase ones.
type TimerState struct {
	Mode               string `json:"mode"`
	TimeRemaining      int    `json:"timeRemaining"`
	IsActive           bool   `json:"isActive"`
	PomodorosCompleted int    `json:"pomodorosCompleted"`
	FocusTaskID        uint   `json:"focusTaskId"`
}

// MovePolicy selects how a moved window is fitted into its new position.
type MovePolicy string

const (
	// MoveGap fits the window into free time at the target position.
	MoveGap MovePolicy = "gap"
	// MoveShift pushes later windows down to make room.
	MoveShift MovePolicy = "shift"
)
