package model

import "time"

// DailyPlan is one concrete day: a dated sequence of time-window
// allocations, usually instantiated from a day template.
type DailyPlan struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	UserID      uint         `gorm:"index:idx_user_plan_date,unique" json:"user_id"`
	Date        string       `gorm:"index:idx_user_plan_date,unique" json:"date"` // YYYY-MM-DD
	TemplateID  *uint        `json:"template_id,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Allocations []Allocation `gorm:"foreignKey:PlanID" json:"allocations"`
}

// Allocation is a time window placed on a daily plan together with the tasks
// assigned to it. Window fields are copied from the template at instantiation
// so editing a plan never mutates the template it came from. The allocation
// owns only the assignment; the tasks themselves belong to the user.
type Allocation struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	PlanID      uint      `gorm:"index" json:"plan_id"`
	Description string    `json:"description"`
	StartTime   int       `json:"start_time"` // minutes from midnight
	EndTime     int       `json:"end_time"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tasks       []Task    `gorm:"many2many:allocation_tasks" json:"tasks"`
}

// Duration returns the allocation length in minutes.
func (a Allocation) Duration() int {
	return a.EndTime - a.StartTime
}
