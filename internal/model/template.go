package model

import "time"

// DayTemplate is a reusable layout of time windows ("Workday", "Weekend").
// Daily plans are instantiated from a template by copying its windows.
type DayTemplate struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	UserID    uint         `gorm:"index:idx_user_template_name,unique" json:"user_id"`
	Name      string       `gorm:"index:idx_user_template_name,unique" json:"name"`
	IsDefault bool         `gorm:"default:false" json:"is_default"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Windows   []TimeWindow `gorm:"foreignKey:TemplateID" json:"windows"`
}

// TimeWindow is a contiguous interval of a day inside a template.
// StartTime and EndTime are minutes from midnight in [0, 1439];
// a well-formed window has StartTime < EndTime.
type TimeWindow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	TemplateID  uint      `gorm:"index" json:"template_id"`
	Description string    `json:"description"`
	StartTime   int       `json:"start_time"`
	EndTime     int       `json:"end_time"`
	CategoryID  *uint     `gorm:"index" json:"category_id,omitempty"`
	Position    int       `json:"position"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
