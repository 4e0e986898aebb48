package model

import "time"

// Setting is a key-value row used for small durable state that does not
// deserve its own table: timer snapshots, UI preferences.
type Setting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
