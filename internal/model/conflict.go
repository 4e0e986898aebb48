package model

// ConflictType distinguishes the two kinds of problems the planner reports
// for a day's allocations.
type ConflictType string

const (
	// ConflictOverlap means two windows intersect in time.
	ConflictOverlap ConflictType = "overlap"
	// ConflictCategory means two windows reference the same category.
	ConflictCategory ConflictType = "category_conflict"
)

// Conflict is derived, never persisted: it is recomputed from the current
// allocation list every time a plan is inspected.
type Conflict struct {
	TimeWindowIDs [2]uint      `json:"time_window_ids"`
	Message       string       `json:"message"`
	Type          ConflictType `json:"type"`
}
