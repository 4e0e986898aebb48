// Package schedule implements the pure time-window arithmetic behind the
// day planner: overlap detection and the two reflow policies applied when a
// window is dragged to a new position within its day. Functions here never
// touch storage and never mutate their inputs; callers pass the allocation
// list in its post-drag order and persist whatever comes back.
package schedule

import (
	"errors"
	"fmt"

	"dayplan/internal/model"
)

// MinuteOfDayMax is the last schedulable minute of a day (23:59).
const MinuteOfDayMax = 1439

var (
	// ErrNoSpace reports that the neighbours of the dragged window leave no
	// positive gap to fit it into. Callers cancel the drag.
	ErrNoSpace = errors.New("no space for time window")

	// ErrIndexOutOfRange reports a dragged index outside the allocation list.
	ErrIndexOutOfRange = errors.New("window index out of range")
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Windows that merely touch at a boundary do not
// overlap; identical intervals do.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// CheckOverlap reports whether the candidate interval intersects any of the
// existing allocations. An empty list never overlaps.
func CheckOverlap(startTime, endTime int, existing []model.Allocation) bool {
	for _, alloc := range existing {
		if Overlaps(startTime, endTime, alloc.StartTime, alloc.EndTime) {
			return true
		}
	}
	return false
}

// Conflicts scans every allocation pair and reports time overlaps and
// duplicate categories. A pair can contribute both conflict kinds; the
// result is ordered by pair position and nil when the day is clean.
func Conflicts(allocs []model.Allocation) []model.Conflict {
	var conflicts []model.Conflict
	for i := 0; i < len(allocs); i++ {
		for j := i + 1; j < len(allocs); j++ {
			a, b := allocs[i], allocs[j]
			if Overlaps(a.StartTime, a.EndTime, b.StartTime, b.EndTime) {
				conflicts = append(conflicts, model.Conflict{
					TimeWindowIDs: [2]uint{a.ID, b.ID},
					Message:       fmt.Sprintf("%s overlaps %s", windowLabel(a), windowLabel(b)),
					Type:          model.ConflictOverlap,
				})
			}
			if a.CategoryID != nil && b.CategoryID != nil && *a.CategoryID == *b.CategoryID {
				conflicts = append(conflicts, model.Conflict{
					TimeWindowIDs: [2]uint{a.ID, b.ID},
					Message:       fmt.Sprintf("%s and %s use the same category", windowLabel(a), windowLabel(b)),
					Type:          model.ConflictCategory,
				})
			}
		}
	}
	return conflicts
}

// RecalcGapFit places the window at draggedIdx into the free interval
// between its new neighbours without disturbing any other window. The left
// boundary is the predecessor's end (midnight when the window is first),
// the right boundary is the successor's start (end of day when it is last).
// The dragged window keeps its duration when the gap is large enough,
// anchored to the earliest point of the gap, and is shortened to exactly
// fill the gap otherwise. ErrNoSpace is returned when the gap is zero or
// negative. A lone window has no neighbours to fit against and is returned
// unchanged.
func RecalcGapFit(allocs []model.Allocation, draggedIdx int) ([]model.Allocation, error) {
	if len(allocs) == 0 {
		return []model.Allocation{}, nil
	}
	if draggedIdx < 0 || draggedIdx >= len(allocs) {
		return nil, fmt.Errorf("%w: index %d with %d windows", ErrIndexOutOfRange, draggedIdx, len(allocs))
	}

	result := make([]model.Allocation, len(allocs))
	copy(result, allocs)
	if len(result) == 1 {
		return result, nil
	}

	left := 0
	if draggedIdx > 0 {
		left = result[draggedIdx-1].EndTime
	}
	right := MinuteOfDayMax
	if draggedIdx < len(result)-1 {
		right = result[draggedIdx+1].StartTime
	}

	gap := right - left
	if gap <= 0 {
		return nil, ErrNoSpace
	}

	dragged := result[draggedIdx]
	duration := dragged.Duration()
	dragged.StartTime = left
	if duration <= gap {
		dragged.EndTime = left + duration
	} else {
		dragged.EndTime = right
	}
	result[draggedIdx] = dragged
	return result, nil
}

// RecalcShift keeps the dragged window exactly where it is and cascades
// every later window forward just enough to remove overlaps, each keeping
// its own duration. A shifted window whose end runs past the last minute of
// the day is clamped to it, and windows left with nothing before midnight
// are dropped entirely, so the result may be shorter than the input.
// Windows before draggedIdx are untouched.
func RecalcShift(allocs []model.Allocation, draggedIdx int) []model.Allocation {
	result := make([]model.Allocation, 0, len(allocs))
	if draggedIdx < 0 {
		draggedIdx = 0
	}

	for i, alloc := range allocs {
		if i <= draggedIdx {
			result = append(result, alloc)
			continue
		}
		prev := result[len(result)-1]
		if alloc.StartTime < prev.EndTime {
			duration := alloc.Duration()
			alloc.StartTime = prev.EndTime
			alloc.EndTime = alloc.StartTime + duration
		}
		if alloc.StartTime >= MinuteOfDayMax {
			continue
		}
		if alloc.EndTime > MinuteOfDayMax {
			alloc.EndTime = MinuteOfDayMax
		}
		if alloc.StartTime >= alloc.EndTime {
			continue
		}
		result = append(result, alloc)
	}
	return result
}

func windowLabel(a model.Allocation) string {
	if a.Description != "" {
		return fmt.Sprintf("%q", a.Description)
	}
	return fmt.Sprintf("window #%d", a.ID)
}
