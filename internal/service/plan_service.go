package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/schedule"
)

// MovePolicy selects how the rest of the day reacts when a window is
// dragged to a new position.
type MovePolicy string

const (
	// MoveGap fits the dragged window into the gap between its new
	// neighbours and leaves everything else alone.
	MoveGap MovePolicy = "gap"
	// MoveShift pushes later windows along to make room, dropping any
	// that no longer fit before midnight.
	MoveShift MovePolicy = "shift"
)

// AllocationInput carries a new time window for a daily plan. Force skips
// the overlap rejection; the conflict report will still surface the overlap.
type AllocationInput struct {
	Description string
	StartTime   int
	EndTime     int
	CategoryID  *uint
	Force       bool
}

// PlanService manages daily plans: instantiating them from templates,
// placing and reflowing allocations, and assigning tasks to windows.
type PlanService struct {
	repo         *repository.PlanRepository
	templateRepo *repository.TemplateRepository
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	logger       *zap.Logger
}

func NewPlanService(
	repo *repository.PlanRepository,
	templateRepo *repository.TemplateRepository,
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	logger *zap.Logger,
) *PlanService {
	return &PlanService{
		repo:         repo,
		templateRepo: templateRepo,
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		logger:       logger,
	}
}

// Get returns the user's plan for the date, allocations and tasks included.
func (s *PlanService) Get(ctx context.Context, user *model.User, date string) (*model.DailyPlan, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}
	return s.repo.FindByDate(ctx, user.ID, date)
}

// GetOrCreate returns the plan for the date, instantiating it from a
// template when it does not exist yet. templateName selects the template;
// empty means the user's default. A missing default yields an empty plan.
func (s *PlanService) GetOrCreate(ctx context.Context, user *model.User, date, templateName string) (*model.DailyPlan, error) {
	if err := validateDate(date); err != nil {
		return nil, err
	}

	plan, err := s.repo.FindByDate(ctx, user.ID, date)
	switch {
	case err == nil:
		return plan, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return s.instantiate(ctx, user, date, templateName)
	default:
		return nil, err
	}
}

func (s *PlanService) instantiate(ctx context.Context, user *model.User, date, templateName string) (*model.DailyPlan, error) {
	var tpl *model.DayTemplate
	var err error
	if templateName != "" {
		tpl, err = s.templateRepo.FindByName(ctx, user.ID, templateName)
		if err != nil {
			return nil, err
		}
	} else {
		tpl, err = s.templateRepo.FindDefault(ctx, user.ID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	plan := model.DailyPlan{UserID: user.ID, Date: date}
	if tpl != nil {
		plan.TemplateID = &tpl.ID
		for i, w := range tpl.Windows {
			plan.Allocations = append(plan.Allocations, model.Allocation{
				Description: w.Description,
				StartTime:   w.StartTime,
				EndTime:     w.EndTime,
				CategoryID:  w.CategoryID,
				Position:    i,
			})
		}
	}
	if err := s.repo.Create(ctx, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// AddAllocation places a new window on the day. Overlapping windows are
// rejected with ErrConflict unless input.Force is set.
func (s *PlanService) AddAllocation(ctx context.Context, user *model.User, date string, input AllocationInput) (*model.Allocation, error) {
	if err := validateWindowTimes(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if err := ensureCategoryExists(ctx, s.categoryRepo, user, input.CategoryID); err != nil {
		return nil, err
	}

	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return nil, err
	}
	if !input.Force && schedule.CheckOverlap(input.StartTime, input.EndTime, plan.Allocations) {
		return nil, fmt.Errorf("%w: window [%d, %d) overlaps an existing allocation", ErrConflict, input.StartTime, input.EndTime)
	}

	alloc := model.Allocation{
		PlanID:      plan.ID,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CategoryID:  input.CategoryID,
		Position:    len(plan.Allocations),
	}
	if err := s.repo.AddAllocation(ctx, &alloc); err != nil {
		return nil, err
	}
	return &alloc, nil
}

// RemoveAllocation deletes a window from the day, releasing its tasks.
func (s *PlanService) RemoveAllocation(ctx context.Context, user *model.User, date string, allocID uint) error {
	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return err
	}
	return s.repo.DeleteAllocation(ctx, plan.ID, allocID)
}

// MoveWindow reorders the allocation to newPosition and reflows the day
// under the given policy. It returns the plan after the reflow. ErrNoSpace
// is surfaced untouched so callers can distinguish "won't fit" from failure.
func (s *PlanService) MoveWindow(ctx context.Context, user *model.User, date string, allocID uint, newPosition int, policy MovePolicy) (*model.DailyPlan, error) {
	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return nil, err
	}

	from := -1
	for i, a := range plan.Allocations {
		if a.ID == allocID {
			from = i
			break
		}
	}
	if from == -1 {
		return nil, gorm.ErrRecordNotFound
	}

	ordered, to := moveToPosition(plan.Allocations, from, newPosition)

	var updated []model.Allocation
	switch policy {
	case MoveGap:
		updated, err = schedule.RecalcGapFit(ordered, to)
	case MoveShift:
		updated = schedule.RecalcShift(ordered, to)
	default:
		return nil, fmt.Errorf("%w: unknown move policy %q", ErrInvalidInput, policy)
	}
	if err != nil {
		if errors.Is(err, schedule.ErrNoSpace) {
			getMetrics().reflowTotal.WithLabelValues(string(policy), "no_space").Inc()
		}
		return nil, err
	}

	dropped := droppedAllocationIDs(ordered, updated)
	if err := s.repo.SaveReflow(ctx, plan.ID, updated, dropped); err != nil {
		getMetrics().reflowTotal.WithLabelValues(string(policy), "error").Inc()
		return nil, err
	}
	getMetrics().reflowTotal.WithLabelValues(string(policy), "ok").Inc()
	if len(dropped) > 0 {
		s.logger.Info("reflow dropped windows past midnight",
			zap.String("date", date),
			zap.Uint("user_id", user.ID),
			zap.Int("dropped", len(dropped)))
	}

	return s.repo.FindByDate(ctx, user.ID, date)
}

// Conflicts recomputes the day's conflict report from its current windows.
func (s *PlanService) Conflicts(ctx context.Context, user *model.User, date string) ([]model.Conflict, error) {
	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return nil, err
	}
	return schedule.Conflicts(plan.Allocations), nil
}

// AssignTask attaches one of the user's tasks to a window of the day.
func (s *PlanService) AssignTask(ctx context.Context, user *model.User, date string, allocID, taskID uint) error {
	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return err
	}
	alloc, err := s.repo.FindAllocation(ctx, plan.ID, allocID)
	if err != nil {
		return err
	}
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return err
	}
	for _, assigned := range alloc.Tasks {
		if assigned.ID == task.ID {
			return nil
		}
	}
	return s.repo.AssignTask(ctx, alloc, task)
}

// UnassignTask detaches a task from a window. The task itself survives.
func (s *PlanService) UnassignTask(ctx context.Context, user *model.User, date string, allocID, taskID uint) error {
	plan, err := s.Get(ctx, user, date)
	if err != nil {
		return err
	}
	alloc, err := s.repo.FindAllocation(ctx, plan.ID, allocID)
	if err != nil {
		return err
	}
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return err
	}
	return s.repo.UnassignTask(ctx, alloc, task)
}

func validateDate(date string) error {
	if _, err := ParseDate(date); err != nil {
		return fmt.Errorf("%w: invalid date %q, want YYYY-MM-DD", ErrInvalidInput, date)
	}
	return nil
}

// moveToPosition returns a copy of allocs with the element at from removed
// and re-inserted at to, clamped into range, plus the index it landed on.
func moveToPosition(allocs []model.Allocation, from, to int) ([]model.Allocation, int) {
	out := make([]model.Allocation, 0, len(allocs))
	out = append(out, allocs[:from]...)
	out = append(out, allocs[from+1:]...)
	if to < 0 {
		to = 0
	}
	if to > len(out) {
		to = len(out)
	}
	out = append(out, model.Allocation{})
	copy(out[to+1:], out[to:])
	out[to] = allocs[from]
	return out, to
}

func droppedAllocationIDs(before, after []model.Allocation) []uint {
	kept := make(map[uint]struct{}, len(after))
	for _, a := range after {
		kept[a.ID] = struct{}{}
	}
	var dropped []uint
	for _, a := range before {
		if _, ok := kept[a.ID]; !ok {
			dropped = append(dropped, a.ID)
		}
	}
	return dropped
}
