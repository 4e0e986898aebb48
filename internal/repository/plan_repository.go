package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dayplan/internal/model"
)

// PlanRepository manages daily plans and their time-window allocations.
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func withAllocations(db *gorm.DB) *gorm.DB {
	return db.Preload("Allocations", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, start_time ASC")
	}).Preload("Allocations.Tasks")
}

// Create stores a plan together with its allocations.
func (r *PlanRepository) Create(ctx context.Context, plan *model.DailyPlan) error {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) FindByDate(ctx context.Context, userID uint, date string) (*model.DailyPlan, error) {
	var plan model.DailyPlan
	if err := withAllocations(r.db.WithContext(ctx)).
		Where("user_id = ? AND date = ?", userID, date).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByDate returns every user's plan for the given date, allocations and
// tasks included. Used by the nightly stats rollup.
func (r *PlanRepository) ListByDate(ctx context.Context, date string) ([]model.DailyPlan, error) {
	var plans []model.DailyPlan
	if err := withAllocations(r.db.WithContext(ctx)).
		Where("date = ?", date).Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *PlanRepository) AddAllocation(ctx context.Context, alloc *model.Allocation) error {
	if err := r.db.WithContext(ctx).Create(alloc).Error; err != nil {
		return fmt.Errorf("create allocation: %w", err)
	}
	return nil
}

func (r *PlanRepository) FindAllocation(ctx context.Context, planID, allocID uint) (*model.Allocation, error) {
	var alloc model.Allocation
	if err := r.db.WithContext(ctx).Preload("Tasks").
		Where("plan_id = ? AND id = ?", planID, allocID).First(&alloc).Error; err != nil {
		return nil, err
	}
	return &alloc, nil
}

func (r *PlanRepository) DeleteAllocation(ctx context.Context, planID, allocID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteAllocation(tx, planID, allocID)
	})
}

func deleteAllocation(tx *gorm.DB, planID, allocID uint) error {
	alloc := model.Allocation{ID: allocID}
	if err := tx.Model(&alloc).Association("Tasks").Clear(); err != nil {
		return fmt.Errorf("unassign allocation tasks: %w", err)
	}
	res := tx.Where("plan_id = ? AND id = ?", planID, allocID).Delete(&model.Allocation{})
	if res.Error != nil {
		return fmt.Errorf("delete allocation: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// SaveReflow persists the outcome of a drag: every surviving allocation's
// time and position, and the removal of allocations the shift policy
// dropped past midnight. One transaction, so a failed write never leaves a
// half-reflowed day.
func (r *PlanRepository) SaveReflow(ctx context.Context, planID uint, updated []model.Allocation, droppedIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, alloc := range updated {
			err := tx.Model(&model.Allocation{}).
				Where("plan_id = ? AND id = ?", planID, alloc.ID).
				Updates(map[string]interface{}{
					"start_time": alloc.StartTime,
					"end_time":   alloc.EndTime,
					"position":   i,
				}).Error
			if err != nil {
				return fmt.Errorf("update allocation %d: %w", alloc.ID, err)
			}
		}
		for _, id := range droppedIDs {
			if err := deleteAllocation(tx, planID, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PlanRepository) AssignTask(ctx context.Context, alloc *model.Allocation, task *model.Task) error {
	if err := r.db.WithContext(ctx).Model(alloc).Association("Tasks").Append(task); err != nil {
		return fmt.Errorf("assign task: %w", err)
	}
	return nil
}

func (r *PlanRepository) UnassignTask(ctx context.Context, alloc *model.Allocation, task *model.Task) error {
	if err := r.db.WithContext(ctx).Model(alloc).Association("Tasks").Delete(task); err != nil {
		return fmt.Errorf("unassign task: %w", err)
	}
	return nil
}
