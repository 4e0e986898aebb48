package service

import (
	"context"
	"fmt"
	"time"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title       string
	Description string
	Category    string
	Deadline    *time.Time
}

// TaskUpdate carries the fields a PATCH may change. Nil fields are left
// untouched.
type TaskUpdate struct {
	Title         *string
	Description   *string
	Category      *string
	Deadline      *time.Time
	ClearDeadline bool
}

// TaskService wraps task-related business logic.
type TaskService struct {
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	stats        *StatsService
}

func NewTaskService(taskRepo *repository.TaskRepository, categoryRepo *repository.CategoryRepository, stats *StatsService) *TaskService {
	return &TaskService{taskRepo: taskRepo, categoryRepo: categoryRepo, stats: stats}
}

func (s *TaskService) Create(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	var categoryID *uint
	if input.Category != "" {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, input.Category)
		if err != nil {
			return nil, err
		}
		if category != nil {
			categoryID = &category.ID
		}
	}

	task := model.Task{
		UserID:      user.ID,
		CategoryID:  categoryID,
		Title:       input.Title,
		Description: input.Description,
		Deadline:    input.Deadline,
	}
	if err := s.taskRepo.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) List(ctx context.Context, user *model.User, filter repository.TaskFilter) ([]model.Task, error) {
	return s.taskRepo.List(ctx, user.ID, filter)
}

func (s *TaskService) Get(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	return s.taskRepo.FindByID(ctx, user.ID, taskID)
}

func (s *TaskService) Update(ctx context.Context, user *model.User, taskID uint, update TaskUpdate) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if *update.Title == "" {
			return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
		}
		task.Title = *update.Title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Category != nil {
		category, err := s.categoryRepo.GetOrCreate(ctx, user.ID, *update.Category)
		if err != nil {
			return nil, err
		}
		if category == nil {
			task.CategoryID = nil
		} else {
			task.CategoryID = &category.ID
		}
	}
	if update.ClearDeadline {
		task.Deadline = nil
	} else if update.Deadline != nil {
		task.Deadline = update.Deadline
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Complete marks a task as done and credits the day's statistics. Completing
// an already completed task is a no-op.
func (s *TaskService) Complete(ctx context.Context, user *model.User, taskID uint, completedAt time.Time) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsCompleted {
		return task, nil
	}

	if err := s.taskRepo.MarkCompleted(ctx, task, completedAt); err != nil {
		return nil, err
	}
	if err := s.stats.RecordTaskCompleted(ctx, user, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

// Reopen puts a completed task back on the list and takes the completion
// back out of the day's statistics.
func (s *TaskService) Reopen(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, user.ID, taskID)
	if err != nil {
		return nil, err
	}
	if !task.IsCompleted {
		return task, nil
	}
	completedAt := time.Now()
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}

	if err := s.taskRepo.Reopen(ctx, task); err != nil {
		return nil, err
	}
	if err := s.stats.RecordTaskReopened(ctx, user, completedAt); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, user *model.User, taskID uint) error {
	return s.taskRepo.Delete(ctx, user.ID, taskID)
}
