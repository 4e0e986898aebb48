package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/schedule"
)

// WindowInput carries the editable fields of a template time window.
type WindowInput struct {
	Description string
	StartTime   int
	EndTime     int
	CategoryID  *uint
	Position    *int
}

func validateWindowTimes(start, end int) error {
	if start < 0 || start > schedule.MinuteOfDayMax {
		return fmt.Errorf("%w: start_time %d outside [0, %d]", ErrInvalidInput, start, schedule.MinuteOfDayMax)
	}
	if end < 0 || end > schedule.MinuteOfDayMax {
		return fmt.Errorf("%w: end_time %d outside [0, %d]", ErrInvalidInput, end, schedule.MinuteOfDayMax)
	}
	if start >= end {
		return fmt.Errorf("%w: start_time %d must be before end_time %d", ErrInvalidInput, start, end)
	}
	return nil
}

// TemplateService manages day templates and their windows.
type TemplateService struct {
	repo         *repository.TemplateRepository
	categoryRepo *repository.CategoryRepository
}

func NewTemplateService(repo *repository.TemplateRepository, categoryRepo *repository.CategoryRepository) *TemplateService {
	return &TemplateService{repo: repo, categoryRepo: categoryRepo}
}

func (s *TemplateService) List(ctx context.Context, user *model.User) ([]model.DayTemplate, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

func (s *TemplateService) Get(ctx context.Context, user *model.User, templateID uint) (*model.DayTemplate, error) {
	return s.repo.FindByID(ctx, user.ID, templateID)
}

func (s *TemplateService) Create(ctx context.Context, user *model.User, name string, windows []WindowInput) (*model.DayTemplate, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if err := s.ensureNameFree(ctx, user, name); err != nil {
		return nil, err
	}

	tpl := model.DayTemplate{UserID: user.ID, Name: name}
	for i, input := range windows {
		if err := validateWindowTimes(input.StartTime, input.EndTime); err != nil {
			return nil, err
		}
		if err := ensureCategoryExists(ctx, s.categoryRepo, user, input.CategoryID); err != nil {
			return nil, err
		}
		tpl.Windows = append(tpl.Windows, model.TimeWindow{
			Description: input.Description,
			StartTime:   input.StartTime,
			EndTime:     input.EndTime,
			CategoryID:  input.CategoryID,
			Position:    i,
		})
	}

	if err := s.repo.Create(ctx, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (s *TemplateService) Rename(ctx context.Context, user *model.User, templateID uint, name string) (*model.DayTemplate, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	tpl, err := s.repo.FindByID(ctx, user.ID, templateID)
	if err != nil {
		return nil, err
	}
	if tpl.Name == name {
		return tpl, nil
	}
	if err := s.ensureNameFree(ctx, user, name); err != nil {
		return nil, err
	}

	tpl.Name = name
	if err := s.repo.Update(ctx, tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}

func (s *TemplateService) SetDefault(ctx context.Context, user *model.User, templateID uint) error {
	return s.repo.SetDefault(ctx, user.ID, templateID)
}

func (s *TemplateService) Delete(ctx context.Context, user *model.User, templateID uint) error {
	return s.repo.Delete(ctx, user.ID, templateID)
}

func (s *TemplateService) AddWindow(ctx context.Context, user *model.User, templateID uint, input WindowInput) (*model.TimeWindow, error) {
	if err := validateWindowTimes(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if err := ensureCategoryExists(ctx, s.categoryRepo, user, input.CategoryID); err != nil {
		return nil, err
	}

	tpl, err := s.repo.FindByID(ctx, user.ID, templateID)
	if err != nil {
		return nil, err
	}

	position := len(tpl.Windows)
	if input.Position != nil {
		position = *input.Position
	}
	window := model.TimeWindow{
		TemplateID:  tpl.ID,
		Description: input.Description,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		CategoryID:  input.CategoryID,
		Position:    position,
	}
	if err := s.repo.AddWindow(ctx, &window); err != nil {
		return nil, err
	}
	return &window, nil
}

func (s *TemplateService) UpdateWindow(ctx context.Context, user *model.User, templateID, windowID uint, input WindowInput) (*model.TimeWindow, error) {
	if err := validateWindowTimes(input.StartTime, input.EndTime); err != nil {
		return nil, err
	}
	if err := ensureCategoryExists(ctx, s.categoryRepo, user, input.CategoryID); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, user.ID, templateID); err != nil {
		return nil, err
	}
	window, err := s.repo.FindWindow(ctx, templateID, windowID)
	if err != nil {
		return nil, err
	}

	window.Description = input.Description
	window.StartTime = input.StartTime
	window.EndTime = input.EndTime
	window.CategoryID = input.CategoryID
	if input.Position != nil {
		window.Position = *input.Position
	}
	if err := s.repo.UpdateWindow(ctx, window); err != nil {
		return nil, err
	}
	return window, nil
}

func (s *TemplateService) RemoveWindow(ctx context.Context, user *model.User, templateID, windowID uint) error {
	if _, err := s.repo.FindByID(ctx, user.ID, templateID); err != nil {
		return err
	}
	return s.repo.DeleteWindow(ctx, templateID, windowID)
}

func (s *TemplateService) ensureNameFree(ctx context.Context, user *model.User, name string) error {
	_, err := s.repo.FindByName(ctx, user.ID, name)
	switch {
	case err == nil:
		return fmt.Errorf("%w: template %q already exists", ErrConflict, name)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		return err
	}
}

// ensureCategoryExists rejects window inputs referencing a category the user
// does not own. A nil reference is always fine.
func ensureCategoryExists(ctx context.Context, repo *repository.CategoryRepository, user *model.User, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	_, err := repo.FindByID(ctx, user.ID, *categoryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: category %d does not exist", ErrInvalidInput, *categoryID)
	}
	return err
}
