package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// CategoryInput carries the editable category fields.
type CategoryInput struct {
	Name  string
	Color string
}

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

func (s *CategoryService) Create(ctx context.Context, user *model.User, input CategoryInput) (*model.Category, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	_, err := s.repo.FindByName(ctx, user.ID, input.Name)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, input.Name)
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, err
	}

	category := model.Category{UserID: user.ID, Name: input.Name, Color: input.Color}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(ctx context.Context, user *model.User, categoryID uint, input CategoryInput) (*model.Category, error) {
	category, err := s.repo.FindByID(ctx, user.ID, categoryID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" && input.Name != category.Name {
		_, err := s.repo.FindByName(ctx, user.ID, input.Name)
		switch {
		case err == nil:
			return nil, fmt.Errorf("%w: category %q already exists", ErrConflict, input.Name)
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return nil, err
		}
		category.Name = input.Name
	}
	if input.Color != "" {
		category.Color = input.Color
	}

	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryService) Delete(ctx context.Context, user *model.User, categoryID uint) error {
	return s.repo.Delete(ctx, user.ID, categoryID)
}
