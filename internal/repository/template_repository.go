package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"dayplan/internal/model"
)

// TemplateRepository manages day templates and their time windows.
type TemplateRepository struct {
	db *gorm.DB
}

func NewTemplateRepository(db *gorm.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

func withWindows(db *gorm.DB) *gorm.DB {
	return db.Preload("Windows", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC, start_time ASC")
	})
}

func (r *TemplateRepository) Create(ctx context.Context, tpl *model.DayTemplate) error {
	if err := r.db.WithContext(ctx).Create(tpl).Error; err != nil {
		return fmt.Errorf("create template: %w", err)
	}
	return nil
}

func (r *TemplateRepository) ListByUser(ctx context.Context, userID uint) ([]model.DayTemplate, error) {
	var templates []model.DayTemplate
	if err := withWindows(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).Order("name ASC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *TemplateRepository) FindByID(ctx context.Context, userID, templateID uint) (*model.DayTemplate, error) {
	var tpl model.DayTemplate
	if err := withWindows(r.db.WithContext(ctx)).
		Where("user_id = ? AND id = ?", userID, templateID).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) FindByName(ctx context.Context, userID uint, name string) (*model.DayTemplate, error) {
	var tpl model.DayTemplate
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) FindDefault(ctx context.Context, userID uint) (*model.DayTemplate, error) {
	var tpl model.DayTemplate
	if err := withWindows(r.db.WithContext(ctx)).
		Where("user_id = ? AND is_default = ?", userID, true).First(&tpl).Error; err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *TemplateRepository) Update(ctx context.Context, tpl *model.DayTemplate) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(tpl).Error; err != nil {
		return fmt.Errorf("update template: %w", err)
	}
	return nil
}

// SetDefault marks one template as the day default and clears the flag on
// the user's other templates.
func (r *TemplateRepository) SetDefault(ctx context.Context, userID, templateID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.DayTemplate{}).
			Where("user_id = ? AND id = ?", userID, templateID).
			Update("is_default", true)
		if res.Error != nil {
			return fmt.Errorf("set default template: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Model(&model.DayTemplate{}).
			Where("user_id = ? AND id <> ?", userID, templateID).
			Update("is_default", false).Error; err != nil {
			return fmt.Errorf("clear default template: %w", err)
		}
		return nil
	})
}

func (r *TemplateRepository) Delete(ctx context.Context, userID, templateID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND id = ?", userID, templateID).Delete(&model.DayTemplate{})
		if res.Error != nil {
			return fmt.Errorf("delete template: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		if err := tx.Where("template_id = ?", templateID).Delete(&model.TimeWindow{}).Error; err != nil {
			return fmt.Errorf("delete template windows: %w", err)
		}
		return nil
	})
}

func (r *TemplateRepository) AddWindow(ctx context.Context, window *model.TimeWindow) error {
	if err := r.db.WithContext(ctx).Create(window).Error; err != nil {
		return fmt.Errorf("create time window: %w", err)
	}
	return nil
}

func (r *TemplateRepository) FindWindow(ctx context.Context, templateID, windowID uint) (*model.TimeWindow, error) {
	var window model.TimeWindow
	if err := r.db.WithContext(ctx).
		Where("template_id = ? AND id = ?", templateID, windowID).First(&window).Error; err != nil {
		return nil, err
	}
	return &window, nil
}

func (r *TemplateRepository) UpdateWindow(ctx context.Context, window *model.TimeWindow) error {
	if err := r.db.WithContext(ctx).Save(window).Error; err != nil {
		return fmt.Errorf("update time window: %w", err)
	}
	return nil
}

func (r *TemplateRepository) DeleteWindow(ctx context.Context, templateID, windowID uint) error {
	res := r.db.WithContext(ctx).
		Where("template_id = ? AND id = ?", templateID, windowID).Delete(&model.TimeWindow{})
	if res.Error != nil {
		return fmt.Errorf("delete time window: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
