package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"dayplan/internal/model"
)

// StatsRepository accumulates per-user daily counters.
type StatsRepository struct {
	db *gorm.DB
}

func NewStatsRepository(db *gorm.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

func (r *StatsRepository) Find(ctx context.Context, userID uint, date string) (*model.DailyStats, error) {
	var stats model.DailyStats
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date = ?", userID, date).First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetOrCreate returns the day's stats row, creating a zeroed one when the
// day has not been touched yet.
func (r *StatsRepository) GetOrCreate(ctx context.Context, userID uint, date string) (*model.DailyStats, error) {
	var stats model.DailyStats
	db := r.db.WithContext(ctx)
	err := db.Where("user_id = ? AND date = ?", userID, date).First(&stats).Error
	switch {
	case err == nil:
		return &stats, nil
	case err == gorm.ErrRecordNotFound:
		stats = model.DailyStats{UserID: userID, Date: date}
		if err := db.Create(&stats).Error; err != nil {
			return nil, fmt.Errorf("create stats: %w", err)
		}
		return &stats, nil
	default:
		return nil, fmt.Errorf("find stats: %w", err)
	}
}

// AddTaskCompleted adjusts the completed-task counter; negative deltas
// never take it below zero.
func (r *StatsRepository) AddTaskCompleted(ctx context.Context, userID uint, date string, delta int) error {
	stats, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Model(stats).
		UpdateColumn("tasks_completed", gorm.Expr("MAX(tasks_completed + ?, 0)", delta)).Error
	if err != nil {
		return fmt.Errorf("update completed counter: %w", err)
	}
	return nil
}

// AddPomodoro credits one completed pomodoro and its work seconds.
func (r *StatsRepository) AddPomodoro(ctx context.Context, userID uint, date string, workSeconds int) error {
	stats, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Model(stats).
		UpdateColumns(map[string]interface{}{
			"pomodoros_completed": gorm.Expr("pomodoros_completed + 1"),
			"work_seconds":        gorm.Expr("work_seconds + ?", workSeconds),
		}).Error
	if err != nil {
		return fmt.Errorf("update pomodoro counters: %w", err)
	}
	return nil
}

// SetPlanned records how many tasks the day's plan scheduled.
func (r *StatsRepository) SetPlanned(ctx context.Context, userID uint, date string, planned int) error {
	stats, err := r.GetOrCreate(ctx, userID, date)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Model(stats).UpdateColumn("tasks_planned", planned).Error; err != nil {
		return fmt.Errorf("update planned counter: %w", err)
	}
	return nil
}

func (r *StatsRepository) Range(ctx context.Context, userID uint, from, to string) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").Find(&stats).Error; err != nil {
		return nil, err
	}
	return stats, nil
}
