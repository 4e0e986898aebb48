package service

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "dayplan_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func newTestUser(t *testing.T, db *gorm.DB, name string) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: fmt.Sprintf("%s@example.com", name), Timezone: "UTC"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func newStatsService(db *gorm.DB) *StatsService {
	return NewStatsService(repository.NewStatsRepository(db), repository.NewPlanRepository(db), zap.NewNop())
}

func newPlanService(db *gorm.DB) *PlanService {
	return NewPlanService(
		repository.NewPlanRepository(db),
		repository.NewTemplateRepository(db),
		repository.NewTaskRepository(db),
		repository.NewCategoryRepository(db),
		zap.NewNop(),
	)
}

func newTaskService(db *gorm.DB) *TaskService {
	return NewTaskService(repository.NewTaskRepository(db), repository.NewCategoryRepository(db), newStatsService(db))
}

func newTemplateService(db *gorm.DB) *TemplateService {
	return NewTemplateService(repository.NewTemplateRepository(db), repository.NewCategoryRepository(db))
}
