package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dayplan/internal/model"
)

func TestCategoryRepositoryGetOrCreate(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	user := newTestUser(t, db, "alice")

	none, err := repo.GetOrCreate(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Nil(t, none, "empty name means no category")

	created, err := repo.GetOrCreate(ctx, user.ID, "Health")
	require.NoError(t, err)
	require.NotNil(t, created)

	again, err := repo.GetOrCreate(ctx, user.ID, "Health")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID, "existing category is reused")

	other := newTestUser(t, db, "bob")
	foreign, err := repo.GetOrCreate(ctx, other.ID, "Health")
	require.NoError(t, err)
	assert.NotEqual(t, created.ID, foreign.ID, "categories are per user")
}

func TestCategoryRepositoryDeleteDetachesReferences(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	user := newTestUser(t, db, "alice")

	category, err := repo.GetOrCreate(ctx, user.ID, "Work")
	require.NoError(t, err)

	task := &model.Task{UserID: user.ID, Title: "Email", CategoryID: &category.ID}
	require.NoError(t, db.Create(task).Error)

	tpl := &model.DayTemplate{UserID: user.ID, Name: "Workday", Windows: []model.TimeWindow{
		{Description: "Morning focus", StartTime: 540, EndTime: 600, CategoryID: &category.ID},
	}}
	require.NoError(t, db.Create(tpl).Error)

	plan := &model.DailyPlan{UserID: user.ID, Date: "2025-06-01", Allocations: []model.Allocation{
		{Description: "Morning focus", StartTime: 540, EndTime: 600, CategoryID: &category.ID},
	}}
	require.NoError(t, db.Create(plan).Error)

	require.NoError(t, repo.Delete(ctx, user.ID, category.ID))

	_, err = repo.FindByID(ctx, user.ID, category.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var reloadedTask model.Task
	require.NoError(t, db.First(&reloadedTask, task.ID).Error)
	assert.Nil(t, reloadedTask.CategoryID)

	var reloadedWindow model.TimeWindow
	require.NoError(t, db.First(&reloadedWindow, tpl.Windows[0].ID).Error)
	assert.Nil(t, reloadedWindow.CategoryID)

	var reloadedAlloc model.Allocation
	require.NoError(t, db.First(&reloadedAlloc, plan.Allocations[0].ID).Error)
	assert.Nil(t, reloadedAlloc.CategoryID)
}

func TestCategoryRepositoryDeleteScoped(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewCategoryRepository(db)
	user := newTestUser(t, db, "alice")
	stranger := newTestUser(t, db, "bob")

	category, err := repo.GetOrCreate(ctx, user.ID, "Work")
	require.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, stranger.ID, category.ID), gorm.ErrRecordNotFound)

	still, err := repo.FindByID(ctx, user.ID, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Work", still.Name)
}
