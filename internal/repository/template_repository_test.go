package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dayplan/internal/model"
)

func TestTemplateRepositoryCRUD(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	user := newTestUser(t, db, "alice")

	tpl := &model.DayTemplate{UserID: user.ID, Name: "Workday", Windows: []model.TimeWindow{
		{Description: "Lunch", StartTime: 720, EndTime: 780, Position: 1},
		{Description: "Morning focus", StartTime: 540, EndTime: 600, Position: 0},
	}}
	require.NoError(t, repo.Create(ctx, tpl))
	require.NotZero(t, tpl.ID)

	found, err := repo.FindByID(ctx, user.ID, tpl.ID)
	require.NoError(t, err)
	require.Len(t, found.Windows, 2)
	assert.Equal(t, "Morning focus", found.Windows[0].Description, "windows come back in position order")
	assert.Equal(t, "Lunch", found.Windows[1].Description)

	found.Name = "Deep workday"
	require.NoError(t, repo.Update(ctx, found))
	found, err = repo.FindByID(ctx, user.ID, tpl.ID)
	require.NoError(t, err)
	assert.Equal(t, "Deep workday", found.Name)
	assert.Len(t, found.Windows, 2, "renaming does not touch windows")

	windowIDs := []uint{found.Windows[0].ID, found.Windows[1].ID}
	require.NoError(t, repo.Delete(ctx, user.ID, tpl.ID))
	_, err = repo.FindByID(ctx, user.ID, tpl.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	for _, id := range windowIDs {
		var count int64
		db.Model(&model.TimeWindow{}).Where("id = ?", id).Count(&count)
		assert.Zero(t, count, "deleting a template removes its windows")
	}
}

func TestTemplateRepositorySetDefault(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	user := newTestUser(t, db, "alice")

	first := &model.DayTemplate{UserID: user.ID, Name: "Workday", IsDefault: true}
	second := &model.DayTemplate{UserID: user.ID, Name: "Weekend"}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.SetDefault(ctx, user.ID, second.ID))

	def, err := repo.FindDefault(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)

	reloaded, err := repo.FindByID(ctx, user.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault, "only one template is default at a time")

	assert.ErrorIs(t, repo.SetDefault(ctx, user.ID, 9999), gorm.ErrRecordNotFound)
}

func TestTemplateRepositoryWindows(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewTemplateRepository(db)
	user := newTestUser(t, db, "alice")

	tpl := &model.DayTemplate{UserID: user.ID, Name: "Workday"}
	require.NoError(t, repo.Create(ctx, tpl))

	window := &model.TimeWindow{TemplateID: tpl.ID, Description: "Reading", StartTime: 600, EndTime: 660}
	require.NoError(t, repo.AddWindow(ctx, window))
	require.NotZero(t, window.ID)

	window.EndTime = 690
	require.NoError(t, repo.UpdateWindow(ctx, window))

	found, err := repo.FindWindow(ctx, tpl.ID, window.ID)
	require.NoError(t, err)
	assert.Equal(t, 690, found.EndTime)

	assert.ErrorIs(t, repo.DeleteWindow(ctx, tpl.ID, 9999), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DeleteWindow(ctx, tpl.ID, window.ID))
	_, err = repo.FindWindow(ctx, tpl.ID, window.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
