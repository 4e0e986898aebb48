package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
	"dayplan/internal/schedule"
)

const planDate = "2026-03-02"

func seedTemplate(t *testing.T, db *gorm.DB, userID uint, name string, isDefault bool) *model.DayTemplate {
	t.Helper()
	tpl := &model.DayTemplate{
		UserID:    userID,
		Name:      name,
		IsDefault: isDefault,
		Windows: []model.TimeWindow{
			{Description: "Morning focus", StartTime: 540, EndTime: 600, Position: 0},
			{Description: "Review", StartTime: 720, EndTime: 780, Position: 1},
		},
	}
	require.NoError(t, repository.NewTemplateRepository(db).Create(context.Background(), tpl))
	return tpl
}

// seedAllocations creates a plan for planDate whose windows have the given
// [start, end) pairs and returns the allocation IDs in input order.
func seedAllocations(t *testing.T, svc *PlanService, user *model.User, windows [][2]int) []uint {
	t.Helper()
	ctx := context.Background()

	_, err := svc.GetOrCreate(ctx, user, planDate, "")
	require.NoError(t, err)

	ids := make([]uint, 0, len(windows))
	for _, w := range windows {
		alloc, err := svc.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "window",
			StartTime:   w[0],
			EndTime:     w[1],
			Force:       true,
		})
		require.NoError(t, err)
		ids = append(ids, alloc.ID)
	}
	return ids
}

func TestPlanGetOrCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("instantiates the default template", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		tpl := seedTemplate(t, db, user.ID, "Workday", true)
		svc := newPlanService(db)

		plan, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)
		require.NotNil(t, plan.TemplateID)
		assert.Equal(t, tpl.ID, *plan.TemplateID)
		require.Len(t, plan.Allocations, 2)
		assert.Equal(t, 540, plan.Allocations[0].StartTime)
		assert.Equal(t, 600, plan.Allocations[0].EndTime)
		assert.Equal(t, "Morning focus", plan.Allocations[0].Description)

		again, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)
		assert.Equal(t, plan.ID, again.ID)
		assert.Len(t, again.Allocations, 2)
	})

	t.Run("named template wins over the default", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		seedTemplate(t, db, user.ID, "Workday", true)
		weekend := seedTemplate(t, db, user.ID, "Weekend", false)
		svc := newPlanService(db)

		plan, err := svc.GetOrCreate(ctx, user, planDate, "Weekend")
		require.NoError(t, err)
		require.NotNil(t, plan.TemplateID)
		assert.Equal(t, weekend.ID, *plan.TemplateID)
	})

	t.Run("no default template yields an empty plan", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)

		plan, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)
		assert.Nil(t, plan.TemplateID)
		assert.Empty(t, plan.Allocations)
	})

	t.Run("unknown named template", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)

		_, err := svc.GetOrCreate(ctx, user, planDate, "Nope")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})

	t.Run("invalid date", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)

		_, err := svc.GetOrCreate(ctx, user, "03/02/2026", "")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestPlanAddAllocation(t *testing.T) {
	ctx := context.Background()

	t.Run("places a window", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		_, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)

		alloc, err := svc.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "Deep work", StartTime: 540, EndTime: 660,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, alloc.Position)

		plan, err := svc.Get(ctx, user, planDate)
		require.NoError(t, err)
		assert.Len(t, plan.Allocations, 1)
	})

	t.Run("rejects overlap without force", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		seedAllocations(t, svc, user, [][2]int{{540, 660}})

		_, err := svc.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "Clash", StartTime: 600, EndTime: 720,
		})
		assert.ErrorIs(t, err, ErrConflict)

		// Touching windows are not overlapping.
		_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "Adjacent", StartTime: 660, EndTime: 720,
		})
		assert.NoError(t, err)
	})

	t.Run("force places the overlap and the conflict report sees it", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		seedAllocations(t, svc, user, [][2]int{{540, 660}})

		_, err := svc.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "Clash", StartTime: 600, EndTime: 720, Force: true,
		})
		require.NoError(t, err)

		conflicts, err := svc.Conflicts(ctx, user, planDate)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, model.ConflictOverlap, conflicts[0].Type)
	})

	t.Run("validates window times", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		_, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)

		_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{StartTime: 600, EndTime: 600})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{StartTime: -1, EndTime: 60})
		assert.ErrorIs(t, err, ErrInvalidInput)
		_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{StartTime: 600, EndTime: 1500})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("rejects an unknown category", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		_, err := svc.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)

		missing := uint(99)
		_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{
			StartTime: 540, EndTime: 600, CategoryID: &missing,
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("requires an existing plan", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)

		_, err := svc.AddAllocation(ctx, user, planDate, AllocationInput{StartTime: 540, EndTime: 600})
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPlanMoveWindowGap(t *testing.T) {
	ctx := context.Background()

	t.Run("fits the dragged window into the gap", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		ids := seedAllocations(t, svc, user, [][2]int{{540, 600}, {720, 780}, {840, 900}})

		plan, err := svc.MoveWindow(ctx, user, planDate, ids[2], 1, MoveGap)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 3)

		moved := plan.Allocations[1]
		assert.Equal(t, ids[2], moved.ID)
		assert.Equal(t, 600, moved.StartTime)
		assert.Equal(t, 660, moved.EndTime)
		assert.Equal(t, 1, moved.Position)

		// Neighbours keep their times, positions follow the new order.
		assert.Equal(t, ids[0], plan.Allocations[0].ID)
		assert.Equal(t, 540, plan.Allocations[0].StartTime)
		assert.Equal(t, ids[1], plan.Allocations[2].ID)
		assert.Equal(t, 720, plan.Allocations[2].StartTime)
	})

	t.Run("no space leaves the plan untouched", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		ids := seedAllocations(t, svc, user, [][2]int{{540, 600}, {600, 720}, {720, 780}})

		_, err := svc.MoveWindow(ctx, user, planDate, ids[2], 1, MoveGap)
		assert.ErrorIs(t, err, schedule.ErrNoSpace)

		plan, err := svc.Get(ctx, user, planDate)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 3)
		assert.Equal(t, 720, plan.Allocations[2].StartTime)
		assert.Equal(t, 780, plan.Allocations[2].EndTime)
	})
}

func TestPlanMoveWindowShift(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades later windows", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		ids := seedAllocations(t, svc, user, [][2]int{{540, 600}, {600, 660}})

		plan, err := svc.MoveWindow(ctx, user, planDate, ids[1], 0, MoveShift)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 2)

		assert.Equal(t, ids[1], plan.Allocations[0].ID)
		assert.Equal(t, 600, plan.Allocations[0].StartTime)
		assert.Equal(t, 660, plan.Allocations[0].EndTime)

		assert.Equal(t, ids[0], plan.Allocations[1].ID)
		assert.Equal(t, 660, plan.Allocations[1].StartTime)
		assert.Equal(t, 720, plan.Allocations[1].EndTime)
	})

	t.Run("drops windows pushed past midnight", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		svc := newPlanService(db)
		ids := seedAllocations(t, svc, user, [][2]int{{0, 60}, {1400, 1439}})

		plan, err := svc.MoveWindow(ctx, user, planDate, ids[1], 0, MoveShift)
		require.NoError(t, err)
		require.Len(t, plan.Allocations, 1)
		assert.Equal(t, ids[1], plan.Allocations[0].ID)

		// The dropped allocation is gone from storage too.
		_, err = repository.NewPlanRepository(db).FindAllocation(ctx, plan.ID, ids[0])
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	})
}

func TestPlanMoveWindowErrors(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	svc := newPlanService(db)
	ids := seedAllocations(t, svc, user, [][2]int{{540, 600}})

	_, err := svc.MoveWindow(ctx, user, planDate, ids[0], 0, MovePolicy("swap"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.MoveWindow(ctx, user, planDate, 9999, 0, MoveGap)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPlanConflicts(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	svc := newPlanService(db)

	category, err := repository.NewCategoryRepository(db).GetOrCreate(ctx, user.ID, "Work")
	require.NoError(t, err)

	_, err = svc.GetOrCreate(ctx, user, planDate, "")
	require.NoError(t, err)
	_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{
		Description: "A", StartTime: 540, EndTime: 660, CategoryID: &category.ID, Force: true,
	})
	require.NoError(t, err)
	_, err = svc.AddAllocation(ctx, user, planDate, AllocationInput{
		Description: "B", StartTime: 600, EndTime: 720, CategoryID: &category.ID, Force: true,
	})
	require.NoError(t, err)

	conflicts, err := svc.Conflicts(ctx, user, planDate)
	require.NoError(t, err)
	require.Len(t, conflicts, 2)

	types := []model.ConflictType{conflicts[0].Type, conflicts[1].Type}
	assert.Contains(t, types, model.ConflictOverlap)
	assert.Contains(t, types, model.ConflictCategory)
}

func TestPlanTaskAssignment(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	svc := newPlanService(db)
	ids := seedAllocations(t, svc, user, [][2]int{{540, 600}})

	task := &model.Task{UserID: user.ID, Title: "Write report"}
	require.NoError(t, repository.NewTaskRepository(db).Create(ctx, task))

	require.NoError(t, svc.AssignTask(ctx, user, planDate, ids[0], task.ID))
	// Assigning twice keeps a single link.
	require.NoError(t, svc.AssignTask(ctx, user, planDate, ids[0], task.ID))

	plan, err := svc.Get(ctx, user, planDate)
	require.NoError(t, err)
	require.Len(t, plan.Allocations[0].Tasks, 1)
	assert.Equal(t, "Write report", plan.Allocations[0].Tasks[0].Title)

	require.NoError(t, svc.UnassignTask(ctx, user, planDate, ids[0], task.ID))
	plan, err = svc.Get(ctx, user, planDate)
	require.NoError(t, err)
	assert.Empty(t, plan.Allocations[0].Tasks)

	// Unassigning never deletes the task itself.
	_, err = repository.NewTaskRepository(db).FindByID(ctx, user.ID, task.ID)
	assert.NoError(t, err)
}

func TestPlanRemoveAllocation(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	svc := newPlanService(db)
	ids := seedAllocations(t, svc, user, [][2]int{{540, 600}, {720, 780}})

	task := &model.Task{UserID: user.ID, Title: "Survivor"}
	require.NoError(t, repository.NewTaskRepository(db).Create(ctx, task))
	require.NoError(t, svc.AssignTask(ctx, user, planDate, ids[0], task.ID))

	require.NoError(t, svc.RemoveAllocation(ctx, user, planDate, ids[0]))

	plan, err := svc.Get(ctx, user, planDate)
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, ids[1], plan.Allocations[0].ID)

	_, err = repository.NewTaskRepository(db).FindByID(ctx, user.ID, task.ID)
	assert.NoError(t, err)
}
