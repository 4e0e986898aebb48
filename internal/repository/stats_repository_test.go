package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryCounters(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := newTestUser(t, db, "alice")
	const date = "2025-06-01"

	require.NoError(t, repo.AddTaskCompleted(ctx, user.ID, date, 1))
	require.NoError(t, repo.AddTaskCompleted(ctx, user.ID, date, 1))
	require.NoError(t, repo.AddPomodoro(ctx, user.ID, date, 1500))
	require.NoError(t, repo.AddPomodoro(ctx, user.ID, date, 1500))
	require.NoError(t, repo.SetPlanned(ctx, user.ID, date, 5))

	stats, err := repo.Find(ctx, user.ID, date)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TasksCompleted)
	assert.Equal(t, 2, stats.PomodorosCompleted)
	assert.Equal(t, 3000, stats.WorkSeconds)
	assert.Equal(t, 5, stats.TasksPlanned)
}

func TestStatsRepositoryCompletedNeverNegative(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := newTestUser(t, db, "alice")
	const date = "2025-06-01"

	require.NoError(t, repo.AddTaskCompleted(ctx, user.ID, date, -1))

	stats, err := repo.Find(ctx, user.ID, date)
	require.NoError(t, err)
	assert.Zero(t, stats.TasksCompleted, "reopening more tasks than completed clamps at zero")
}

func TestStatsRepositoryRange(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewStatsRepository(db)
	user := newTestUser(t, db, "alice")

	for _, date := range []string{"2025-06-03", "2025-06-01", "2025-06-02", "2025-05-20"} {
		require.NoError(t, repo.AddPomodoro(ctx, user.ID, date, 1500))
	}

	got, err := repo.Range(ctx, user.ID, "2025-06-01", "2025-06-30")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "2025-06-01", got[0].Date)
	assert.Equal(t, "2025-06-03", got[2].Date)
}
