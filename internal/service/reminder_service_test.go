package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

func newReminderService(db *gorm.DB, notifier Notifier) *ReminderService {
	return NewReminderService(
		repository.NewUserRepository(db),
		repository.NewPlanRepository(db),
		repository.NewTaskRepository(db),
		repository.NewCategoryRepository(db),
		newStatsService(db),
		notifier,
		zap.NewNop(),
	)
}

func TestDailySummary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

	t.Run("renders schedule and open tasks", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		plans := newPlanService(db)
		tasks := newTaskService(db)

		_, err := plans.GetOrCreate(ctx, user, planDate, "")
		require.NoError(t, err)
		alloc, err := plans.AddAllocation(ctx, user, planDate, AllocationInput{
			Description: "Morning focus", StartTime: 540, EndTime: 600,
		})
		require.NoError(t, err)

		assigned, err := tasks.Create(ctx, user, TaskInput{Title: "Write <report>", Category: "Work"})
		require.NoError(t, err)
		require.NoError(t, plans.AssignTask(ctx, user, planDate, alloc.ID, assigned.ID))

		overdue := now.Add(-24 * time.Hour)
		_, err = tasks.Create(ctx, user, TaskInput{Title: "Pay invoice", Deadline: &overdue})
		require.NoError(t, err)

		text, err := newReminderService(db, nil).DailySummary(ctx, *user, now)
		require.NoError(t, err)

		assert.Contains(t, text, "<b>Daily plan</b>")
		assert.Contains(t, text, "2026-03-02")
		assert.Contains(t, text, "09:00-10:00 Morning focus")
		assert.Contains(t, text, "Write &lt;report&gt;")
		assert.Contains(t, text, "Pay invoice")
		assert.Contains(t, text, "<b>overdue</b>")
		assert.NotContains(t, text, "no windows planned")
	})

	t.Run("empty day", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")

		text, err := newReminderService(db, nil).DailySummary(ctx, *user, now)
		require.NoError(t, err)

		assert.Contains(t, text, "- no windows planned")
		assert.Contains(t, text, "- no open tasks")
	})

	t.Run("completed tasks stay out of the open list", func(t *testing.T) {
		db := newTestDB(t)
		user := newTestUser(t, db, "alice")
		tasks := newTaskService(db)

		done, err := tasks.Create(ctx, user, TaskInput{Title: "Already done"})
		require.NoError(t, err)
		_, err = tasks.Complete(ctx, user, done.ID, now)
		require.NoError(t, err)

		text, err := newReminderService(db, nil).DailySummary(ctx, *user, now)
		require.NoError(t, err)
		assert.NotContains(t, text, "Already done")
	})
}

func TestProgressReport(t *testing.T) {
	ctx := context.Background()
	// 12:30 on the plan date, between the two windows below.
	now := time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC)

	db := newTestDB(t)
	user := newTestUser(t, db, "alice")
	plans := newPlanService(db)
	stats := newStatsService(db)

	seedAllocations(t, plans, user, [][2]int{{720, 780}, {840, 900}})
	require.NoError(t, stats.RecordPomodoro(ctx, user, 1500, now))

	text, err := newReminderService(db, nil).ProgressReport(ctx, *user, now)
	require.NoError(t, err)

	assert.Contains(t, text, "Pomodoros today: 1")
	assert.Contains(t, text, "Tasks completed: 0")
	assert.Contains(t, text, "Now: 12:00-13:00")
	assert.Contains(t, text, "Next: 14:00-15:00")
}

func TestBroadcastDaily(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	notifier := &fakeNotifier{}

	chatID := int64(42)
	linked := &model.User{Name: "alice", Email: "alice@example.com", Timezone: "UTC", TelegramChatID: &chatID}
	require.NoError(t, db.Create(linked).Error)
	newTestUser(t, db, "bob") // no chat bound

	newReminderService(db, notifier).BroadcastDaily(ctx, time.Now())

	msgs := notifier.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, chatID, msgs[0].chatID)
	assert.Contains(t, msgs[0].text, "Daily plan")

	// A nil notifier disables the broadcast entirely.
	newReminderService(db, nil).BroadcastDaily(ctx, time.Now())
}
