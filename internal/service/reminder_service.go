package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// ReminderService builds human-readable summaries for outbound
// notifications and broadcasts them to every user with a linked chat.
type ReminderService struct {
	userRepo     *repository.UserRepository
	planRepo     *repository.PlanRepository
	taskRepo     *repository.TaskRepository
	categoryRepo *repository.CategoryRepository
	stats        *StatsService
	notifier     Notifier
	logger       *zap.Logger
}

func NewReminderService(
	userRepo *repository.UserRepository,
	planRepo *repository.PlanRepository,
	taskRepo *repository.TaskRepository,
	categoryRepo *repository.CategoryRepository,
	stats *StatsService,
	notifier Notifier,
	logger *zap.Logger,
) *ReminderService {
	return &ReminderService{
		userRepo:     userRepo,
		planRepo:     planRepo,
		taskRepo:     taskRepo,
		categoryRepo: categoryRepo,
		stats:        stats,
		notifier:     notifier,
		logger:       logger,
	}
}

// DailySummary renders the morning report for the user's local date: the
// day's schedule with assigned tasks, then the open task list with
// deadline markers. Telegram HTML formatting.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	date := localDate(&user, now)

	plan, err := s.planRepo.FindByDate(ctx, user.ID, date)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	completed := false
	tasks, err := s.taskRepo.List(ctx, user.ID, repository.TaskFilter{Completed: &completed})
	if err != nil {
		return "", err
	}

	catNames, err := s.categoryNames(ctx, user.ID)
	if err != nil {
		return "", err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		switch {
		case tasks[i].Deadline == nil && tasks[j].Deadline == nil:
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		case tasks[i].Deadline == nil:
			return false
		case tasks[j].Deadline == nil:
			return true
		default:
			return tasks[i].Deadline.Before(*tasks[j].Deadline)
		}
	})

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily plan</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", date))

	builder.WriteString("🕘 <b>Schedule</b>\n")
	if plan == nil || len(plan.Allocations) == 0 {
		builder.WriteString("- no windows planned\n")
	} else {
		for _, alloc := range chronological(plan.Allocations) {
			builder.WriteString(formatAllocation(alloc, catNames))
		}
	}

	builder.WriteString("\n🔥 <b>Open tasks</b>\n")
	if len(tasks) == 0 {
		builder.WriteString("- no open tasks\n")
	} else {
		for _, task := range tasks {
			builder.WriteString(formatTask(task, catNames, now))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

// ProgressReport renders the midday check-in: today's counters plus the
// current and upcoming schedule windows.
func (s *ReminderService) ProgressReport(ctx context.Context, user model.User, now time.Time) (string, error) {
	date := localDate(&user, now)

	stats, err := s.stats.Daily(ctx, &user, date)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("⏱ <b>Progress check</b>\n")
	builder.WriteString(fmt.Sprintf("🍅 Pomodoros today: %d\n", stats.PomodorosCompleted))
	builder.WriteString(fmt.Sprintf("✅ Tasks completed: %d\n", stats.TasksCompleted))

	plan, err := s.planRepo.FindByDate(ctx, user.ID, date)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return strings.TrimSpace(builder.String()), nil
	case err != nil:
		return "", err
	}

	minute := minuteOfDay(&user, now)
	current, next := windowAround(chronological(plan.Allocations), minute)
	if current != nil {
		builder.WriteString(fmt.Sprintf("▶️ Now: %s\n", windowLine(*current)))
	}
	if next != nil {
		builder.WriteString(fmt.Sprintf("⏭ Next: %s\n", windowLine(*next)))
	}

	return strings.TrimSpace(builder.String()), nil
}

// BroadcastDaily sends the daily summary to every user with a linked chat.
// Per-user failures are logged and never abort the loop.
func (s *ReminderService) BroadcastDaily(ctx context.Context, now time.Time) {
	s.broadcast(ctx, now, "daily summary", s.DailySummary)
}

// BroadcastProgress sends the interval progress report to every user with
// a linked chat.
func (s *ReminderService) BroadcastProgress(ctx context.Context, now time.Time) {
	s.broadcast(ctx, now, "progress report", s.ProgressReport)
}

func (s *ReminderService) broadcast(ctx context.Context, now time.Time, kind string, build func(context.Context, model.User, time.Time) (string, error)) {
	if s.notifier == nil {
		return
	}
	users, err := s.userRepo.ListNotifiable(ctx)
	if err != nil {
		s.logger.Error("list notifiable users", zap.String("kind", kind), zap.Error(err))
		return
	}
	for _, user := range users {
		text, err := build(ctx, user, now)
		if err != nil {
			s.logger.Error("build notification", zap.String("kind", kind), zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		if err := s.notifier.SendText(*user.TelegramChatID, text); err != nil {
			getMetrics().notificationsSent.WithLabelValues("telegram", "error").Inc()
			s.logger.Warn("send notification", zap.String("kind", kind), zap.Uint("user_id", user.ID), zap.Error(err))
			continue
		}
		getMetrics().notificationsSent.WithLabelValues("telegram", "ok").Inc()
	}
}

func (s *ReminderService) categoryNames(ctx context.Context, userID uint) (map[uint]string, error) {
	categories, err := s.categoryRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	names := make(map[uint]string, len(categories))
	for _, cat := range categories {
		names[cat.ID] = cat.Name
	}
	return names, nil
}

// chronological returns the allocations ordered by start time for display.
func chronological(allocs []model.Allocation) []model.Allocation {
	out := make([]model.Allocation, len(allocs))
	copy(out, allocs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime < out[j].StartTime
	})
	return out
}

// windowAround picks the window covering the minute and the first one
// starting after it.
func windowAround(allocs []model.Allocation, minute int) (current, next *model.Allocation) {
	for i := range allocs {
		a := &allocs[i]
		if a.StartTime <= minute && minute < a.EndTime {
			current = a
		}
		if a.StartTime > minute && next == nil {
			next = a
		}
	}
	return current, next
}

func minuteOfDay(user *model.User, at time.Time) int {
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := at.In(loc)
	return local.Hour()*60 + local.Minute()
}

func formatMinutes(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func windowLine(alloc model.Allocation) string {
	label := strings.TrimSpace(alloc.Description)
	if label == "" {
		label = "(untitled)"
	}
	return fmt.Sprintf("%s-%s %s", formatMinutes(alloc.StartTime), formatMinutes(alloc.EndTime), html.EscapeString(label))
}

func formatAllocation(alloc model.Allocation, catNames map[uint]string) string {
	var sb strings.Builder

	sb.WriteString(windowLine(alloc))

	if alloc.CategoryID != nil {
		if name, ok := catNames[*alloc.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
			}
		}
	}

	for _, task := range alloc.Tasks {
		mark := "•"
		if task.IsCompleted {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("\n   %s %s", mark, html.EscapeString(strings.TrimSpace(task.Title))))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatTask(task model.Task, catNames map[uint]string, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if task.Deadline != nil {
		d := task.Deadline.In(now.Location())
		switch {
		case now.After(d):
			icon = "⚠️"
		case d.Sub(now) <= 48*time.Hour:
			icon = "⏳"
		}
	}

	title := html.EscapeString(strings.TrimSpace(task.Title))
	sb.WriteString(fmt.Sprintf("%s %s", icon, title))

	if task.CategoryID != nil {
		if name, ok := catNames[*task.CategoryID]; ok {
			trimmed := strings.TrimSpace(name)
			if trimmed != "" {
				sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(trimmed)))
			}
		}
	}

	if task.PomodorosSpent > 0 {
		sb.WriteString(fmt.Sprintf(" 🍅%d", task.PomodorosSpent))
	}

	if task.Deadline != nil {
		d := task.Deadline.In(now.Location())
		if now.After(d) {
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · <b>overdue</b>", d.Format("2006-01-02")))
		} else {
			daysLeft := int(d.Sub(now).Hours()/24) + 1
			sb.WriteString(fmt.Sprintf("\n   ⏰ due %s · %d days left", d.Format("2006-01-02"), daysLeft))
		}
	}

	if task.Description != "" {
		sb.WriteString(fmt.Sprintf("\n   📝 %s", html.EscapeString(strings.TrimSpace(task.Description))))
	}

	sb.WriteByte('\n')
	return sb.String()
}
