package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/repository"
)

// ParseDate validates a plan or stats date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidInput, s)
	}
	return t, nil
}

// localDate returns the YYYY-MM-DD day the moment falls on in the user's
// timezone. Unknown timezones count as UTC.
func localDate(user *model.User, at time.Time) string {
	loc, err := time.LoadLocation(user.Timezone)
	if err != nil {
		loc = time.UTC
	}
	return at.In(loc).Format("2006-01-02")
}

// StatsService accumulates and reads per-user daily counters.
type StatsService struct {
	repo     *repository.StatsRepository
	planRepo *repository.PlanRepository
	logger   *zap.Logger
}

func NewStatsService(repo *repository.StatsRepository, planRepo *repository.PlanRepository, logger *zap.Logger) *StatsService {
	return &StatsService{repo: repo, planRepo: planRepo, logger: logger}
}

func (s *StatsService) RecordTaskCompleted(ctx context.Context, user *model.User, at time.Time) error {
	return s.repo.AddTaskCompleted(ctx, user.ID, localDate(user, at), 1)
}

func (s *StatsService) RecordTaskReopened(ctx context.Context, user *model.User, at time.Time) error {
	return s.repo.AddTaskCompleted(ctx, user.ID, localDate(user, at), -1)
}

// RecordPomodoro credits a finished work session and its seconds to the day
// it completed on.
func (s *StatsService) RecordPomodoro(ctx context.Context, user *model.User, workSeconds int, at time.Time) error {
	if err := s.repo.AddPomodoro(ctx, user.ID, localDate(user, at), workSeconds); err != nil {
		return err
	}
	getMetrics().pomodorosCompleted.Inc()
	return nil
}

// Daily returns the counters for one day. A day nothing happened on reads
// as all zeroes.
func (s *StatsService) Daily(ctx context.Context, user *model.User, date string) (*model.DailyStats, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, err
	}

	stats, err := s.repo.Find(ctx, user.ID, date)
	switch {
	case err == nil:
		return stats, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return &model.DailyStats{UserID: user.ID, Date: date}, nil
	default:
		return nil, err
	}
}

func (s *StatsService) Range(ctx context.Context, user *model.User, from, to string) ([]model.DailyStats, error) {
	if _, err := ParseDate(from); err != nil {
		return nil, err
	}
	if _, err := ParseDate(to); err != nil {
		return nil, err
	}
	if from > to {
		return nil, fmt.Errorf("%w: range start %s is after end %s", ErrInvalidInput, from, to)
	}
	return s.repo.Range(ctx, user.ID, from, to)
}

// Rollup recomputes tasks_planned for every plan of the given date from the
// tasks actually assigned to its windows. Runs nightly; per-user failures
// are logged and do not stop the sweep.
func (s *StatsService) Rollup(ctx context.Context, date string) error {
	if _, err := ParseDate(date); err != nil {
		return err
	}

	plans, err := s.planRepo.ListByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("list plans for rollup: %w", err)
	}

	for _, plan := range plans {
		seen := make(map[uint]struct{})
		for _, alloc := range plan.Allocations {
			for _, task := range alloc.Tasks {
				seen[task.ID] = struct{}{}
			}
		}
		if err := s.repo.SetPlanned(ctx, plan.UserID, date, len(seen)); err != nil {
			s.logger.Error("stats rollup failed for user",
				zap.Uint("user_id", plan.UserID),
				zap.String("date", date),
				zap.Error(err))
		}
	}
	return nil
}
