package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"dayplan/internal/model"
	"dayplan/internal/pomodoro"
	"dayplan/internal/repository"
)

// Notifier delivers a message to a user's external chat. Implementations
// must be safe for concurrent use.
type Notifier interface {
	SendText(chatID int64, text string) error
}

// timerSession pairs one user's machine with its ticker goroutine and the
// task the running work session counts towards.
type timerSession struct {
	machine *pomodoro.Machine
	cancel  context.CancelFunc

	mu    sync.Mutex
	focus uint // 0 = no focused task
}

func (ts *timerSession) focusedTask() uint {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.focus
}

func (ts *timerSession) setFocus(taskID uint) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.focus = taskID
}

// TimerSessions hands out pomodoro machines, one per user. Machines are
// created lazily on first use, restored from their persisted snapshot and
// ticked by their own goroutine until Stop.
type TimerSessions struct {
	durations pomodoro.Durations
	store     pomodoro.Store
	taskRepo  *repository.TaskRepository
	stats     *StatsService
	notifier  Notifier
	logger    *zap.Logger

	mu       sync.Mutex
	sessions map[uint]*timerSession

	runCtx context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
}

// NewTimerSessions builds the registry. notifier may be nil, in which case
// break notifications are skipped.
func NewTimerSessions(
	durations pomodoro.Durations,
	store pomodoro.Store,
	taskRepo *repository.TaskRepository,
	stats *StatsService,
	notifier Notifier,
	logger *zap.Logger,
) *TimerSessions {
	ctx, cancel := context.WithCancel(context.Background())
	return &TimerSessions{
		durations: durations,
		store:     store,
		taskRepo:  taskRepo,
		stats:     stats,
		notifier:  notifier,
		logger:    logger,
		sessions:  make(map[uint]*timerSession),
		runCtx:    ctx,
		stop:      cancel,
	}
}

// Current returns the user's timer state and the focused task id.
func (s *TimerSessions) Current(ctx context.Context, user *model.User) (pomodoro.State, uint) {
	sess := s.session(ctx, user)
	return sess.machine.State(), sess.focusedTask()
}

// StartPause toggles the user's timer and returns the new state.
func (s *TimerSessions) StartPause(ctx context.Context, user *model.User) pomodoro.State {
	return s.session(ctx, user).machine.StartPause(ctx)
}

// Skip abandons the current phase without crediting it.
func (s *TimerSessions) Skip(ctx context.Context, user *model.User) pomodoro.State {
	return s.session(ctx, user).machine.Skip(ctx)
}

// Reset restores the current phase to its full duration and pauses.
func (s *TimerSessions) Reset(ctx context.Context, user *model.User) pomodoro.State {
	return s.session(ctx, user).machine.Reset(ctx)
}

// Focus marks the task the running work session is spent on; completed
// pomodoros are counted against it. taskID 0 clears the focus.
func (s *TimerSessions) Focus(ctx context.Context, user *model.User, taskID uint) error {
	if taskID != 0 {
		if _, err := s.taskRepo.FindByID(ctx, user.ID, taskID); err != nil {
			return err
		}
	}
	s.session(ctx, user).setFocus(taskID)
	return nil
}

// Stop cancels every machine's ticker goroutine and waits for them to exit.
// Snapshot persistence keeps the timers restorable on the next start.
func (s *TimerSessions) Stop() {
	s.stop()
	s.wg.Wait()
}

// session returns the user's machine, creating and restoring it on first
// use. Exactly one machine exists per user.
func (s *TimerSessions) session(ctx context.Context, user *model.User) *timerSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[user.ID]; ok {
		return sess
	}

	logger := s.logger.With(zap.Uint("user_id", user.ID))
	machine := pomodoro.NewMachine(s.durations, s.store, pomodoro.SnapshotKey(user.ID), logger)
	machine.Load(ctx)

	runCtx, cancel := context.WithCancel(s.runCtx)
	sess := &timerSession{machine: machine, cancel: cancel}
	machine.Register(s.completion(*user, sess))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		machine.Run(runCtx)
	}()

	s.sessions[user.ID] = sess
	return sess
}

// completion builds the work-complete callback for one user: record the
// pomodoro in the daily stats, credit the focused task and notify the
// user's chat. The session outlives the request that created it, so the
// user is captured by value.
func (s *TimerSessions) completion(user model.User, sess *timerSession) pomodoro.CompleteFunc {
	return func(ctx context.Context, pomodorosCompleted int) error {
		if err := s.stats.RecordPomodoro(ctx, &user, s.durations.Work, time.Now()); err != nil {
			return err
		}
		if taskID := sess.focusedTask(); taskID != 0 {
			err := s.taskRepo.AddPomodoro(ctx, user.ID, taskID)
			switch {
			case err == nil:
			case errors.Is(err, gorm.ErrRecordNotFound):
				// Focused task was deleted mid-session.
				sess.setFocus(0)
			default:
				return err
			}
		}
		s.notifyBreak(user, pomodorosCompleted)
		return nil
	}
}

func (s *TimerSessions) notifyBreak(user model.User, completed int) {
	if s.notifier == nil || user.TelegramChatID == nil {
		return
	}
	text := fmt.Sprintf("🍅 Pomodoro #%d complete! Time for a break.", completed)
	if err := s.notifier.SendText(*user.TelegramChatID, text); err != nil {
		getMetrics().notificationsSent.WithLabelValues("telegram", "error").Inc()
		s.logger.Warn("send break notification", zap.Uint("user_id", user.ID), zap.Error(err))
		return
	}
	getMetrics().notificationsSent.WithLabelValues("telegram", "ok").Inc()
}
