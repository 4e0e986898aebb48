// Dayplan is a single-binary day planner: REST API, pomodoro timer,
// SQLite persistence and optional Telegram notifications.
//
// Configuration is read from an optional YAML file overridden by DAYPLAN_*
// environment variables. See internal/config for the full key list.
//
// Usage:
//
//	# Start with defaults (dayplan.db in the working directory)
//	dayplan
//
//	# Explicit config file
//	dayplan -config /etc/dayplan/config.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dayplan/internal/api"
	"dayplan/internal/config"
	"dayplan/internal/logging"
	"dayplan/internal/notify"
	"dayplan/internal/pomodoro"
	"dayplan/internal/repository"
	"dayplan/internal/service"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// rollupTime is when the nightly stats sweep over the previous day runs.
const rollupTime = "00:05"

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion()
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", args[0])
			fmt.Fprintf(os.Stderr, "Usage:\n")
			fmt.Fprintf(os.Stderr, "  dayplan            Start the planner service\n")
			fmt.Fprintf(os.Stderr, "  dayplan version    Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("dayplan: %v", err)
	}
}

func printVersion() {
	fmt.Printf("dayplan\n")
	fmt.Printf("Version:    %s\n", version)
	fmt.Printf("Commit:     %s\n", gitCommit)
	fmt.Printf("Build Date: %s\n", buildDate)
}

// run wires everything together and blocks until ctx is cancelled or the
// server fails.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("starting dayplan",
		zap.String("version", version),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("database", cfg.Database.Path))

	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	planRepo := repository.NewPlanRepository(db)
	settingRepo := repository.NewSettingRepository(db)

	tg, err := notify.NewTelegram(cfg.Notify.TelegramToken, logger)
	if err != nil {
		return fmt.Errorf("init telegram: %w", err)
	}
	// tg is a typed pointer; assigning it directly would make a nil notifier
	// look non-nil behind the interface.
	var notifier service.Notifier
	if tg != nil {
		notifier = tg
	}

	statsSvc := service.NewStatsService(repository.NewStatsRepository(db), planRepo, logger)
	timers := service.NewTimerSessions(pomodoro.Durations{
		Work:           cfg.Timer.WorkSeconds,
		ShortBreak:     cfg.Timer.ShortBreakSeconds,
		LongBreak:      cfg.Timer.LongBreakSeconds,
		LongBreakEvery: cfg.Timer.LongBreakEvery,
	}, settingRepo, taskRepo, statsSvc, notifier, logger)
	defer timers.Stop()

	reminders := service.NewReminderService(userRepo, planRepo, taskRepo, categoryRepo, statsSvc, notifier, logger)

	srv, err := api.NewServer(api.Services{
		Users:      userRepo,
		Tasks:      service.NewTaskService(taskRepo, categoryRepo, statsSvc),
		Categories: service.NewCategoryService(categoryRepo),
		Templates:  service.NewTemplateService(templateRepo, categoryRepo),
		Plans:      service.NewPlanService(planRepo, templateRepo, taskRepo, categoryRepo, logger),
		Stats:      statsSvc,
		Timers:     timers,
	}, logger, cfg.Server, cfg.Metrics.Enabled)
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	scheduler := service.NewScheduler(time.Local, logger)
	if err := scheduleJobs(scheduler, cfg, reminders, statsSvc, notifier, logger); err != nil {
		return err
	}
	scheduler.Start()
	defer scheduler.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}

// scheduleJobs registers the cron work: notification broadcasts when a
// notifier is configured, and the nightly stats rollup always.
func scheduleJobs(
	scheduler *service.Scheduler,
	cfg *config.Config,
	reminders *service.ReminderService,
	stats *service.StatsService,
	notifier service.Notifier,
	logger *zap.Logger,
) error {
	const jobTimeout = 30 * time.Second

	if notifier != nil {
		if _, err := scheduler.ScheduleDaily(cfg.Notify.DailySummaryTime, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
			defer cancel()
			reminders.BroadcastDaily(jobCtx, time.Now())
		}); err != nil {
			return fmt.Errorf("schedule daily summary: %w", err)
		}

		if interval := cfg.Notify.ReportInterval(); interval > 0 {
			if _, err := scheduler.ScheduleInterval(interval, func() {
				jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
				defer cancel()
				reminders.BroadcastProgress(jobCtx, time.Now())
			}); err != nil {
				return fmt.Errorf("schedule progress reports: %w", err)
			}
		}
	}

	if _, err := scheduler.ScheduleDaily(rollupTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()
		yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		if err := stats.Rollup(jobCtx, yesterday); err != nil {
			logger.Error("stats rollup", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("schedule stats rollup: %w", err)
	}
	return nil
}
