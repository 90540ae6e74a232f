package app

import (
	"context"
	"fmt"
	"os"

	"github.com/chitralhive/hivekeep/internal/adapter/compressor"
	"github.com/chitralhive/hivekeep/internal/adapter/credentials"
	"github.com/chitralhive/hivekeep/internal/adapter/database"
	"github.com/chitralhive/hivekeep/internal/adapter/notifier"
	"github.com/chitralhive/hivekeep/internal/adapter/storage"
	"github.com/chitralhive/hivekeep/internal/config"
	"github.com/chitralhive/hivekeep/internal/domain"
	"github.com/chitralhive/hivekeep/internal/infrastructure/lock"
	"github.com/chitralhive/hivekeep/internal/infrastructure/logger"
	"github.com/chitralhive/hivekeep/internal/infrastructure/scheduler"
	"github.com/chitralhive/hivekeep/internal/usecase"
)

// Cleanup runs daily at 03:00 in daemon mode.
const cleanupSchedule = "0 0 3 * * *"

type App struct {
	config      *config.Config
	logger      *logger.Logger
	scheduler   *scheduler.Scheduler
	backupUC    *usecase.Backup
	cleanupUC   *usecase.Cleanup
	releaseLock func()
}

func New(cfg *config.Config) (*App, error) {
	log, err := logger.New(cfg.App.LogLevel, cfg.App.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	log.Infof("Starting %s", cfg.App.Name)

	releaseLock, err := lock.Acquire(cfg.Backup.LockFile)
	if err != nil {
		return nil, err
	}

	localStorage, err := storage.NewLocal(cfg.Backup.Dir)
	if err != nil {
		releaseLock()
		return nil, fmt.Errorf("failed to initialize backup directory: %w", err)
	}

	creds, err := credentials.NewPgpass(cfg.Database.Passfile)
	if err != nil {
		releaseLock()
		return nil, fmt.Errorf("failed to initialize credential provider: %w", err)
	}

	dumper := database.NewPostgres(&cfg.Database, creds)
	comp := compressor.NewGzip()

	uploadTargets := initializeUploadTargets(cfg, log)

	var notif domain.Notifier
	if cfg.Mail.Configured() {
		notif = notifier.NewMail(&cfg.Mail)
		log.Infof("✓ Mail notification enabled (to: %s)", cfg.Mail.To)
	} else {
		notif = notifier.NewPathReporter(os.Stdout)
		log.Infof("No mail transport configured, artifact path will be printed")
	}

	backupUC := usecase.NewBackup(
		dumper,
		localStorage,
		comp,
		notif,
		uploadTargets,
		log,
		cfg.Backup.Prefix,
	)

	cleanupUC := usecase.NewCleanup(
		localStorage,
		uploadTargets,
		log,
		cfg.Backup.RetentionDays,
	)

	return &App{
		config:      cfg,
		logger:      log,
		scheduler:   scheduler.New(),
		backupUC:    backupUC,
		cleanupUC:   cleanupUC,
		releaseLock: releaseLock,
	}, nil
}

func initializeUploadTargets(cfg *config.Config, log *logger.Logger) []usecase.UploadTarget {
	var targets []usecase.UploadTarget
	ctx := context.Background()

	for _, targetCfg := range cfg.GetEnabledUploadTargets() {
		var stor domain.Storage
		var err error

		switch targetCfg.Type {
		case "s3":
			stor, err = storage.NewS3(ctx, &targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize S3: %v", err)
				continue
			}
			log.Infof("✓ S3 replication enabled (bucket: %s)", targetCfg.Bucket)

		case "gdrive":
			stor, err = storage.NewGDrive(ctx, &targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Google Drive: %v", err)
				continue
			}
			log.Infof("✓ Google Drive replication enabled")

		case "telegram":
			stor, err = storage.NewTelegram(&targetCfg)
			if err != nil {
				log.Errorf("Failed to initialize Telegram: %v", err)
				continue
			}
			log.Infof("✓ Telegram delivery enabled")

		default:
			log.Warnf("Unknown upload target type: %s", targetCfg.Type)
			continue
		}

		targets = append(targets, usecase.UploadTarget{
			Name:    targetCfg.Type,
			Storage: stor,
		})
	}

	return targets
}

// RunOnce performs a single backup, for invocation under an external
// scheduler such as cron. Retention, when enabled, is applied after a
// successful run.
func (a *App) RunOnce(ctx context.Context) error {
	if err := a.backupUC.Execute(ctx); err != nil {
		return err
	}

	if a.config.Backup.RetentionDays > 0 {
		if err := a.cleanupUC.Execute(ctx); err != nil {
			a.logger.Errorf("Cleanup after backup failed: %v", err)
		}
	}

	return nil
}

// RunDaemon schedules backups in-process and blocks until ctx is cancelled.
func (a *App) RunDaemon(ctx context.Context) error {
	spec := a.config.Backup.Schedule
	a.logger.Infof("Scheduling backup: %s", spec)

	err := a.scheduler.AddJob(spec, a.backupUC.Execute, func(err error) {
		a.logger.Errorf("Scheduled backup failed: %v", err)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule backup: %w", err)
	}

	if a.config.Backup.RetentionDays > 0 {
		a.logger.Infof("Scheduling cleanup: %s", cleanupSchedule)

		err := a.scheduler.AddJob(cleanupSchedule, a.cleanupUC.Execute, func(err error) {
			a.logger.Errorf("Scheduled cleanup failed: %v", err)
		})
		if err != nil {
			return fmt.Errorf("failed to schedule cleanup: %w", err)
		}
	}

	a.scheduler.Start()
	a.logger.Infof("Scheduler started")

	<-ctx.Done()
	return nil
}

// RunCleanup applies the retention policy immediately.
func (a *App) RunCleanup(ctx context.Context) error {
	return a.cleanupUC.Execute(ctx)
}

func (a *App) Shutdown() {
	a.logger.Infof("Shutting down...")
	a.scheduler.Stop()
	a.releaseLock()
	a.logger.Close()
}
