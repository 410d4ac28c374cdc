package entrypoint

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/config"
	"github.com/sunr3d/project-backup/internal/infra/dropbox"
	"github.com/sunr3d/project-backup/internal/infra/inmem"
	"github.com/sunr3d/project-backup/internal/infra/localfs"
	"github.com/sunr3d/project-backup/internal/infra/s3store"
	"github.com/sunr3d/project-backup/internal/interfaces/infra"
	"github.com/sunr3d/project-backup/internal/services/archive_service"
	"github.com/sunr3d/project-backup/internal/services/backup_service"
	"github.com/sunr3d/project-backup/internal/services/dump_service"
	"github.com/sunr3d/project-backup/internal/services/upload_service"
	"github.com/sunr3d/project-backup/models"
)

func Run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	projects, err := config.LoadProjects(cfg.ProjectsFile)
	if err != nil {
		return err
	}
	log.Info("реестр проектов загружен",
		zap.String("path", cfg.ProjectsFile),
		zap.Int("projects", len(projects)),
	)

	storage, err := newStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	report, err := runBackup(ctx, cfg, log, projects, storage)
	if err != nil {
		return err
	}

	for _, p := range report.Projects {
		if len(p.Errors) > 0 {
			log.Warn("проект завершен с ошибками",
				zap.String("project", p.Project),
				zap.String("status", string(p.Status)),
				zap.Strings("errors", p.Errors),
			)
		}
	}

	return nil
}

func runBackup(ctx context.Context, cfg *config.Config, log *zap.Logger, projects []models.Project, storage infra.RemoteStorage) (*models.RunReport, error) {
	sessions := inmem.New(log, cfg.SessionTTL)

	uploader, err := upload_service.New(log, storage, sessions, cfg.ChunkSize)
	if err != nil {
		return nil, err
	}

	archiver := archive_service.New(log, cfg.OutputDir)
	dumper := dump_service.New(log, dump_service.Options{
		Command:   cfg.DumpCommand,
		User:      cfg.DBUser,
		Password:  cfg.DBPassword,
		OutputDir: cfg.OutputDir,
	})

	svc := backup_service.New(log, backup_service.Options{
		Projects:   projects,
		OutputDir:  cfg.OutputDir,
		RemoteRoot: cfg.RemoteRoot,
	}, archiver, dumper, uploader)

	report, err := svc.Run(ctx)
	if err != nil {
		return nil, err
	}

	open, err := sessions.CountOpenSessions(ctx)
	if err != nil {
		log.Warn("не удалось подсчитать открытые сессии", zap.Error(err))
	} else if open > 0 {
		log.Warn("остались незавершенные сессии загрузки", zap.Int("sessions", open))
	}

	return report, nil
}

func newStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (infra.RemoteStorage, error) {
	switch cfg.StorageBackend {
	case config.BackendDropbox:
		return dropbox.New(log, cfg.DropboxToken), nil
	case config.BackendS3:
		return s3store.New(ctx, log, cfg)
	case config.BackendLocal:
		return localfs.New(log, cfg.LocalStorageDir)
	default:
		return nil, fmt.Errorf("%w: неизвестный STORAGE_BACKEND %q", config.ErrInvalidConfig, cfg.StorageBackend)
	}
}
