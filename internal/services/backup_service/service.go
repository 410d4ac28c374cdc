package backup_service

import (
	"context"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/services"
	"github.com/sunr3d/project-backup/models"
)

const DateLayout = "2006-01-02"

var _ services.BackupService = (*backupService)(nil)

type Options struct {
	Projects   []models.Project
	OutputDir  string
	RemoteRoot string
}

type backupService struct {
	logger   *zap.Logger
	archiver services.Archiver
	dumper   services.Dumper
	uploader services.Uploader
	opts     Options
	now      func() time.Time
}

func New(log *zap.Logger, opts Options, archiver services.Archiver, dumper services.Dumper, uploader services.Uploader) services.BackupService {
	return &backupService{
		logger:   log,
		archiver: archiver,
		dumper:   dumper,
		uploader: uploader,
		opts:     opts,
		now:      time.Now,
	}
}

// RemoteFolder returns {root}/{project}/{YYYY-MM-DD}.
func RemoteFolder(root, project string, day time.Time) string {
	return path.Join("/", root, project, day.Format(DateLayout))
}

// Run backs up every registered project in order. Only a failure to prepare the local
// output directory is returned; everything else ends up in the report.
func (s *backupService) Run(ctx context.Context) (*models.RunReport, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMkdirFailed, err)
	}

	report := &models.RunReport{
		ID:        uuid.New().String(),
		StartedAt: s.now(),
		Projects:  make([]*models.ProjectReport, 0, len(s.opts.Projects)),
	}

	s.logger.Info("резервное копирование запущено",
		zap.String("run_id", report.ID),
		zap.Int("projects", len(s.opts.Projects)),
	)

	for _, project := range s.opts.Projects {
		folder := RemoteFolder(s.opts.RemoteRoot, project.Name, report.StartedAt)
		report.Projects = append(report.Projects, s.BackupProject(ctx, project, folder))
	}

	report.FinishedAt = s.now()

	counts := make(map[models.ProjectStatus]int)
	for _, p := range report.Projects {
		counts[p.Status]++
	}
	s.logger.Info("резервное копирование завершено",
		zap.String("run_id", report.ID),
		zap.Int("ok", counts[models.ProjectStatusOK]),
		zap.Int("partial", counts[models.ProjectStatusPartial]),
		zap.Int("failed", counts[models.ProjectStatusFailed]),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)),
	)

	return report, nil
}

// BackupProject archives the directory, dumps the database and uploads whatever was produced.
func (s *backupService) BackupProject(ctx context.Context, project models.Project, remoteFolder string) *models.ProjectReport {
	report := &models.ProjectReport{
		Project:      project.Name,
		RemoteFolder: remoteFolder,
		Artifacts:    make([]models.Artifact, 0, 2),
		Uploaded:     make([]string, 0, 2),
		Errors:       make([]string, 0),
	}

	archivePath, err := s.archiver.ArchiveDirectory(ctx, project.Name, project.Dir)
	switch {
	case err != nil:
		s.logger.Error("ошибка архивирования директории",
			zap.String("project", project.Name),
			zap.String("dir", project.Dir),
			zap.Error(err),
		)
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", ErrArchiveFailed.Error(), err))
	case archivePath == "":
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %s", ErrDirectoryGone.Error(), project.Dir))
	default:
		report.Artifacts = append(report.Artifacts, models.Artifact{Kind: models.ArtifactKindArchive, Path: archivePath})
	}

	dumpPath, err := s.dumper.DumpDatabase(ctx, project.Name, project.Database)
	if err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", ErrDumpFailed.Error(), err))
	} else if dumpPath != "" {
		report.Artifacts = append(report.Artifacts, models.Artifact{Kind: models.ArtifactKindDump, Path: dumpPath})
	}

	if len(report.Artifacts) == 0 {
		s.logger.Warn("нет файлов для загрузки, проект пропущен", zap.String("project", project.Name))
		report.Errors = append(report.Errors, ErrNoArtifacts.Error())
		report.Status = models.ProjectStatusFailed
		return report
	}

	files := make([]string, 0, len(report.Artifacts))
	for _, a := range report.Artifacts {
		files = append(files, a.Path)
	}

	for _, res := range s.uploader.Upload(ctx, files, remoteFolder) {
		if res.Err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %s: %v", ErrUploadFailed.Error(), res.Path, res.Err))
			continue
		}
		report.Uploaded = append(report.Uploaded, res.Target)
	}

	switch {
	case len(report.Errors) == 0:
		report.Status = models.ProjectStatusOK
	case len(report.Uploaded) > 0:
		report.Status = models.ProjectStatusPartial
	default:
		report.Status = models.ProjectStatusFailed
	}

	s.logger.Info("проект обработан",
		zap.String("project", project.Name),
		zap.String("status", string(report.Status)),
		zap.String("remote_folder", remoteFolder),
		zap.Int("uploaded", len(report.Uploaded)),
		zap.Int("errors", len(report.Errors)),
	)

	return report
}
