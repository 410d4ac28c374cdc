package services

import (
	"context"

	"github.com/sunr3d/project-backup/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=Archiver --output=../../../mocks
type Archiver interface {
	// ArchiveDirectory returns "" without error when the directory does not exist.
	ArchiveDirectory(ctx context.Context, project, dir string) (string, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=Dumper --output=../../../mocks
type Dumper interface {
	DumpDatabase(ctx context.Context, project, database string) (string, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=Uploader --output=../../../mocks
type Uploader interface {
	Upload(ctx context.Context, files []string, destinationFolder string) []models.FileResult
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=BackupService --output=../../../mocks
type BackupService interface {
	Run(ctx context.Context) (*models.RunReport, error)
	BackupProject(ctx context.Context, project models.Project, remoteFolder string) *models.ProjectReport
}
