package backup_service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/project-backup/mocks"
	"github.com/sunr3d/project-backup/models"
)

var runStart = time.Date(2024, 3, 5, 23, 59, 58, 0, time.UTC)

type testDeps struct {
	archiver *mocks.Archiver
	dumper   *mocks.Dumper
	uploader *mocks.Uploader
}

func setupTestService(t *testing.T, projects ...models.Project) (*backupService, testDeps, string) {
	deps := testDeps{
		archiver: mocks.NewArchiver(t),
		dumper:   mocks.NewDumper(t),
		uploader: mocks.NewUploader(t),
	}
	outputDir := filepath.Join(t.TempDir(), "backups")

	svc := New(zaptest.NewLogger(t), Options{
		Projects:   projects,
		OutputDir:  outputDir,
		RemoteRoot: "/backups",
	}, deps.archiver, deps.dumper, deps.uploader).(*backupService)
	svc.now = func() time.Time { return runStart }

	return svc, deps, outputDir
}

func okResults(folder string, files ...string) []models.FileResult {
	out := make([]models.FileResult, 0, len(files))
	for _, f := range files {
		out = append(out, models.FileResult{Path: f, Target: folder + "/" + filepath.Base(f)})
	}
	return out
}

func TestRemoteFolder(t *testing.T) {
	day := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "/backups/shop/2024-03-05", RemoteFolder("/backups", "shop", day))
	assert.Equal(t, "/backups/shop/2024-03-05", RemoteFolder("/backups/", "shop", day))
	assert.Equal(t, "/shop/2024-03-05", RemoteFolder("", "shop", day))
}

func TestBackupService_Run_AllArtifacts(t *testing.T) {
	project := models.Project{Name: "shop", Dir: "/srv/shop", Database: "shopdb"}
	svc, deps, outputDir := setupTestService(t, project)
	ctx := context.Background()
	folder := "/backups/shop/2024-03-05"

	deps.archiver.On("ArchiveDirectory", mock.Anything, "shop", "/srv/shop").Return("/out/shop_dir.tar.gz", nil).Once()
	deps.dumper.On("DumpDatabase", mock.Anything, "shop", "shopdb").Return("/out/shop_db.sql", nil).Once()
	deps.uploader.On("Upload", mock.Anything, []string{"/out/shop_dir.tar.gz", "/out/shop_db.sql"}, folder).
		Return(okResults(folder, "/out/shop_dir.tar.gz", "/out/shop_db.sql")).Once()

	report, err := svc.Run(ctx)
	require.NoError(t, err)

	assert.DirExists(t, outputDir)
	assert.NotEmpty(t, report.ID)
	require.Len(t, report.Projects, 1)

	p := report.Projects[0]
	assert.Equal(t, models.ProjectStatusOK, p.Status)
	assert.Equal(t, folder, p.RemoteFolder)
	assert.Equal(t, []string{folder + "/shop_dir.tar.gz", folder + "/shop_db.sql"}, p.Uploaded)
	assert.Empty(t, p.Errors)
}

func TestBackupService_MissingDirectory_UploadsDumpOnly(t *testing.T) {
	project := models.Project{Name: "shop", Dir: "/gone", Database: "shopdb"}
	svc, deps, _ := setupTestService(t)
	folder := "/backups/shop/2024-03-05"

	deps.archiver.On("ArchiveDirectory", mock.Anything, "shop", "/gone").Return("", nil).Once()
	deps.dumper.On("DumpDatabase", mock.Anything, "shop", "shopdb").Return("/out/shop_db.sql", nil).Once()
	deps.uploader.On("Upload", mock.Anything, []string{"/out/shop_db.sql"}, folder).
		Return(okResults(folder, "/out/shop_db.sql")).Once()

	report := svc.BackupProject(context.Background(), project, folder)

	assert.Equal(t, models.ProjectStatusPartial, report.Status)
	assert.Equal(t, []models.Artifact{{Kind: models.ArtifactKindDump, Path: "/out/shop_db.sql"}}, report.Artifacts)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], ErrDirectoryGone.Error())
}

func TestBackupService_DumpFails_UploadsArchiveOnly(t *testing.T) {
	project := models.Project{Name: "shop", Dir: "/srv/shop", Database: "shopdb"}
	svc, deps, _ := setupTestService(t)
	folder := "/backups/shop/2024-03-05"

	deps.archiver.On("ArchiveDirectory", mock.Anything, "shop", "/srv/shop").Return("/out/shop_dir.tar.gz", nil).Once()
	deps.dumper.On("DumpDatabase", mock.Anything, "shop", "shopdb").Return("", errors.New("exit status 1")).Once()
	deps.uploader.On("Upload", mock.Anything, []string{"/out/shop_dir.tar.gz"}, folder).
		Return(okResults(folder, "/out/shop_dir.tar.gz")).Once()

	report := svc.BackupProject(context.Background(), project, folder)

	assert.Equal(t, models.ProjectStatusPartial, report.Status)
	assert.Equal(t, []string{folder + "/shop_dir.tar.gz"}, report.Uploaded)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], ErrDumpFailed.Error())
}

func TestBackupService_NoArtifacts_SkipsUpload(t *testing.T) {
	project := models.Project{Name: "shop", Dir: "/gone", Database: "shopdb"}
	svc, deps, _ := setupTestService(t)

	deps.archiver.On("ArchiveDirectory", mock.Anything, "shop", "/gone").Return("", nil).Once()
	deps.dumper.On("DumpDatabase", mock.Anything, "shop", "shopdb").Return("", errors.New("exit status 2")).Once()

	report := svc.BackupProject(context.Background(), project, "/backups/shop/2024-03-05")

	assert.Equal(t, models.ProjectStatusFailed, report.Status)
	assert.Empty(t, report.Uploaded)
	assert.Contains(t, report.Errors, ErrNoArtifacts.Error())
	deps.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestBackupService_UploadFailure_Reported(t *testing.T) {
	project := models.Project{Name: "shop", Dir: "/srv/shop", Database: "shopdb"}
	svc, deps, _ := setupTestService(t)
	folder := "/backups/shop/2024-03-05"

	deps.archiver.On("ArchiveDirectory", mock.Anything, "shop", "/srv/shop").Return("/out/a.tar.gz", nil).Once()
	deps.dumper.On("DumpDatabase", mock.Anything, "shop", "shopdb").Return("/out/d.sql", nil).Once()
	deps.uploader.On("Upload", mock.Anything, []string{"/out/a.tar.gz", "/out/d.sql"}, folder).
		Return([]models.FileResult{
			{Path: "/out/a.tar.gz", Target: folder + "/a.tar.gz", Err: errors.New("session append failed")},
			{Path: "/out/d.sql", Target: folder + "/d.sql"},
		}).Once()

	report := svc.BackupProject(context.Background(), project, folder)

	assert.Equal(t, models.ProjectStatusPartial, report.Status)
	assert.Equal(t, []string{folder + "/d.sql"}, report.Uploaded)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "/out/a.tar.gz")
}

func TestBackupService_Run_ProjectsInOrder(t *testing.T) {
	first := models.Project{Name: "a", Dir: "/a", Database: "a"}
	second := models.Project{Name: "b", Dir: "/b", Database: "b"}
	svc, deps, _ := setupTestService(t, first, second)

	for _, p := range []models.Project{first, second} {
		folder := "/backups/" + p.Name + "/2024-03-05"
		deps.archiver.On("ArchiveDirectory", mock.Anything, p.Name, p.Dir).Return("", nil).Once()
		deps.dumper.On("DumpDatabase", mock.Anything, p.Name, p.Database).Return("/out/"+p.Name+".sql", nil).Once()
		deps.uploader.On("Upload", mock.Anything, []string{"/out/" + p.Name + ".sql"}, folder).
			Return(okResults(folder, "/out/"+p.Name+".sql")).Once()
	}

	report, err := svc.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Projects, 2)
	assert.Equal(t, "a", report.Projects[0].Project)
	assert.Equal(t, "b", report.Projects[1].Project)
}

func TestBackupService_Run_ContextCancelled(t *testing.T) {
	svc, _, outputDir := setupTestService(t, models.Project{Name: "a", Database: "a"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Run(ctx)
	assert.ErrorIs(t, err, ErrContextDone)
	assert.NoDirExists(t, outputDir)
}
