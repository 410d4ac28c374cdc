package entrypoint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sunr3d/project-backup/internal/config"
)

func writeDumpScript(t *testing.T, dir string) string {
	path := filepath.Join(dir, "fake-mysqldump")
	script := "#!/bin/sh\necho \"CREATE TABLE t (id int); -- $3\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func setupConfig(t *testing.T) (*config.Config, string) {
	base := t.TempDir()

	siteDir := filepath.Join(base, "site")
	require.NoError(t, os.MkdirAll(siteDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<h1>hi</h1>"), 0644))

	projectsFile := filepath.Join(base, "projects.yaml")
	registry := "projects:\n  - name: shop\n    dir: " + siteDir + "\n    db: shopdb\n"
	require.NoError(t, os.WriteFile(projectsFile, []byte(registry), 0644))

	remote := filepath.Join(base, "remote")
	return &config.Config{
		DBUser:          "root",
		DBPassword:      "secret",
		DumpCommand:     writeDumpScript(t, base),
		OutputDir:       filepath.Join(base, "out"),
		ProjectsFile:    projectsFile,
		StorageBackend:  config.BackendLocal,
		RemoteRoot:      "/backups",
		ChunkSize:       64,
		SessionTTL:      time.Hour,
		LocalStorageDir: remote,
	}, remote
}

func TestRun_MissingSecretsAbortsBeforeWork(t *testing.T) {
	cfg, remote := setupConfig(t)
	cfg.DBPassword = ""

	err := Run(context.Background(), cfg, zaptest.NewLogger(t))

	assert.ErrorIs(t, err, config.ErrMissingSecrets)
	assert.NoDirExists(t, cfg.OutputDir)
	assert.NoDirExists(t, remote)
}

func TestRun_MissingDropboxToken(t *testing.T) {
	cfg, _ := setupConfig(t)
	cfg.StorageBackend = config.BackendDropbox
	cfg.DropboxToken = ""

	err := Run(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorIs(t, err, config.ErrMissingSecrets)
}

func TestRun_LocalBackend_TwoObjectsPerProject(t *testing.T) {
	cfg, remote := setupConfig(t)

	require.NoError(t, Run(context.Background(), cfg, zaptest.NewLogger(t)))

	today := time.Now().Format("2006-01-02")
	folder := filepath.Join(remote, "backups", "shop", today)

	entries, err := os.ReadDir(folder)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var archives, dumps int
	for _, e := range entries {
		switch {
		case filepath.Ext(e.Name()) == ".gz":
			archives++
			local, err := os.ReadFile(filepath.Join(cfg.OutputDir, e.Name()))
			require.NoError(t, err)
			uploaded, err := os.ReadFile(filepath.Join(folder, e.Name()))
			require.NoError(t, err)
			assert.Equal(t, local, uploaded)
		case filepath.Ext(e.Name()) == ".sql":
			dumps++
			data, err := os.ReadFile(filepath.Join(folder, e.Name()))
			require.NoError(t, err)
			assert.Equal(t, "CREATE TABLE t (id int); -- shopdb\n", string(data))
		}
	}
	assert.Equal(t, 1, archives)
	assert.Equal(t, 1, dumps)
}
