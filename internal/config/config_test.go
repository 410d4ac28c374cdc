package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunr3d/project-backup/models"
)

func validConfig() *Config {
	return &Config{
		DBPassword:     "secret",
		DropboxToken:   "token",
		StorageBackend: BackendDropbox,
		OutputDir:      "/tmp/backups",
		ChunkSize:      100 << 20,
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DROPBOX_TOKEN", "token")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "root", cfg.DBUser)
	assert.Equal(t, "/root/backups", cfg.OutputDir)
	assert.Equal(t, "/backups", cfg.RemoteRoot)
	assert.Equal(t, int64(100*1024*1024), cfg.ChunkSize)
	assert.Equal(t, "mysqldump", cfg.DumpCommand)
	assert.Equal(t, BackendDropbox, cfg.StorageBackend)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_MissingSecrets(t *testing.T) {
	cfg := validConfig()
	cfg.DBPassword = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecrets)

	cfg = validConfig()
	cfg.DropboxToken = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingSecrets)
}

func TestValidate_TokenNotNeededForOtherBackends(t *testing.T) {
	cfg := validConfig()
	cfg.DropboxToken = ""
	cfg.StorageBackend = BackendLocal
	cfg.LocalStorageDir = "/tmp/remote"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_ChunkSize(t *testing.T) {
	cfg := validConfig()
	cfg.ChunkSize = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = validConfig()
	cfg.ChunkSize = 200 << 20
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = validConfig()
	cfg.StorageBackend = BackendS3
	cfg.S3Bucket = "b"
	cfg.ChunkSize = 1 << 20
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "ftp"
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

func TestLoadProjects_MissingFileUsesDefaults(t *testing.T) {
	projects, err := LoadProjects(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProjects, projects)
}

func TestLoadProjects_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "projects.yaml")
	data := `
projects:
  - name: shop
    dir: /srv/shop
    db: shop
  - name: wiki
    db: wiki
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	projects, err := LoadProjects(path)
	require.NoError(t, err)
	assert.Equal(t, []models.Project{
		{Name: "shop", Dir: "/srv/shop", Database: "shop"},
		{Name: "wiki", Database: "wiki"},
	}, projects)
}

func TestParseProjects_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":     "projects: []",
		"no name":   "projects: [{db: x}]",
		"no db":     "projects: [{name: x}]",
		"duplicate": "projects: [{name: x, db: a}, {name: x, db: b}]",
		"garbage":   "projects: {",
	}

	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseProjects([]byte(data))
			assert.ErrorIs(t, err, ErrInvalidProjects)
		})
	}
}
