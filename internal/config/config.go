package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	BackendDropbox = "dropbox"
	BackendS3      = "s3"
	BackendLocal   = "local"

	// S3 rejects multipart parts below 5 MiB except the last one.
	minS3ChunkSize = 5 << 20
	// Dropbox caps a single upload request at 150 MiB.
	maxDropboxChunkSize = 150 << 20
)

var (
	ErrMissingSecrets = errors.New("не заданы переменные окружения DB_PASSWORD или DROPBOX_TOKEN")
	ErrInvalidConfig  = errors.New("некорректная конфигурация")
)

type Config struct {
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBUser      string `envconfig:"DB_USER" default:"root"`
	DBPassword  string `envconfig:"DB_PASSWORD"`
	DumpCommand string `envconfig:"DUMP_COMMAND" default:"mysqldump"`

	OutputDir    string `envconfig:"OUTPUT_DIR" default:"/root/backups"`
	ProjectsFile string `envconfig:"PROJECTS_FILE" default:"projects.yaml"`

	StorageBackend string        `envconfig:"STORAGE_BACKEND" default:"dropbox"`
	RemoteRoot     string        `envconfig:"REMOTE_ROOT" default:"/backups"`
	ChunkSize      int64         `envconfig:"CHUNK_SIZE" default:"104857600"`
	SessionTTL     time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	DropboxToken string `envconfig:"DROPBOX_TOKEN"`

	S3Endpoint       string `envconfig:"S3_ENDPOINT"`
	S3Region         string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket         string `envconfig:"S3_BUCKET"`
	S3AccessKey      string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey      string `envconfig:"S3_SECRET_KEY"`
	S3ForcePathStyle bool   `envconfig:"S3_FORCE_PATH_STYLE" default:"true"`

	LocalStorageDir string `envconfig:"LOCAL_STORAGE_DIR" default:"/var/lib/project-backup/remote"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate checks the secrets first so a missing one is reported before anything else.
func (c *Config) Validate() error {
	if c.DBPassword == "" {
		return ErrMissingSecrets
	}
	if c.StorageBackend == BackendDropbox && c.DropboxToken == "" {
		return ErrMissingSecrets
	}

	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE должен быть положительным, получено %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("%w: OUTPUT_DIR не задан", ErrInvalidConfig)
	}

	switch c.StorageBackend {
	case BackendDropbox:
		if c.ChunkSize > maxDropboxChunkSize {
			return fmt.Errorf("%w: CHUNK_SIZE для Dropbox не должен превышать %d", ErrInvalidConfig, maxDropboxChunkSize)
		}
	case BackendS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("%w: S3_BUCKET не задан", ErrInvalidConfig)
		}
		if c.ChunkSize < minS3ChunkSize {
			return fmt.Errorf("%w: CHUNK_SIZE для S3 должен быть не меньше %d", ErrInvalidConfig, minS3ChunkSize)
		}
	case BackendLocal:
		if c.LocalStorageDir == "" {
			return fmt.Errorf("%w: LOCAL_STORAGE_DIR не задан", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: неизвестный STORAGE_BACKEND %q", ErrInvalidConfig, c.StorageBackend)
	}

	return nil
}
