package dump_service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/services"
)

const (
	TimestampLayout = "20060102_150405"

	maxStderr = 4096
)

var _ services.Dumper = (*dumpService)(nil)

type Options struct {
	Command   string
	User      string
	Password  string
	OutputDir string
}

type dumpService struct {
	logger *zap.Logger
	opts   Options
	now    func() time.Time
}

func New(log *zap.Logger, opts Options) services.Dumper {
	return &dumpService{
		logger: log,
		opts:   opts,
		now:    time.Now,
	}
}

// DumpDatabase runs `<command> --user=<user> --password=<password> <database>` with stdout
// redirected to {project}_db_{database}_{timestamp}.sql. A non-zero exit is logged and returned
// as ErrDumpFailed; the partial file is removed.
func (s *dumpService) DumpDatabase(ctx context.Context, project, database string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if err := os.MkdirAll(s.opts.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMkdirFailed, err)
	}

	name := fmt.Sprintf("%s_db_%s_%s.sql", project, database, s.now().Format(TimestampLayout))
	dumpPath := filepath.Join(s.opts.OutputDir, name)

	out, err := os.Create(dumpPath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.opts.Command,
		"--user="+s.opts.User,
		"--password="+s.opts.Password,
		database,
	)
	cmd.Stdout = out
	cmd.Stderr = &limitedBuffer{buf: &stderr, limit: maxStderr}

	runErr := cmd.Run()
	closeErr := out.Close()

	if runErr == nil && closeErr != nil {
		runErr = closeErr
	}
	if runErr != nil {
		os.Remove(dumpPath)
		s.logger.Error("ошибка создания дампа базы данных",
			zap.String("project", project),
			zap.String("database", database),
			zap.String("stderr", strings.TrimSpace(stderr.String())),
			zap.Error(runErr),
		)
		return "", fmt.Errorf("%w: %s: %v", ErrDumpFailed, database, runErr)
	}

	s.logger.Info("дамп базы данных создан",
		zap.String("project", project),
		zap.String("database", database),
		zap.String("dump", dumpPath),
	)
	return dumpPath, nil
}

// limitedBuffer keeps the first limit bytes and silently drops the rest.
type limitedBuffer struct {
	buf   *bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	if room := b.limit - b.buf.Len(); room > 0 {
		if len(p) > room {
			b.buf.Write(p[:room])
		} else {
			b.buf.Write(p)
		}
	}
	return len(p), nil
}
