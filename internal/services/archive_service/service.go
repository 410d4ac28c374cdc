package archive_service

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/services"
)

const TimestampLayout = "20060102_150405"

var _ services.Archiver = (*archiveService)(nil)

type archiveService struct {
	logger    *zap.Logger
	outputDir string
	now       func() time.Time
}

func New(log *zap.Logger, outputDir string) services.Archiver {
	return &archiveService{
		logger:    log,
		outputDir: outputDir,
		now:       time.Now,
	}
}

// ArchiveDirectory packs dir into {project}_dir_{timestamp}.tar.gz under the output directory.
// A missing directory is logged and yields an empty path with no error.
func (s *archiveService) ArchiveDirectory(ctx context.Context, project, dir string) (string, error) {
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	info, err := os.Stat(dir)
	if dir == "" || errors.Is(err, fs.ErrNotExist) {
		s.logger.Warn("директория не существует, архивирование пропущено",
			zap.String("project", project),
			zap.String("dir", dir),
		)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrNotDirectory, dir)
	}

	if err := os.MkdirAll(s.outputDir, 0755); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMkdirFailed, err)
	}

	name := fmt.Sprintf("%s_dir_%s.tar.gz", project, s.now().Format(TimestampLayout))
	archivePath := filepath.Join(s.outputDir, name)

	if err := s.buildTarGz(ctx, dir, archivePath); err != nil {
		os.Remove(archivePath)
		return "", fmt.Errorf("%w: %v", ErrArchiveBuild, err)
	}

	s.logger.Info("директория упакована в архив",
		zap.String("project", project),
		zap.String("dir", dir),
		zap.String("archive", archivePath),
	)
	return archivePath, nil
}

func (s *archiveService) buildTarGz(ctx context.Context, dir, archivePath string) error {
	out, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileCreateFailed, err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	root := filepath.Clean(dir)
	base := filepath.Base(root)

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
		default:
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(filepath.Join(base, rel))

		return s.addEntry(tw, path, name, d)
	})
	if err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	return out.Close()
}

func (s *archiveService) addEntry(tw *tar.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}

	var link string
	if info.Mode()&fs.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
		}
	} else if !info.IsDir() && !info.Mode().IsRegular() {
		s.logger.Debug("пропущен специальный файл", zap.String("path", path))
		return nil
	}

	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	hdr.Name = name
	if info.IsDir() {
		hdr.Name += "/"
	}

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	if !info.Mode().IsRegular() {
		return nil
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}
	defer file.Close()

	if _, err := io.Copy(tw, file); err != nil {
		return fmt.Errorf("%w: %v", ErrFileCopyFailed, err)
	}
	return nil
}
