package localfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/infra"
)

const sessionsDir = ".sessions"

var _ infra.RemoteStorage = (*localStorage)(nil)

// localStorage mirrors the remote layout under a local root directory.
// Sessions are staging files that are renamed onto the target on finish.
type localStorage struct {
	root   string
	logger *zap.Logger
}

func New(log *zap.Logger, root string) (infra.RemoteStorage, error) {
	if err := os.MkdirAll(filepath.Join(root, sessionsDir), 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать корневую директорию хранилища: %w", err)
	}
	return &localStorage{root: root, logger: log}, nil
}

func (s *localStorage) UploadWhole(ctx context.Context, content []byte, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	tmp := dst + ".part"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}

func (s *localStorage) StartSession(ctx context.Context, _ string, chunk []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	id := uuid.New().String()
	if err := os.WriteFile(s.stagingPath(id), chunk, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	s.logger.Debug("локальная сессия открыта", zap.String("session_id", id))
	return id, nil
}

func (s *localStorage) AppendToSession(ctx context.Context, sessionID string, offset uint64, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.appendChunk(sessionID, offset, chunk)
}

func (s *localStorage) FinishSession(ctx context.Context, sessionID string, offset uint64, chunk []byte, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dst, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := s.appendChunk(sessionID, offset, chunk); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := os.Rename(s.stagingPath(sessionID), dst); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}

	return nil
}

func (s *localStorage) CancelSession(_ context.Context, sessionID string) error {
	err := os.Remove(s.stagingPath(sessionID))
	if errors.Is(err, os.ErrNotExist) {
		return ErrSessionNotFound
	}
	return err
}

func (s *localStorage) appendChunk(sessionID string, offset uint64, chunk []byte) error {
	staging := s.stagingPath(sessionID)

	info, err := os.Stat(staging)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if uint64(info.Size()) != offset {
		return fmt.Errorf("%w: ожидалось %d, получено %d", ErrOffsetMismatch, info.Size(), offset)
	}

	f, err := os.OpenFile(staging, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	defer f.Close()

	if _, err := f.Write(chunk); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return f.Close()
}

func (s *localStorage) stagingPath(sessionID string) string {
	return filepath.Join(s.root, sessionsDir, filepath.Base(sessionID))
}

func (s *localStorage) resolve(path string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(path, "/")))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	if strings.HasPrefix(rel, sessionsDir) {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, path)
	}
	return filepath.Join(s.root, rel), nil
}
