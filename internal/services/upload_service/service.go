package upload_service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/infra"
	"github.com/sunr3d/project-backup/internal/interfaces/services"
	"github.com/sunr3d/project-backup/models"
)

var _ services.Uploader = (*uploadService)(nil)

type uploadService struct {
	storage   infra.RemoteStorage
	sessions  infra.SessionStore
	logger    *zap.Logger
	chunkSize uint64
}

func New(log *zap.Logger, storage infra.RemoteStorage, sessions infra.SessionStore, chunkSize int64) (services.Uploader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidChunkSize, chunkSize)
	}
	return &uploadService{
		storage:   storage,
		sessions:  sessions,
		logger:    log,
		chunkSize: uint64(chunkSize),
	}, nil
}

// Upload sends every file to destinationFolder/<basename>. Files up to the chunk size go in a
// single request, larger ones through an upload session. A failed file is logged and reported in
// its result; the remaining files are still processed.
func (s *uploadService) Upload(ctx context.Context, files []string, destinationFolder string) []models.FileResult {
	results := make([]models.FileResult, 0, len(files))

	for _, path := range files {
		res := s.uploadFile(ctx, path, destinationFolder)
		if res.Err != nil {
			s.logger.Error("не удалось загрузить файл",
				zap.String("file", path),
				zap.String("target", res.Target),
				zap.Error(res.Err),
			)
		} else {
			s.logger.Info("файл загружен",
				zap.String("file", path),
				zap.String("target", res.Target),
				zap.Uint64("size", res.Size),
				zap.String("mode", string(res.Mode)),
				zap.Int("chunks", res.Chunks),
			)
		}
		results = append(results, res)
	}

	return results
}

func (s *uploadService) uploadFile(ctx context.Context, path, destinationFolder string) models.FileResult {
	res := models.FileResult{
		Path:   path,
		Target: destinationFolder + "/" + filepath.Base(path),
	}

	select {
	case <-ctx.Done():
		res.Err = fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
		return res
	default:
	}

	file, err := os.Open(path)
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
		return res
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		res.Err = fmt.Errorf("%w: %v", ErrFileStatFailed, err)
		return res
	}
	res.Size = uint64(info.Size())

	if res.Size <= s.chunkSize {
		res.Mode = models.UploadModeSingle
		res.Chunks = 1
		res.Err = s.uploadWhole(ctx, file, res.Size, res.Target)
		return res
	}

	res.Mode = models.UploadModeSession
	res.Chunks, res.Err = s.uploadChunked(ctx, file, path, res.Size, res.Target)
	return res
}

func (s *uploadService) uploadWhole(ctx context.Context, r io.Reader, size uint64, target string) error {
	content := make([]byte, size)
	if _, err := io.ReadFull(r, content); err != nil {
		return fmt.Errorf("%w: %v", ErrShortRead, err)
	}

	if err := s.storage.UploadWhole(ctx, content, target); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

// uploadChunked drives start, append and finish for one file. Chunks are read strictly in order
// into a single reused buffer; every chunk but the last is exactly chunkSize long.
func (s *uploadService) uploadChunked(ctx context.Context, r io.Reader, source string, size uint64, target string) (int, error) {
	buf := make([]byte, s.chunkSize)

	chunk, err := readChunk(r, buf, s.chunkSize)
	if err != nil {
		return 0, err
	}

	sessionID, err := s.storage.StartSession(ctx, target, chunk)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSessionStart, err)
	}
	chunks := 1

	now := time.Now()
	session := &models.UploadSession{
		ID:        sessionID,
		RemoteID:  sessionID,
		Source:    source,
		Target:    target,
		Size:      size,
		Status:    models.SessionStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := session.Advance(uint64(len(chunk))); err != nil {
		return chunks, s.abandon(ctx, session, err)
	}
	s.save(ctx, session)

	s.logger.Debug("сессия загрузки открыта",
		zap.String("session_id", sessionID),
		zap.String("target", target),
		zap.Uint64("size", size),
	)

	for session.Remaining() > s.chunkSize {
		chunk, err := readChunk(r, buf, s.chunkSize)
		if err != nil {
			return chunks, s.abandon(ctx, session, err)
		}

		if err := s.storage.AppendToSession(ctx, sessionID, session.Offset, chunk); err != nil {
			return chunks, s.abandon(ctx, session, fmt.Errorf("%w: %v", ErrSessionAppend, err))
		}
		chunks++

		if err := session.Advance(uint64(len(chunk))); err != nil {
			return chunks, s.abandon(ctx, session, err)
		}
		s.save(ctx, session)
	}

	chunk, err = readChunk(r, buf, session.Remaining())
	if err != nil {
		return chunks, s.abandon(ctx, session, err)
	}

	if err := s.storage.FinishSession(ctx, sessionID, session.Offset, chunk, target); err != nil {
		return chunks, s.abandon(ctx, session, fmt.Errorf("%w: %v", ErrSessionFinish, err))
	}
	chunks++

	if err := session.Advance(uint64(len(chunk))); err != nil {
		return chunks, err
	}
	if err := session.Close(models.SessionStatusCommitted, nil); err != nil {
		return chunks, err
	}
	s.save(ctx, session)

	return chunks, nil
}

// abandon closes an open session after a failure and asks the backend to drop it.
func (s *uploadService) abandon(ctx context.Context, session *models.UploadSession, cause error) error {
	status := models.SessionStatusCancelled

	if err := s.storage.CancelSession(ctx, session.ID); err != nil {
		status = models.SessionStatusFailed
		s.logger.Warn("не удалось отменить сессию загрузки",
			zap.String("session_id", session.ID),
			zap.Uint64("offset", session.Offset),
			zap.Error(err),
		)
	}

	if err := session.Close(status, cause); err == nil {
		s.save(ctx, session)
	}

	return cause
}

func (s *uploadService) save(ctx context.Context, session *models.UploadSession) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.SaveSession(ctx, session); err != nil {
		s.logger.Warn("не удалось сохранить состояние сессии",
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
	}
}

func readChunk(r io.Reader, buf []byte, n uint64) ([]byte, error) {
	chunk := buf[:n]
	if _, err := io.ReadFull(r, chunk); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShortRead, err)
	}
	return chunk, nil
}
