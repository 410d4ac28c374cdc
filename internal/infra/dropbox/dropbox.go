package dropbox

import (
	"bytes"
	"context"
	"fmt"
	"io"

	sdk "github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox"
	"github.com/dropbox/dropbox-sdk-go-unofficial/v6/dropbox/files"
	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/infra"
)

var _ infra.RemoteStorage = (*dropboxStorage)(nil)

// filesAPI is the subset of files.Client used here.
type filesAPI interface {
	Upload(arg *files.UploadArg, content io.Reader) (*files.FileMetadata, error)
	UploadSessionStart(arg *files.UploadSessionStartArg, content io.Reader) (*files.UploadSessionStartResult, error)
	UploadSessionAppendV2(arg *files.UploadSessionAppendArg, content io.Reader) error
	UploadSessionFinish(arg *files.UploadSessionFinishArg, content io.Reader) (*files.FileMetadata, error)
}

type dropboxStorage struct {
	api    filesAPI
	logger *zap.Logger
}

func New(log *zap.Logger, token string) infra.RemoteStorage {
	client := files.New(sdk.Config{
		Token:    token,
		LogLevel: sdk.LogOff,
	})
	return newWithAPI(log, client)
}

func newWithAPI(log *zap.Logger, api filesAPI) *dropboxStorage {
	return &dropboxStorage{api: api, logger: log}
}

func (s *dropboxStorage) UploadWhole(ctx context.Context, content []byte, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	arg := files.NewUploadArg(path)
	arg.Mode = overwrite()

	if _, err := s.api.Upload(arg, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	return nil
}

func (s *dropboxStorage) StartSession(ctx context.Context, _ string, chunk []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	res, err := s.api.UploadSessionStart(files.NewUploadSessionStartArg(), bytes.NewReader(chunk))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSessionStart, err)
	}
	return res.SessionId, nil
}

func (s *dropboxStorage) AppendToSession(ctx context.Context, sessionID string, offset uint64, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	arg := files.NewUploadSessionAppendArg(files.NewUploadSessionCursor(sessionID, offset))
	if err := s.api.UploadSessionAppendV2(arg, bytes.NewReader(chunk)); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionAppend, err)
	}
	return nil
}

func (s *dropboxStorage) FinishSession(ctx context.Context, sessionID string, offset uint64, chunk []byte, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	commit := files.NewCommitInfo(path)
	commit.Mode = overwrite()
	arg := files.NewUploadSessionFinishArg(files.NewUploadSessionCursor(sessionID, offset), commit)

	if _, err := s.api.UploadSessionFinish(arg, bytes.NewReader(chunk)); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionFinish, err)
	}
	return nil
}

// CancelSession is a no-op: Dropbox has no endpoint for dropping an upload session
// and expires unfinished sessions on its side.
func (s *dropboxStorage) CancelSession(_ context.Context, sessionID string) error {
	s.logger.Info("сессия Dropbox оставлена на истечение срока",
		zap.String("session_id", sessionID),
	)
	return nil
}

func overwrite() *files.WriteMode {
	return &files.WriteMode{Tagged: sdk.Tagged{Tag: files.WriteModeOverwrite}}
}
