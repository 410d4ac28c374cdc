package infra

import "context"

// RemoteStorage is the capability set the chunked uploader needs from an object store.
// All writes use overwrite semantics. Chunk slices are reused by the caller and must not be
// retained after a call returns. Offsets count the bytes already accepted by the session.
//
//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=RemoteStorage --output=../../../mocks
type RemoteStorage interface {
	UploadWhole(ctx context.Context, content []byte, path string) error

	StartSession(ctx context.Context, path string, chunk []byte) (string, error)
	AppendToSession(ctx context.Context, sessionID string, offset uint64, chunk []byte) error
	FinishSession(ctx context.Context, sessionID string, offset uint64, chunk []byte, path string) error
	CancelSession(ctx context.Context, sessionID string) error
}
