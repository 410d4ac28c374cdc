package infra

import (
	"context"

	"github.com/sunr3d/project-backup/models"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.2 --name=SessionStore --output=../../../mocks
type SessionStore interface {
	SaveSession(ctx context.Context, session *models.UploadSession) error
	GetSession(ctx context.Context, id string) (*models.UploadSession, error)
	CountOpenSessions(ctx context.Context) (int, error)
	DeleteSession(ctx context.Context, id string) error
}
