package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sunr3d/project-backup/internal/interfaces/infra"
	"github.com/sunr3d/project-backup/models"
)

var _ infra.SessionStore = (*inmemDB)(nil)

type inmemDB struct {
	logger *zap.Logger
	db     map[string]*models.UploadSession
	mu     sync.RWMutex
	ttl    time.Duration
}

func New(log *zap.Logger, ttl time.Duration) infra.SessionStore {
	return &inmemDB{
		logger: log,
		db:     make(map[string]*models.UploadSession),
		ttl:    ttl,
	}
}

func (db *inmemDB) SaveSession(ctx context.Context, session *models.UploadSession) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if session == nil {
		return ErrSessionNil
	}

	if session.ID == "" {
		return ErrSessionIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	stored := *session
	db.db[session.ID] = &stored
	db.logger.Debug("сессия сохранена",
		zap.String("session_id", session.ID),
		zap.String("status", string(session.Status)),
		zap.Uint64("offset", session.Offset),
	)

	return nil
}

func (db *inmemDB) GetSession(ctx context.Context, id string) (*models.UploadSession, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return nil, ErrSessionIDEmpty
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	session, exists := db.db[id]
	if !exists {
		return nil, ErrSessionNotFound
	}

	out := *session
	return &out, nil
}

// CountOpenSessions also evicts open sessions not touched within the TTL.
func (db *inmemDB) CountOpenSessions(ctx context.Context) (int, error) {
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	count := 0
	now := time.Now()

	for id, session := range db.db {
		if session.Status != models.SessionStatusOpen {
			continue
		}
		if db.ttl > 0 && now.Sub(session.UpdatedAt) > db.ttl {
			delete(db.db, id)
			db.logger.Info("сессия удалена по TTL", zap.String("session_id", id))
			continue
		}
		count++
	}

	return count, nil
}

func (db *inmemDB) DeleteSession(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %v", ErrContextDone, ctx.Err())
	default:
	}

	if id == "" {
		return ErrSessionIDEmpty
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.db[id]; !exists {
		return ErrSessionNotFound
	}

	delete(db.db, id)
	db.logger.Debug("сессия удалена", zap.String("session_id", id))

	return nil
}
