package models

import (
	"errors"
	"fmt"
	"time"
)

type SessionStatus string

const (
	SessionStatusOpen      SessionStatus = "open"
	SessionStatusCommitted SessionStatus = "committed"
	SessionStatusFailed    SessionStatus = "failed"
	SessionStatusCancelled SessionStatus = "cancelled"
)

var (
	ErrSessionTerminal = errors.New("сессия загрузки завершена и не может быть использована повторно")
	ErrOffsetOverflow  = errors.New("смещение превышает размер файла")
)

// UploadSession tracks one chunked upload from the first chunk until commit.
// Offset never exceeds Size.
type UploadSession struct {
	ID        string        `json:"id"`
	RemoteID  string        `json:"remote_id"`
	Source    string        `json:"source"`
	Target    string        `json:"target"`
	Offset    uint64        `json:"offset"`
	Size      uint64        `json:"size"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Error     string        `json:"error,omitempty"`
}

func (s *UploadSession) Terminal() bool {
	return s.Status != SessionStatusOpen
}

func (s *UploadSession) Advance(n uint64) error {
	if s.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionTerminal, s.Status)
	}
	if s.Offset+n > s.Size {
		return fmt.Errorf("%w: %d+%d > %d", ErrOffsetOverflow, s.Offset, n, s.Size)
	}
	s.Offset += n
	s.UpdatedAt = time.Now()
	return nil
}

func (s *UploadSession) Remaining() uint64 {
	return s.Size - s.Offset
}

// Close moves an open session into a terminal status. Closing a terminal session is an error.
func (s *UploadSession) Close(status SessionStatus, cause error) error {
	if s.Terminal() {
		return fmt.Errorf("%w: %s", ErrSessionTerminal, s.Status)
	}
	s.Status = status
	s.UpdatedAt = time.Now()
	if cause != nil {
		s.Error = cause.Error()
	}
	return nil
}
