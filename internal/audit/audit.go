// Package audit records who did what. Recording is best effort: callers log
// failures and carry on.
package audit

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
)

type Sink interface {
	Record(ctx context.Context, actorID int32, action string) error
}

type storeSink struct {
	logs repository.LogRepository
}

// NewStoreSink persists audit records as log entries. actorID 0 is stored as
// an anonymous entry.
func NewStoreSink(logs repository.LogRepository) Sink {
	return &storeSink{logs: logs}
}

func (s *storeSink) Record(ctx context.Context, actorID int32, action string) error {
	entry := &domain.LogEntry{Action: action}
	if actorID > 0 {
		id := actorID
		entry.UserID = &id
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return fmt.Errorf("%w: audit: %v", domain.ErrDeliveryFailure, err)
	}
	return nil
}
