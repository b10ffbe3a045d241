package service

import (
	"context"
	"fmt"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
	"boxrental-backend/internal/security"
)

const (
	DefaultLogLimit int32 = 100
	MaxLogLimit     int32 = 1000
)

type auditService struct {
	logRepo repository.LogRepository
}

func NewAuditService(logRepo repository.LogRepository) AuditService {
	return &auditService{logRepo: logRepo}
}

// ListLogs returns the newest audit entries first. Only administrators may
// read the audit trail.
func (s *auditService) ListLogs(ctx context.Context, actor domain.Principal, limit int32) ([]domain.LogEntry, error) {
	if err := security.Require(actor, domain.LevelAdmin); err != nil {
		return nil, fmt.Errorf("%w: only level 3 users can read the audit log", domain.ErrForbidden)
	}
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		return nil, fmt.Errorf("%w: limit must be at most %d", domain.ErrInvalidRequest, MaxLogLimit)
	}
	entries, err := s.logRepo.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []domain.LogEntry{}
	}
	return entries, nil
}
