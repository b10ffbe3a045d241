package http

import (
	"fmt"
	"net/http"
	"strconv"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/service"
)

type LogHandler struct {
	auditSvc service.AuditService
}

func NewLogHandler(auditSvc service.AuditService) *LogHandler {
	return &LogHandler{auditSvc: auditSvc}
}

// ListLogs serves GET /logs?limit=N.
func (h *LogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	var limit int32
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || n <= 0 {
			respondError(w, r, fmt.Errorf("%w: limit must be a positive integer", domain.ErrInvalidRequest))
			return
		}
		limit = int32(n)
	}
	entries, err := h.auditSvc.ListLogs(r.Context(), PrincipalFrom(r.Context()), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entries)
}
