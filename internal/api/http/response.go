package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/logger"

	"github.com/gorilla/mux"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logger.Warn("Failed to write JSON response", "error", err)
	}
}

// respondError writes the error payload with the status its kind maps to.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := domain.ErrorCode(err)
	message := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "requestID", RequestIDFrom(r.Context()), "error", err)
		message = "internal server error"
	case http.StatusConflict:
		// Store failures carry driver detail; the client only needs to retry.
		logger.ErrorContext(r.Context(), "Transaction failed", "path", r.URL.Path, "requestID", RequestIDFrom(r.Context()), "error", err)
		message = "transaction failed, please retry"
	}
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrTransactionFailure):
		return http.StatusConflict
	case errors.Is(err, domain.ErrDeliveryFailure):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// decodeJSON reads a single JSON object into dst. Unknown fields are rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidRequest, err)
	}
	return nil
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer", domain.ErrInvalidRequest)
	}
	return int32(id), nil
}
