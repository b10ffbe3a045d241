package http

import (
	"net/http"
	"time"

	"boxrental-backend/internal/config"
	"boxrental-backend/internal/logger"
	"boxrental-backend/internal/metrics"
	"boxrental-backend/internal/security"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const requestIDHeader = "X-Request-ID"

// requestID tags each request with an id, reusing a well-formed inbound one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(withRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tmpl, err := route.GetPathTemplate(); err == nil {
			return tmpl
		}
	}
	return "unmatched"
}

func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := routeTemplate(r)
		metrics.RecordHTTPRequest(r.Method, route, rec.status, elapsed)
		logger.Debug("HTTP request", "method", r.Method, "route", route, "status", rec.status,
			"duration", elapsed, "requestID", RequestIDFrom(r.Context()))
	})
}

// authenticate resolves the caller from the Authorization header and enforces
// the route's security level. Public routes still get a principal when a
// valid token is sent.
func authenticate(gate *security.Gate) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			level := config.GetSecurityLevel(r.Method, routeTemplate(r))
			header := r.Header.Get("Authorization")

			if level == config.SecurityPublic {
				if header != "" {
					if p, err := gate.ResolvePrincipal(header); err == nil {
						r = r.WithContext(withPrincipal(r.Context(), p))
					}
				}
				next.ServeHTTP(w, r)
				return
			}

			p, err := gate.ResolvePrincipal(header)
			if err != nil {
				respondError(w, r, err)
				return
			}
			if err := security.Require(p, level.RequiredLevel()); err != nil {
				respondError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withPrincipal(r.Context(), p)))
		})
	}
}
