package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/notify"
	"boxrental-backend/internal/occupancy"
	"boxrental-backend/internal/repository/memory"
	"boxrental-backend/internal/security"
	"boxrental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-at-least-32-characters"

type fixture struct {
	store  *memory.Store
	tokens security.TokenManager
	router http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager(testSecret, time.Hour)
	sink := audit.NewStoreSink(store.Logs)
	engine := occupancy.NewEngine(store.Boxes, store.Rentals, store, domain.DeletePolicyReleaseIfActive)

	svcs := Services{
		Rentals:  service.NewRentalService(engine, nil),
		Boxes:    service.NewBoxService(store.Boxes, store),
		Clients:  service.NewClientService(store.Clients, store, notify.NewLogNotifier(), sink),
		Payments: service.NewPaymentService(store.Payments),
		Users:    service.NewUserService(store.Users, tokens, sink),
		Logs:     service.NewAuditService(store.Logs),
	}
	return &fixture{
		store:  store,
		tokens: tokens,
		router: NewRouter(svcs, security.NewGate(tokens), 0),
	}
}

func (f *fixture) seedBox(t *testing.T, number int32) *domain.Box {
	t.Helper()
	box := &domain.Box{Number: number, MonthlyPriceCents: 15000}
	require.NoError(t, f.store.Boxes.Create(context.Background(), box))
	return box
}

func (f *fixture) seedClient(t *testing.T) *domain.Client {
	t.Helper()
	client := &domain.Client{Name: "Maria Silva", Phone: "11999990000", Email: "maria@example.com", Plate: "ABC1D23"}
	require.NoError(t, f.store.Clients.Create(context.Background(), client))
	return client
}

func (f *fixture) token(t *testing.T, userID int32, level int16) string {
	t.Helper()
	tok, err := f.tokens.GenerateAccessToken(userID, level)
	require.NoError(t, err)
	return "Bearer " + tok
}

func (f *fixture) do(t *testing.T, method, path string, body any, auth string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestRentalRoutes(t *testing.T) {
	f := newFixture(t)
	box := f.seedBox(t, 5)
	client := f.seedClient(t)

	rec := f.do(t, http.MethodPost, "/rentals", map[string]int32{"clientId": client.ID, "boxId": box.ID}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rental := decode[domain.Rental](t, rec)
	assert.True(t, rental.Active)
	assert.Equal(t, box.ID, rental.BoxID)
	assert.Nil(t, rental.EndedAt)

	t.Run("Open on occupied box is a 400", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/rentals", map[string]int32{"clientId": client.ID, "boxId": box.ID}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		body := decode[errorResponse](t, rec)
		assert.Equal(t, "INVALID_REQUEST", body.Code)
		assert.Contains(t, body.Error, "box invalid or already occupied")
	})

	t.Run("Open with missing ids is a 400", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/rentals", map[string]int32{"boxId": box.ID}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("List includes client and box", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/rentals", nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		rentals := decode[[]domain.Rental](t, rec)
		require.Len(t, rentals, 1)
		require.NotNil(t, rentals[0].Box)
		require.NotNil(t, rentals[0].Client)
		assert.Equal(t, int32(5), rentals[0].Box.Number)
		assert.Equal(t, "Maria Silva", rentals[0].Client.Name)
	})

	t.Run("Close then close again", func(t *testing.T) {
		path := fmt.Sprintf("/rentals/close/%d", rental.ID)
		rec := f.do(t, http.MethodPut, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		closed := decode[domain.Rental](t, rec)
		assert.False(t, closed.Active)
		assert.NotNil(t, closed.EndedAt)

		got, err := f.store.Boxes.GetByID(context.Background(), box.ID)
		require.NoError(t, err)
		assert.False(t, got.Occupied)

		rec = f.do(t, http.MethodPut, path, nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Delete then delete again", func(t *testing.T) {
		path := fmt.Sprintf("/rentals/%d", rental.ID)
		rec := f.do(t, http.MethodDelete, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "rental deleted", decode[messageResponse](t, rec).Message)

		rec = f.do(t, http.MethodDelete, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).Code)
	})

	t.Run("Non numeric id is a 400", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, "/rentals/abc", nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestBoxRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/boxes", map[string]int64{"number": 12, "monthlyPriceCents": 20000}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	box := decode[domain.Box](t, rec)
	assert.False(t, box.Occupied)

	t.Run("Duplicate number", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/boxes", map[string]int64{"number": 12, "monthlyPriceCents": 20000}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Unknown fields are rejected", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/boxes", map[string]any{"number": 13, "monthlyPriceCents": 1, "occupied": true}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Occupied box cannot be deleted", func(t *testing.T) {
		client := f.seedClient(t)
		rec := f.do(t, http.MethodPost, "/rentals", map[string]int32{"clientId": client.ID, "boxId": box.ID}, "")
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = f.do(t, http.MethodDelete, fmt.Sprintf("/boxes/%d", box.ID), nil, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestClientRoutesRequireAuth(t *testing.T) {
	f := newFixture(t)
	client := f.seedClient(t)

	t.Run("No token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/clients", nil, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHENTICATED", decode[errorResponse](t, rec).Code)
	})

	t.Run("Garbage token", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/clients", nil, "Bearer not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Operator can list", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/clients", nil, f.token(t, 1, domain.LevelOperator))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]domain.Client](t, rec), 1)
	})

	t.Run("Operator cannot delete", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, fmt.Sprintf("/clients/%d", client.ID), nil, f.token(t, 1, domain.LevelManager))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Admin deletes", func(t *testing.T) {
		rec := f.do(t, http.MethodDelete, fmt.Sprintf("/clients/%d", client.ID), nil, f.token(t, 1, domain.LevelAdmin))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Create validates", func(t *testing.T) {
		body := map[string]string{"name": "Jo", "phone": "123", "email": "x", "plate": "A"}
		rec := f.do(t, http.MethodPost, "/clients", body, f.token(t, 1, domain.LevelOperator))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLogRoutes(t *testing.T) {
	f := newFixture(t)
	f.seedClient(t)
	operator := f.token(t, 2, domain.LevelOperator)
	admin := f.token(t, 1, domain.LevelAdmin)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/clients", nil, operator).Code)

	t.Run("Requires a token", func(t *testing.T) {
		assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/logs", nil, "").Code)
	})

	t.Run("Requires admin", func(t *testing.T) {
		assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/logs", nil, operator).Code)
	})

	t.Run("Admin reads newest first", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/logs?limit=5", nil, admin)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		entries := decode[[]domain.LogEntry](t, rec)
		require.Len(t, entries, 1)
		assert.Equal(t, "Listed clients", entries[0].Action)
		require.NotNil(t, entries[0].UserID)
		assert.Equal(t, int32(2), *entries[0].UserID)
	})

	t.Run("Bad limit", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/logs?limit=abc", nil, admin).Code)
		assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodGet, "/logs?limit=5000", nil, admin).Code)
	})
}

func TestUserRoutes(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/users", map[string]any{
		"name": "Admin", "email": "admin@example.com", "password": "Adm1n#Pass", "level": 3,
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "Adm1n#Pass")

	t.Run("Weak password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users", map[string]any{
			"name": "Weak", "email": "weak@example.com", "password": "password",
		}, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Login issues a usable token", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users/login", map[string]string{
			"email": "admin@example.com", "password": "Adm1n#Pass",
		}, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		login := decode[loginResponse](t, rec)
		assert.NotEmpty(t, login.Token)
		assert.Contains(t, login.Message, "first access")

		rec = f.do(t, http.MethodGet, "/clients", nil, "Bearer "+login.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Wrong password", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/users/login", map[string]string{
			"email": "admin@example.com", "password": "Wr0ng#Pass",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestLoginRateLimit(t *testing.T) {
	store := memory.NewStore()
	tokens := security.NewTokenManager(testSecret, time.Hour)
	router := NewRouter(Services{
		Users: service.NewUserService(store.Users, tokens, nil),
	}, security.NewGate(tokens), 2)

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/users/login",
			bytes.NewBufferString(`{"email":"nobody@example.com","password":"x"}`))
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		last = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestRequestIDAndHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrInvalidRequest))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(domain.ErrTransactionFailure))
	assert.Equal(t, http.StatusBadGateway, statusFor(domain.ErrDeliveryFailure))
	assert.Equal(t, http.StatusUnauthorized, statusFor(domain.ErrUnauthenticated))
	assert.Equal(t, http.StatusForbidden, statusFor(domain.ErrForbidden))
	assert.Equal(t, http.StatusInternalServerError, statusFor(fmt.Errorf("boom")))
}

func TestRespondErrorHidesStoreDetail(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "Transaction failure",
			err:     fmt.Errorf("%w: connection reset by peer on relation \"boxes\"", domain.ErrTransactionFailure),
			status:  http.StatusConflict,
			message: "transaction failed, please retry",
		},
		{
			name:    "Unclassified",
			err:     fmt.Errorf("pq: relation \"boxes\" does not exist"),
			status:  http.StatusInternalServerError,
			message: "internal server error",
		},
		{
			name:    "Precondition keeps its message",
			err:     fmt.Errorf("%w: box invalid or already occupied", domain.ErrInvalidRequest),
			status:  http.StatusBadRequest,
			message: "invalid request: box invalid or already occupied",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respondError(rec, httptest.NewRequest(http.MethodPost, "/rentals", nil), tt.err)
			assert.Equal(t, tt.status, rec.Code)
			body := decode[errorResponse](t, rec)
			assert.Equal(t, tt.message, body.Error)
			assert.NotContains(t, rec.Body.String(), "boxes")
		})
	}
}
