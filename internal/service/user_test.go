package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository/memory"
	"boxrental-backend/internal/security"
	"boxrental-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const strongPassword = "Str0ng!pass"

func newUserService(t *testing.T) (service.UserService, *memory.Store, security.TokenManager) {
	t.Helper()
	store := memory.NewStore()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	return service.NewUserService(store.Users, tokens, nil), store, tokens
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", strongPassword, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelOperator, user.Level)
	assert.NotEqual(t, strongPassword, user.PasswordHash)

	_, err = svc.CreateUser(ctx, "Bia", "bia@example.com", "weak", 1)
	assert.ErrorIs(t, err, service.ErrWeakPassword)

	_, err = svc.CreateUser(ctx, "Caio", "caio@example.com", strongPassword, 9)
	assert.ErrorIs(t, err, service.ErrInvalidLevel)

	_, err = svc.CreateUser(ctx, "Ana Again", "ANA@example.com", strongPassword, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserService_Login(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	tokens := security.NewTokenManager("0123456789abcdef0123456789abcdef", time.Hour)
	sink := new(MockSink)
	sink.On("Record", mock.Anything, mock.Anything, "Logged in").Return(nil)
	svc := service.NewUserService(store.Users, tokens, sink)

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", strongPassword, domain.LevelManager)
	require.NoError(t, err)

	token, greeting, err := svc.Login(ctx, "ana@example.com", strongPassword)
	require.NoError(t, err)
	assert.Equal(t, "Welcome! This is your first access.", greeting)

	claims, err := tokens.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.LevelManager, claims.Level)

	_, greeting, err = svc.Login(ctx, "ana@example.com", strongPassword)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(greeting, "Welcome back! Your last login was on "), greeting)

	_, _, err = svc.Login(ctx, "ana@example.com", "Wr0ng!pass")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", strongPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	assert.Equal(t, "UNAUTHENTICATED", domain.ErrorCode(err))

	sink.AssertNumberOfCalls(t, "Record", 2)
}

func TestUserService_ChangePassword(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", strongPassword, 1)
	require.NoError(t, err)
	actor := domain.Principal{ID: user.ID, Level: user.Level}

	err = svc.ChangePassword(ctx, actor, "Wr0ng!pass", "N3w!password")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	err = svc.ChangePassword(ctx, actor, strongPassword, "short")
	assert.ErrorIs(t, err, service.ErrWeakPassword)

	require.NoError(t, svc.ChangePassword(ctx, actor, strongPassword, "N3w!password"))

	_, _, err = svc.Login(ctx, "ana@example.com", strongPassword)
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "ana@example.com", "N3w!password")
	assert.NoError(t, err)

	err = svc.ChangePassword(ctx, domain.Principal{}, strongPassword, "N3w!password")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestUserService_PromoteUser(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	user, err := svc.CreateUser(ctx, "Ana", "ana@example.com", strongPassword, 1)
	require.NoError(t, err)

	_, err = svc.PromoteUser(ctx, operator, user.ID, domain.LevelAdmin)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.PromoteUser(ctx, admin, user.ID, 4)
	assert.ErrorIs(t, err, service.ErrInvalidLevel)

	promoted, err := svc.PromoteUser(ctx, admin, user.ID, domain.LevelManager)
	require.NoError(t, err)
	assert.Equal(t, domain.LevelManager, promoted.Level)

	_, err = svc.PromoteUser(ctx, admin, 99, domain.LevelManager)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserService_EmailIgnoresCase(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newUserService(t)

	user, err := svc.CreateUser(ctx, "Ana", " Ana@Example.com", strongPassword, 1)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", user.Email)

	_, err = svc.CreateUser(ctx, "Ana Two", "ana@EXAMPLE.com", strongPassword, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, _, err = svc.Login(ctx, "ANA@example.com ", strongPassword)
	assert.NoError(t, err)
}
