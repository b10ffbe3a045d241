package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"boxrental-backend/internal/audit"
	"boxrental-backend/internal/domain"
	"boxrental-backend/internal/repository"
	"boxrental-backend/internal/security"
)

var (
	ErrWeakPassword       = fmt.Errorf("%w: password must have at least 8 characters with upper and lower case letters, digits and symbols", domain.ErrInvalidRequest)
	ErrInvalidLevel       = fmt.Errorf("%w: level must be 1, 2 or 3", domain.ErrInvalidRequest)
	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", domain.ErrUnauthenticated)
)

type userService struct {
	userRepo repository.UserRepository
	tokens   security.TokenManager
	audit    audit.Sink
}

func NewUserService(userRepo repository.UserRepository, tokens security.TokenManager, sink audit.Sink) UserService {
	return &userService{
		userRepo: userRepo,
		tokens:   tokens,
		audit:    sink,
	}
}

func validLevel(level int16) bool {
	return level >= domain.LevelOperator && level <= domain.LevelAdmin
}

// normalizeEmail makes addresses that differ only in case or surrounding
// space the same account.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) CreateUser(ctx context.Context, name, email, password string, level int16) (*domain.User, error) {
	if !security.ValidPassword(password) {
		return nil, ErrWeakPassword
	}
	if level == 0 {
		level = domain.LevelOperator
	}
	if !validLevel(level) {
		return nil, ErrInvalidLevel
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:         name,
		Email:        normalizeEmail(email),
		PasswordHash: hash,
		Level:        level,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.userRepo.List(ctx)
}

// Login returns an access token and a greeting that mentions the previous
// login, if any.
func (s *userService) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	if !security.CheckPassword(user.PasswordHash, password) {
		return "", "", ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Level)
	if err != nil {
		return "", "", err
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		return "", "", err
	}
	recordAudit(ctx, s.audit, user.ID, "Logged in")

	greeting := "Welcome! This is your first access."
	if user.LastLoginAt != nil {
		greeting = fmt.Sprintf("Welcome back! Your last login was on %s", user.LastLoginAt.Format("2006-01-02 15:04:05 MST"))
	}
	return token, greeting, nil
}

func (s *userService) ChangePassword(ctx context.Context, actor domain.Principal, current, next string) error {
	if actor.ID <= 0 {
		return fmt.Errorf("%w: user not authenticated", domain.ErrUnauthenticated)
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return err
	}
	if !security.CheckPassword(user.PasswordHash, current) {
		return fmt.Errorf("%w: current password is incorrect", domain.ErrUnauthenticated)
	}
	if !security.ValidPassword(next) {
		return ErrWeakPassword
	}

	hash, err := security.HashPassword(next)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	recordAudit(ctx, s.audit, user.ID, "Changed password")
	return nil
}

func (s *userService) PromoteUser(ctx context.Context, actor domain.Principal, userID int32, level int16) (*domain.User, error) {
	if err := security.Require(actor, domain.LevelAdmin); err != nil {
		return nil, fmt.Errorf("%w: only administrators can promote users", domain.ErrForbidden)
	}
	if !validLevel(level) {
		return nil, ErrInvalidLevel
	}
	if err := s.userRepo.UpdateLevel(ctx, userID, level); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	recordAudit(ctx, s.audit, actor.ID, fmt.Sprintf("Promoted user %d to level %d", userID, level))
	return user, nil
}
