package security

import (
	"fmt"
	"strings"

	"boxrental-backend/internal/domain"
)

// Gate resolves the acting principal of a request from its bearer token.
type Gate struct {
	tokens TokenManager
}

func NewGate(tokens TokenManager) *Gate {
	return &Gate{tokens: tokens}
}

// ResolvePrincipal accepts a raw token or an "Authorization" header value.
func (g *Gate) ResolvePrincipal(credential string) (domain.Principal, error) {
	token := strings.TrimSpace(credential)
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token == "" {
		return domain.Principal{}, fmt.Errorf("%w: token not provided", domain.ErrUnauthenticated)
	}

	claims, err := g.tokens.ValidateToken(token)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}
	return domain.Principal{ID: claims.UserID, Level: claims.Level}, nil
}

// Require fails with ErrForbidden when p is below level.
func Require(p domain.Principal, level int16) error {
	if !p.AtLeast(level) {
		return fmt.Errorf("%w: permission level %d required", domain.ErrForbidden, level)
	}
	return nil
}
