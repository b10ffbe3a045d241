// config/security_config.go
package config

import "boxrental-backend/internal/domain"

type SecurityLevel int

const (
	SecurityPublic        SecurityLevel = iota // No authentication
	SecurityAuthenticated                      // Valid access token required
	SecurityAdmin                              // Access token with level 3 required
)

// RouteSecurity maps "METHOD /route-template" to its required security level.
// Routes that are not listed are public.
var RouteSecurity = map[string]SecurityLevel{
	// Clients - Authenticated
	"GET /clients":            SecurityAuthenticated,
	"POST /clients":           SecurityAuthenticated,
	"PUT /clients/{id}":       SecurityAuthenticated,
	"GET /clients/email/{id}": SecurityAuthenticated,
	// Clients - Admin
	"DELETE /clients/{id}": SecurityAdmin,

	// Users
	"POST /users/change-password": SecurityAuthenticated,
	"PATCH /users/{id}/promote":   SecurityAdmin,

	// Audit log
	"GET /logs": SecurityAdmin,
}

// GetSecurityLevel returns the security level for a route, defaulting to public
func GetSecurityLevel(method, routeTemplate string) SecurityLevel {
	if level, ok := RouteSecurity[method+" "+routeTemplate]; ok {
		return level
	}
	return SecurityPublic
}

// RequiredLevel returns the permission level a security level demands.
func (l SecurityLevel) RequiredLevel() int16 {
	if l == SecurityAdmin {
		return domain.LevelAdmin
	}
	return 0
}
