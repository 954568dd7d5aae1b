package service

import (
	"time"

	"github.com/trugen/triage-service/internal/auth"
	"github.com/trugen/triage-service/internal/config"
	apperrors "github.com/trugen/triage-service/pkg/util/errorutil"
)

// AuthService issues admin tokens. The admin password hash is provisioned
// through configuration; there is no account management.
type AuthService struct {
	tokens            *auth.TokenManager
	adminPasswordHash string
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig) *AuthService {
	return &AuthService{
		tokens:            auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		adminPasswordHash: cfg.AdminPasswordHash,
	}
}

// AdminLogin verifies the admin password and returns a signed token.
func (s *AuthService) AdminLogin(password string) (string, time.Time, error) {
	if s.adminPasswordHash == "" {
		return "", time.Time{}, apperrors.NewUnauthorized("admin access not configured")
	}
	if err := auth.ComparePassword(s.adminPasswordHash, password); err != nil {
		return "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.tokens.GenerateToken("admin")
}

// TokenManager exposes the token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}
