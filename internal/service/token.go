package service

import (
	"time"

	"github.com/forgo/jobtrack/internal/model"
	"github.com/forgo/jobtrack/pkg/jwt"
)

// TokenService issues and verifies session tokens
type TokenService struct {
	jwtService *jwt.Service
}

// TokenServiceConfig holds configuration for the token service
type TokenServiceConfig struct {
	JWTService *jwt.Service
}

// NewTokenService creates a new token service
func NewTokenService(cfg TokenServiceConfig) *TokenService {
	return &TokenService{
		jwtService: cfg.JWTService,
	}
}

// Issue creates a session token for the user
func (s *TokenService) Issue(user *model.User) (string, error) {
	return s.jwtService.Sign(user.ID, user.Name)
}

// Verify checks a session token and returns the identity it carries.
// Every failure is reported as ErrInvalidToken.
func (s *TokenService) Verify(token string) (*model.TokenClaims, error) {
	claims, err := s.jwtService.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	return &model.TokenClaims{
		UserID: claims.UserID,
		Name:   claims.Name,
	}, nil
}

// Lifetime returns how long issued tokens stay valid
func (s *TokenService) Lifetime() time.Duration {
	return s.jwtService.GetExpiration()
}
