package auth

import (
	"fmt"
	"time"

	"github.com/gatherly/server/internal/shared/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims represents JWT token claims for a platform actor.
type Claims struct {
	jwt.RegisteredClaims
	ActorID   uuid.UUID `json:"actor_id"`
	ActorType string    `json:"actor_type"` // community, venue, brand
	ActorName string    `json:"actor_name"`
	Admin     bool      `json:"admin"`
}

// Config holds JWT configuration.
type Config struct {
	Secret      string
	TokenExpiry time.Duration
	Issuer      string
}

// DefaultConfig returns default JWT configuration.
func DefaultConfig() *Config {
	return &Config{
		TokenExpiry: 24 * time.Hour,
		Issuer:      "gatherly",
	}
}

// TokenManager handles JWT token operations.
type TokenManager struct {
	config *Config
}

// NewTokenManager creates a new token manager.
func NewTokenManager(config *Config) *TokenManager {
	if config == nil {
		config = DefaultConfig()
	}
	return &TokenManager{config: config}
}

// Issue generates a signed token for the given actor.
func (m *TokenManager) Issue(actorID uuid.UUID, actorType, actorName string, admin bool) (string, time.Time, error) {
	expiresAt := time.Now().Add(m.config.TokenExpiry)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.config.Issuer,
			Subject:   actorID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			ID:        uuid.New().String(),
		},
		ActorID:   actorID,
		ActorType: actorType,
		ActorName: actorName,
		Admin:     admin,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString([]byte(m.config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signedToken, expiresAt, nil
}

// Validate validates a token and returns its claims.
func (m *TokenManager) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})

	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidTokenClaims
	}

	return claims, nil
}

// ValidateToken implements middleware.TokenValidator.
func (m *TokenManager) ValidateToken(tokenString string) (*middleware.Actor, error) {
	claims, err := m.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return &middleware.Actor{
		ID:    claims.ActorID,
		Type:  claims.ActorType,
		Name:  claims.ActorName,
		Admin: claims.Admin,
	}, nil
}
