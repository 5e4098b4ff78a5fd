package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// TokenTypeAccess is the only token type this backend issues.
	TokenTypeAccess = "access"

	// HasuraClaimsKey namespaces the claims the hosted data layer reads.
	HasuraClaimsKey = "https://hasura.io/jwt/claims"
)

var ErrSecretNotConfigured = errors.New("JWT secret not configured")

// Identity is the subset of a user that ends up inside a token.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  string
}

// Claims is the decoded form of an access token.
type Claims struct {
	Identity
	TokenID   string
	ExpiresAt time.Time
}

// TokenManager signs and validates HS256 tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a manager; ttl is the access token lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// HasuraClaims builds the namespaced role claims for id.
func HasuraClaims(id Identity) map[string]interface{} {
	return map[string]interface{}{
		"x-hasura-allowed-roles": []string{id.Role},
		"x-hasura-default-role":  id.Role,
		"x-hasura-user-id":       id.ID,
	}
}

// Issue signs a new access token for id.
func (m *TokenManager) Issue(id Identity) (string, *Claims, error) {
	if len(m.secret) == 0 {
		return "", nil, ErrSecretNotConfigured
	}

	now := m.now()
	claims := &Claims{
		Identity:  id,
		TokenID:   uuid.NewString(),
		ExpiresAt: now.Add(m.ttl),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":           id.ID,
		"name":          id.Name,
		"email":         id.Email,
		"role":          id.Role,
		"typ":           TokenTypeAccess,
		"jti":           claims.TokenID,
		"iat":           now.Unix(),
		"exp":           claims.ExpiresAt.Unix(),
		HasuraClaimsKey: HasuraClaims(id),
	})
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims, nil
}

// ParseAndValidateToken parses a JWT token string and returns its claims.
// If expectedType is non-empty, the claim "typ" must match it.
func (m *TokenManager) ParseAndValidateToken(tokenStr, expectedType string) (*Claims, error) {
	if len(m.secret) == 0 {
		return nil, ErrSecretNotConfigured
	}

	parser := jwt.Parser{ValidMethods: []string{jwt.SigningMethodHS256.Alg()}}
	token, err := parser.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || token == nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	mc, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if expectedType != "" {
		if typ, ok := mc["typ"].(string); !ok || typ != expectedType {
			return nil, fmt.Errorf("invalid token type")
		}
	}

	claims := &Claims{
		Identity: Identity{
			ID:    stringClaim(mc, "sub"),
			Name:  stringClaim(mc, "name"),
			Email: stringClaim(mc, "email"),
			Role:  stringClaim(mc, "role"),
		},
		TokenID: stringClaim(mc, "jti"),
	}
	if exp, ok := mc["exp"].(float64); ok {
		claims.ExpiresAt = time.Unix(int64(exp), 0)
	}
	if claims.ID == "" || claims.Role == "" {
		return nil, fmt.Errorf("token missing subject or role")
	}
	return claims, nil
}

func stringClaim(mc jwt.MapClaims, key string) string {
	s, _ := mc[key].(string)
	return s
}
