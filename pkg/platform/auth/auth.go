// Package auth validates the bearer tokens issued by the identity service.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Config holds signer verification parameters shared by backend services.
type Config struct {
	Secret string
	Issuer string
}

// Claims is the normalized view of a verified token. UserID is the token subject
// and owns every record read or written on behalf of the request.
type Claims struct {
	UserID    string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// ErrMissingToken is returned when the Authorization header is absent.
var ErrMissingToken = errors.New("missing bearer token")

// ErrInvalidToken wraps parsing/validation errors.
var ErrInvalidToken = errors.New("invalid bearer token")

// Parse validates a JWT and returns normalized claims.
func Parse(token string, cfg Config) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		return nil, ErrInvalidToken
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("%w: missing expiry", ErrInvalidToken)
	}

	return &Claims{
		UserID:    subject,
		Scopes:    normalizeScopes(claims["scopes"]),
		ExpiresAt: exp.Time,
	}, nil
}

// Issue signs a short-lived HS256 token. Used by local tooling and tests; production
// tokens come from the identity service.
func Issue(cfg Config, userID string, scopes []string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    userID,
		"iss":    cfg.Issuer,
		"iat":    now.Unix(),
		"exp":    now.Add(ttl).Unix(),
		"scopes": strings.Join(scopes, " "),
	})
	return token.SignedString([]byte(cfg.Secret))
}

func normalizeScopes(value interface{}) map[string]struct{} {
	out := make(map[string]struct{})
	switch v := value.(type) {
	case []interface{}:
		for _, item := range v {
			if str, ok := item.(string); ok && str != "" {
				out[str] = struct{}{}
			}
		}
	case []string:
		for _, str := range v {
			if str != "" {
				out[str] = struct{}{}
			}
		}
	case string:
		for _, str := range strings.Fields(v) {
			out[str] = struct{}{}
		}
	}
	return out
}

// HasScope reports whether the claim set includes the provided scope.
func (c *Claims) HasScope(scope string) bool {
	if c == nil {
		return false
	}
	_, ok := c.Scopes[scope]
	return ok
}

// HasAnyScope reports whether at least one of the scopes is granted.
func (c *Claims) HasAnyScope(scopes ...string) bool {
	for _, scope := range scopes {
		if c.HasScope(scope) {
			return true
		}
	}
	return false
}
