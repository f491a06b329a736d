package auth

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Skipper allows callers to bypass authentication for specific requests.
type Skipper func(r *http.Request) bool

// Middleware provides HTTP middleware for bearer-token validation.
type Middleware struct {
	Config  Config
	Skipper Skipper
}

// NewMiddleware constructs a middleware with optional skipper.
func NewMiddleware(cfg Config, skipper Skipper) Middleware {
	return Middleware{Config: cfg, Skipper: skipper}
}

// Wrap wraps an http.Handler with authentication.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions || (m.Skipper != nil && m.Skipper(r)) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.parseRequest(r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"type": "unauthorized", "detail": err.Error()})
			return
		}
		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

func (m Middleware) parseRequest(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, ErrMissingToken
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return nil, ErrInvalidToken
	}
	return Parse(header[len("Bearer "):], m.Config)
}
