// Package persistence contains helpers shared by repository implementations.
package persistence

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

// EncodeCursor serialises the cursor to a string token.
func EncodeCursor(c *domain.Cursor) string {
	if c == nil {
		return ""
	}
	raw := fmt.Sprintf("%s|%s", c.CreatedAt.UTC().Format(time.RFC3339Nano), c.ID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeCursor parses the encoded cursor token. An empty token yields a nil cursor.
func DecodeCursor(token string) (*domain.Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return nil, fmt.Errorf("invalid cursor format")
	}
	ts, err := time.Parse(time.RFC3339Nano, parts[0])
	if err != nil {
		return nil, err
	}
	return &domain.Cursor{CreatedAt: ts, ID: parts[1]}, nil
}
