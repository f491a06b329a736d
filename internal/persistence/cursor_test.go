package persistence

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/divyanshukashyap0/Pulsely-AI/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	in := &domain.Cursor{CreatedAt: time.Date(2026, time.October, 15, 8, 30, 0, 123, time.UTC), ID: "plan-1"}

	out, err := DecodeCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.True(t, in.CreatedAt.Equal(out.CreatedAt))
	require.Equal(t, in.ID, out.ID)
}

func TestCursorEmptyAndInvalid(t *testing.T) {
	require.Empty(t, EncodeCursor(nil))

	c, err := DecodeCursor("  ")
	require.NoError(t, err)
	require.Nil(t, c)

	_, err = DecodeCursor("%%%")
	require.Error(t, err)

	_, err = DecodeCursor(base64.RawURLEncoding.EncodeToString([]byte("no-separator")))
	require.Error(t, err)

	_, err = DecodeCursor(base64.RawURLEncoding.EncodeToString([]byte("yesterday|plan-1")))
	require.Error(t, err)
}
