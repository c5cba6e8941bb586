package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	k := PageKey{
		GSI1PK: "GAME#setup",
		GSI1SK: "2025-09-07T18:00:00.000Z",
		PK:     "GAME#abc123",
	}

	cursor := EncodeCursor(k)
	require.NotEmpty(t, cursor)

	decoded, err := DecodeCursor(cursor)
	require.NoError(t, err)
	assert.Equal(t, k, decoded)
}

func TestDecodeCursor_Malformed(t *testing.T) {
	_, err := DecodeCursor("not base64!!")
	assert.True(t, errors.Is(err, ErrInvalidCursor))

	_, err = DecodeCursor("bm90IGpzb24=") // valid base64, invalid payload
	assert.True(t, errors.Is(err, ErrInvalidCursor))
}

func TestGameListKey(t *testing.T) {
	assert.Equal(t, "GAME#setup", GameListKey("setup"))
	assert.Equal(t, "GAME#active", GameListKey("active"))
}
