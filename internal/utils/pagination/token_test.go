package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_RoundTrip(t *testing.T) {
	c := Cursor{EntryDate: time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC), EntryID: "b6f7"}
	got, err := DecodeToken(EncodeToken(c))
	require.NoError(t, err)
	assert.Equal(t, c.EntryID, got.EntryID)
	assert.True(t, c.EntryDate.Equal(got.EntryDate))
}

func TestDecodeToken_Invalid(t *testing.T) {
	for _, token := range []string{"%%%", "bm9waXBl", EncodeToken(Cursor{EntryDate: time.Now()})} {
		_, err := DecodeToken(token)
		assert.Error(t, err, token)
	}
}

func TestCursor_After(t *testing.T) {
	c := Cursor{EntryDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), EntryID: "m"}
	assert.True(t, c.After(time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), "z"))
	assert.True(t, c.After(c.EntryDate, "a"))
	assert.False(t, c.After(c.EntryDate, "m"))
	assert.False(t, c.After(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC), "a"))
}
