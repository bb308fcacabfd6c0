package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const dateFormat = time.DateOnly

// Cursor is the keyset position of the last journal entry on a page.
// Entries are listed newest first by (entry date, entry id).
type Cursor struct {
	EntryDate time.Time
	EntryID   string
}

// EncodeToken turns a cursor into an opaque page token.
func EncodeToken(c Cursor) string {
	raw := fmt.Sprintf("%s|%s", c.EntryDate.UTC().Format(dateFormat), c.EntryID)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 || parts[1] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}
	date, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	return Cursor{EntryDate: date, EntryID: parts[1]}, nil
}

// After reports whether an entry sorts after the cursor, that is, belongs on a later page.
func (c Cursor) After(entryDate time.Time, entryID string) bool {
	d := entryDate.UTC().Format(dateFormat)
	cd := c.EntryDate.UTC().Format(dateFormat)
	if d != cd {
		return d < cd
	}
	return entryID < c.EntryID
}
