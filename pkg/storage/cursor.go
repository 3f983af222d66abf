package storage

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Cursor is an opaque pagination token for scan listings. Offset is the
// index of the next item; Last is the key of the last item returned and
// guards against the listing shifting between pages.
type Cursor struct {
	Offset int    `json:"o"`
	Last   string `json:"l"`
}

// EncodeCursor encodes a cursor to a base64 URL-safe string.
// Returns empty string if cursor is nil or points at the first page.
func EncodeCursor(c *Cursor) string {
	if c == nil || c.Offset <= 0 || c.Last == "" {
		return ""
	}

	data, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(data)
}

// DecodeCursor decodes a base64-encoded cursor string.
// Returns nil and no error for empty cursor (first page).
func DecodeCursor(encoded string) (*Cursor, error) {
	if encoded == "" {
		return nil, nil
	}

	data, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, NewInvalidInputError("cursor", fmt.Sprintf("invalid encoding: %v", err))
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, NewInvalidInputError("cursor", fmt.Sprintf("invalid format: %v", err))
	}

	if c.Offset <= 0 || c.Last == "" {
		return nil, NewInvalidInputError("cursor", "missing position")
	}

	return &c, nil
}
