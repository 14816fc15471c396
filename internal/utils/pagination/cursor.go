package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	svcErr "github.com/oggyb/skillswap/internal/errors"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// ErrUnknownCursor is returned when a well-formed token points at a record
// that does not exist.
var ErrUnknownCursor = svcErr.InvalidArgument("pagination token does not match any record")

// Cursor is the opaque pagination state we encode/decode.
// AfterID is the last user id of the previous page; the directory is
// append-only, so its position never moves.
type Cursor struct {
	AfterID string `json:"after_id"`
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page).
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, svcErr.InvalidArgument("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil || c.AfterID == "" {
		return Cursor{}, svcErr.InvalidArgument("invalid pagination token")
	}
	return c, nil
}

// Limit clamps a requested page size to [1, MaxLimit], using DefaultLimit
// when none is given.
func Limit(n int) int {
	switch {
	case n <= 0:
		return DefaultLimit
	case n > MaxLimit:
		return MaxLimit
	default:
		return n
	}
}
