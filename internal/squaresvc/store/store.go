// Package store persists every entity of the squares service in a
// single multi-entity collection keyed by composite pk/sk pairs, with
// gsi1pk/gsi1sk fields backing the status and date listings.
package store

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor marks a pagination cursor the client supplied that
// cannot be decoded. Callers use it to tell client mistakes apart from
// storage failures.
var ErrInvalidCursor = errors.New("invalid cursor")

// Entity discriminators stored on every document.
const (
	EntityUser    = "user"
	EntityGame    = "game"
	EntitySquare  = "square"
	EntityRequest = "request"
)

// Games are written under the creating list key first and only flipped
// to their status key once all squares exist, so a partially created
// game is never visible to players.
const GameListCreating = "GAME#creating"

const (
	skProfile = "PROFILE"
	skDetails = "DETAILS"
)

// TimeLayout orders gsi1sk values lexicographically by timestamp.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

func userPK(id string) string {
	return "USER#" + id
}

func gamePK(id string) string {
	return "GAME#" + id
}

func squareSK(row, col int) string {
	return fmt.Sprintf("SQUARE#%d#%d", row, col)
}

func requestSK(id string) string {
	return "REQUEST#" + id
}

// GameListKey is the gsi1pk under which games of a status are listed.
func GameListKey(status string) string {
	return "GAME#" + status
}

func squareListKey(status string) string {
	return "SQUARE#" + status
}

func requestListKey(status string) string {
	return "REQUEST#" + status
}

// PageKey is the last evaluated position of a paginated listing. Its
// base64 JSON encoding is the opaque cursor handed to clients; passing
// it back resumes the listing strictly after that position.
type PageKey struct {
	GSI1PK string `json:"gsi1pk"`
	GSI1SK string `json:"gsi1sk"`
	PK     string `json:"pk"`
}

func EncodeCursor(k PageKey) string {
	b, _ := json.Marshal(k)
	return base64.StdEncoding.EncodeToString(b)
}

func DecodeCursor(cursor string) (PageKey, error) {
	var k PageKey
	b, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if err := json.Unmarshal(b, &k); err != nil {
		return k, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	return k, nil
}
