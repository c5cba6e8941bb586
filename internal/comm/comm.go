package comm

import (
	"encoding/json"
	"time"
)

type WSMessage struct {
	Type     string          `json:"type"` // e.g. "subscribe-game", "square-update"
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// GameSubscription is the payload of a subscribe-game message from a
// web client that wants live updates for one game's grid.
type GameSubscription struct {
	GameID string `json:"game_id"`
}

// SquareEvent announces a change to a single square so connected grids
// can repaint the cell without refetching.
type SquareEvent struct {
	GameID            string    `json:"game_id"`
	SquareID          string    `json:"square_id"`
	Row               int       `json:"row"`
	Col               int       `json:"col"`
	Status            string    `json:"status"`
	PlayerID          string    `json:"player_id,omitempty"`
	PlayerDisplayName string    `json:"player_display_name,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// GameEvent announces a game level change: status transition, number
// assignment or a score update.
type GameEvent struct {
	GameID     string    `json:"game_id"`
	Status     string    `json:"status"`
	RowNumbers []int     `json:"row_numbers,omitempty"`
	ColNumbers []int     `json:"col_numbers,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
