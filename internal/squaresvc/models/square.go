package models

import "time"

// GridSize is the number of rows and columns of a game grid. Every
// game owns exactly GridSize*GridSize squares.
const GridSize = 10

const (
	SquareAvailable = "available"
	SquareRequested = "requested"
	SquareApproved  = "approved"
)

// Square is one cell of a game grid, identified by (gameId, row, col).
// PlayerID and PlayerDisplayName are set while a request holds the
// square and cleared again when it is rejected or released.
type Square struct {
	ID                string     `json:"id" bson:"id"`
	GameID            string     `json:"gameId" bson:"game_id"`
	Row               int        `json:"row" bson:"row"`
	Col               int        `json:"col" bson:"col"`
	Status            string     `json:"status" bson:"status"`
	PlayerID          string     `json:"playerId,omitempty" bson:"player_id,omitempty"`
	PlayerDisplayName string     `json:"playerDisplayName,omitempty" bson:"player_display_name,omitempty"`
	RequestedAt       *time.Time `json:"requestedAt,omitempty" bson:"requested_at,omitempty"`
	ApprovedAt        *time.Time `json:"approvedAt,omitempty" bson:"approved_at,omitempty"`
	CreatedAt         time.Time  `json:"createdAt" bson:"created_at"`
}
