package models

import "time"

const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

// SquareRequest is a player's claim on a square awaiting admin review.
// Row and Col are carried on the request so approval never needs the
// caller to resupply the position.
type SquareRequest struct {
	ID                string     `json:"id" bson:"id"`
	GameID            string     `json:"gameId" bson:"game_id"`
	Row               int        `json:"row" bson:"row"`
	Col               int        `json:"col" bson:"col"`
	PlayerID          string     `json:"playerId" bson:"player_id"`
	PlayerDisplayName string     `json:"playerDisplayName" bson:"player_display_name"`
	Status            string     `json:"status" bson:"status"`
	RejectionReason   string     `json:"rejectionReason,omitempty" bson:"rejection_reason,omitempty"`
	RequestedAt       time.Time  `json:"requestedAt" bson:"requested_at"`
	ProcessedAt       *time.Time `json:"processedAt,omitempty" bson:"processed_at,omitempty"`
}
