package service

import (
	"context"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

// Store interfaces are defined here, on the consumer side, so the
// services can be exercised against the in-memory mock as well as the
// document-store implementations.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	DisplayNameExists(ctx context.Context, displayName string) (bool, error)
}

type GameStore interface {
	Create(ctx context.Context, game *models.Game) error
	Publish(ctx context.Context, gameID string) error
	Delete(ctx context.Context, gameID string) error
	GetByID(ctx context.Context, gameID string) (*models.Game, error)
	List(ctx context.Context, status string, limit int, cursor string) ([]*models.Game, string, error)
	AssignNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (*models.Game, error)
	UpdateStatus(ctx context.Context, gameID, from, to string) (*models.Game, error)
	UpdateScores(ctx context.Context, gameID string, scores map[string]int) (*models.Game, error)
	UpdateDetails(ctx context.Context, game *models.Game) (*models.Game, error)
}

type SquareStore interface {
	CreateAll(ctx context.Context, gameID string, squares []*models.Square) error
	ListByGame(ctx context.Context, gameID string) ([]*models.Square, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*models.Square, error)
	Get(ctx context.Context, gameID string, row, col int) (*models.Square, error)
	GetByID(ctx context.Context, squareID string) (*models.Square, error)
	MarkRequested(ctx context.Context, gameID string, row, col int, playerID, playerDisplayName string) (*models.Square, error)
	MarkApproved(ctx context.Context, gameID string, row, col int, playerID string) (*models.Square, error)
	Release(ctx context.Context, gameID string, row, col int, fromStatus string) (*models.Square, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *models.SquareRequest) error
	GetByID(ctx context.Context, requestID string) (*models.SquareRequest, error)
	ListByGame(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error)
	ListByPlayer(ctx context.Context, playerID string) ([]*models.SquareRequest, error)
	MarkApproved(ctx context.Context, gameID, requestID string) (*models.SquareRequest, error)
	MarkRejected(ctx context.Context, gameID, requestID, reason string) (*models.SquareRequest, error)
}
