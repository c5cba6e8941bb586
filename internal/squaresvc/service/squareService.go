package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/validation"
)

const reasonSquareLost = "square no longer available"

type SquareService struct {
	gameStore    GameStore
	squareStore  SquareStore
	requestStore RequestStore
}

func NewSquareService(gameStore GameStore, squareStore SquareStore, requestStore RequestStore) *SquareService {
	return &SquareService{
		gameStore:    gameStore,
		squareStore:  squareStore,
		requestStore: requestStore,
	}
}

func (s *SquareService) ListByGame(ctx context.Context, gameID string) ([]*models.Square, error) {
	game, err := s.gameStore.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if game == nil {
		return nil, apperr.NotFound("game not found")
	}
	squares, err := s.squareStore.ListByGame(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return squares, nil
}

// Request claims a square for a player. The request record is written
// first as a pending intent, then the square is flipped with a
// conditional write; if another player won the square in between, the
// intent is compensated with a rejection so the two records never
// disagree for long.
func (s *SquareService) Request(ctx context.Context, gameID string, row, col int, player *models.User) (*models.SquareRequest, error) {
	if !validation.ValidPosition(row, col) {
		return nil, apperr.Validation("row and col must be between 0 and 9")
	}

	game, err := s.gameStore.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if game == nil {
		return nil, apperr.NotFound("game not found")
	}
	if game.Status != models.GameStatusSetup {
		return nil, apperr.Conflict("game is not accepting square requests")
	}

	square, err := s.squareStore.Get(ctx, gameID, row, col)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if square == nil {
		return nil, apperr.NotFound("square not found")
	}
	if square.Status != models.SquareAvailable {
		return nil, apperr.Conflict("square is not available")
	}

	req := &models.SquareRequest{
		ID:                uuid.NewString(),
		GameID:            gameID,
		Row:               row,
		Col:               col,
		PlayerID:          player.ID,
		PlayerDisplayName: player.DisplayName,
		Status:            models.RequestPending,
		RequestedAt:       time.Now().UTC(),
	}
	if err := s.requestStore.Create(ctx, req); err != nil {
		return nil, apperr.Internal(err)
	}

	claimed, err := s.squareStore.MarkRequested(ctx, gameID, row, col, player.ID, player.DisplayName)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if claimed == nil {
		// lost the race; reject the intent so it does not dangle
		if _, rejErr := s.requestStore.MarkRejected(ctx, gameID, req.ID, reasonSquareLost); rejErr != nil {
			log.Errorf("failed to reject orphaned request %s: %v", req.ID, rejErr)
		}
		return nil, apperr.Conflict("square is not available")
	}
	return req, nil
}

// Approve moves a pending request and its square to approved. The
// square is located from the position stored on the request.
func (s *SquareService) Approve(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	req, err := s.getPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	approved, err := s.requestStore.MarkApproved(ctx, req.GameID, req.ID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if approved == nil {
		return nil, apperr.Conflict("request is not pending")
	}

	sq, err := s.squareStore.MarkApproved(ctx, req.GameID, req.Row, req.Col, req.PlayerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if sq == nil {
		// request approved but square did not match; needs admin correction
		log.Errorf("square (%s,%d,%d) did not follow request %s to approved", req.GameID, req.Row, req.Col, req.ID)
		return nil, apperr.Conflict("square state does not match request")
	}
	return approved, nil
}

// Reject marks a pending request rejected and reverts its square to
// available with the player fields cleared.
func (s *SquareService) Reject(ctx context.Context, requestID, reason string) (*models.SquareRequest, error) {
	req, err := s.getPending(ctx, requestID)
	if err != nil {
		return nil, err
	}

	rejected, err := s.requestStore.MarkRejected(ctx, req.GameID, req.ID, reason)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if rejected == nil {
		return nil, apperr.Conflict("request is not pending")
	}

	if _, err := s.squareStore.Release(ctx, req.GameID, req.Row, req.Col, models.SquareRequested); err != nil {
		return nil, apperr.Internal(err)
	}
	return rejected, nil
}

// Cancel lets the requester withdraw their own pending claim.
func (s *SquareService) Cancel(ctx context.Context, squareID, playerID string) error {
	sq, err := s.squareStore.GetByID(ctx, squareID)
	if err != nil {
		return apperr.Internal(err)
	}
	if sq == nil {
		return apperr.NotFound("square not found")
	}
	if sq.PlayerID != playerID {
		return apperr.Forbidden("square is not held by you")
	}
	if sq.Status != models.SquareRequested {
		return apperr.Conflict("square has no pending request")
	}

	pending, err := s.requestStore.ListByGame(ctx, sq.GameID, models.RequestPending)
	if err != nil {
		return apperr.Internal(err)
	}
	for _, req := range pending {
		if req.Row == sq.Row && req.Col == sq.Col && req.PlayerID == playerID {
			if _, err := s.requestStore.MarkRejected(ctx, sq.GameID, req.ID, "cancelled by player"); err != nil {
				return apperr.Internal(err)
			}
			break
		}
	}

	if _, err := s.squareStore.Release(ctx, sq.GameID, sq.Row, sq.Col, models.SquareRequested); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// Remove is the admin operation that takes an approved square away
// from its player, returning it to the pool.
func (s *SquareService) Remove(ctx context.Context, gameID, squareID string) error {
	sq, err := s.squareStore.GetByID(ctx, squareID)
	if err != nil {
		return apperr.Internal(err)
	}
	if sq == nil || sq.GameID != gameID {
		return apperr.NotFound("square not found")
	}
	if sq.Status != models.SquareApproved {
		return apperr.Conflict("square is not approved")
	}

	released, err := s.squareStore.Release(ctx, gameID, sq.Row, sq.Col, models.SquareApproved)
	if err != nil {
		return apperr.Internal(err)
	}
	if released == nil {
		return apperr.Conflict("square is not approved")
	}
	return nil
}

// ListRequests returns a game's requests for the admin review list.
func (s *SquareService) ListRequests(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error) {
	game, err := s.gameStore.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if game == nil {
		return nil, apperr.NotFound("game not found")
	}
	requests, err := s.requestStore.ListByGame(ctx, gameID, status)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return requests, nil
}

func (s *SquareService) ListPlayerSquares(ctx context.Context, playerID string) ([]*models.Square, error) {
	squares, err := s.squareStore.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return squares, nil
}

func (s *SquareService) ListPlayerRequests(ctx context.Context, playerID string) ([]*models.SquareRequest, error) {
	requests, err := s.requestStore.ListByPlayer(ctx, playerID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return requests, nil
}

func (s *SquareService) getPending(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	req, err := s.requestStore.GetByID(ctx, requestID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if req == nil {
		return nil, apperr.NotFound("request not found")
	}
	if req.Status != models.RequestPending {
		return nil, apperr.Conflict("request is not pending")
	}
	return req, nil
}
