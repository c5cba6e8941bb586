package handlers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/format"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

func (h *Handler) ListSquaresHandler(w http.ResponseWriter, r *http.Request) {
	squares, err := h.squareService.ListByGame(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, squares)
}

// RequestSquareHandler claims a square for the calling player; the
// claim stays pending until an admin processes it.
func (h *Handler) RequestSquareHandler(w http.ResponseWriter, r *http.Request) {
	player, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var in struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	gameID := chi.URLParam(r, "id")
	req, err := h.squareService.Request(r.Context(), gameID, in.Row, in.Col, player)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishSquareEvent(&models.Square{
		ID:                format.SquareID(gameID, req.Row, req.Col),
		GameID:            gameID,
		Row:               req.Row,
		Col:               req.Col,
		Status:            models.SquareRequested,
		PlayerID:          req.PlayerID,
		PlayerDisplayName: req.PlayerDisplayName,
	})
	h.writeData(w, http.StatusCreated, req)
}

// CancelSquareHandler lets a player withdraw their pending claim.
func (h *Handler) CancelSquareHandler(w http.ResponseWriter, r *http.Request) {
	player, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	gameID := chi.URLParam(r, "id")
	squareID := chi.URLParam(r, "squareId")
	if err := h.squareService.Cancel(r.Context(), squareID, player.ID); err != nil {
		h.writeError(w, err)
		return
	}

	h.publishReleased(gameID, squareID)
	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "square request cancelled"})
}

// RemoveSquareHandler is the admin operation that takes an approved
// square back into the pool.
func (h *Handler) RemoveSquareHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	squareID := chi.URLParam(r, "squareId")
	if err := h.squareService.Remove(r.Context(), gameID, squareID); err != nil {
		h.writeError(w, err)
		return
	}

	h.publishReleased(gameID, squareID)
	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "square removed"})
}

// ListUserSquaresHandler returns the squares held by a player across
// all games. Players may only look at their own.
func (h *Handler) ListUserSquaresHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := h.ownProfileID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	squares, err := h.squareService.ListPlayerSquares(r.Context(), playerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, squares)
}

func (h *Handler) ListUserRequestsHandler(w http.ResponseWriter, r *http.Request) {
	playerID, err := h.ownProfileID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	requests, err := h.squareService.ListPlayerRequests(r.Context(), playerID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, requests)
}

// ownProfileID resolves the {id} path segment, letting players reach
// only their own listings while admins can inspect anyone's.
func (h *Handler) ownProfileID(r *http.Request) (string, error) {
	user, err := h.currentUser(r)
	if err != nil {
		return "", err
	}

	id := chi.URLParam(r, "id")
	if id != user.ID && user.UserType != models.UserTypeAdmin {
		return "", apperr.Forbidden("cannot view another player's data")
	}
	return id, nil
}

// publishReleased announces a square going back to the pool. The
// release already happened; a lookup failure here only costs the event.
func (h *Handler) publishReleased(gameID, squareID string) {
	var row, col int
	if _, err := fmt.Sscanf(squareID, gameID+"-%d-%d", &row, &col); err != nil {
		return
	}
	h.broker.PublishSquareEvent(&models.Square{
		ID:     squareID,
		GameID: gameID,
		Row:    row,
		Col:    col,
		Status: models.SquareAvailable,
	})
}
