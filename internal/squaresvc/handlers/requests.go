package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/format"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

// ListRequestsHandler returns a game's square requests for the admin
// review queue, optionally filtered by status.
func (h *Handler) ListRequestsHandler(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	requests, err := h.squareService.ListRequests(r.Context(), gameID, r.URL.Query().Get("status"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, requests)
}

func (h *Handler) ApproveRequestHandler(w http.ResponseWriter, r *http.Request) {
	req, err := h.squareService.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishSquareEvent(&models.Square{
		ID:                format.SquareID(req.GameID, req.Row, req.Col),
		GameID:            req.GameID,
		Row:               req.Row,
		Col:               req.Col,
		Status:            models.SquareApproved,
		PlayerID:          req.PlayerID,
		PlayerDisplayName: req.PlayerDisplayName,
	})
	h.writeData(w, http.StatusOK, req)
}

func (h *Handler) RejectRequestHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Reason string `json:"reason"`
	}
	// the reason is optional, so an empty body is fine
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		h.writeError(w, apperr.Validation("invalid request body"))
		return
	}
	if in.Reason == "" {
		in.Reason = "rejected by admin"
	}

	req, err := h.squareService.Reject(r.Context(), chi.URLParam(r, "id"), in.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishSquareEvent(&models.Square{
		ID:     format.SquareID(req.GameID, req.Row, req.Col),
		GameID: req.GameID,
		Row:    req.Row,
		Col:    req.Col,
		Status: models.SquareAvailable,
	})
	h.writeData(w, http.StatusOK, req)
}
