package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/validation"
)

var errInvalidLimit = apperr.Validation("limit must be a number")

// CreateGameHandler creates a game together with its full grid of
// available squares.
func (h *Handler) CreateGameHandler(w http.ResponseWriter, r *http.Request) {
	var in validation.GameInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	game, err := h.gameService.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishGameEvent(game)
	h.writeData(w, http.StatusCreated, game)
}

// ListGamesHandler pages through games of one status.
func (h *Handler) ListGamesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, errInvalidLimit)
			return
		}
		limit = n
	}

	page, err := h.gameService.List(r.Context(), q.Get("status"), limit, q.Get("cursor"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, page)
}

func (h *Handler) GetGameHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, game)
}

// UpdateGameHandler rewrites the editable fields of a setup game.
func (h *Handler) UpdateGameHandler(w http.ResponseWriter, r *http.Request) {
	var in validation.GameInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	game, err := h.gameService.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishGameEvent(game)
	h.writeData(w, http.StatusOK, game)
}

// AssignNumbersHandler draws the grid numbers and activates the game.
func (h *Handler) AssignNumbersHandler(w http.ResponseWriter, r *http.Request) {
	game, err := h.gameService.AssignNumbers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishGameEvent(game)
	h.writeData(w, http.StatusOK, game)
}

func (h *Handler) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status string `json:"status"`
	}
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	game, err := h.gameService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), in.Status)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishGameEvent(game)
	h.writeData(w, http.StatusOK, game)
}

// UpdateScoresHandler merges a partial period score update.
func (h *Handler) UpdateScoresHandler(w http.ResponseWriter, r *http.Request) {
	var in validation.ScoreInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	game, err := h.gameService.UpdateScores(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.broker.PublishGameEvent(game)
	h.writeData(w, http.StatusOK, game)
}

// WinnersHandler derives the per-period winners from recorded scores.
func (h *Handler) WinnersHandler(w http.ResponseWriter, r *http.Request) {
	winners, err := h.gameService.Winners(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, winners)
}
