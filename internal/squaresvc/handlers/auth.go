package handlers

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/validation"
)

const tokenLifetime = 24 * time.Hour

func (h *Handler) InitAuth() {
	var jwtKey = os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		log.Fatal("JWT_SECRET_KEY is not set")
	}
	h.tokenAuth = jwtauth.New("HS256", []byte(jwtKey), nil)
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"sub":          user.ID,
		"display_name": user.DisplayName,
		"user_type":    user.UserType,
		"exp":          time.Now().Add(tokenLifetime).Unix(),
	})
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterHandler creates a player account and logs it straight in.
func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var in validation.RegisterInput
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.userService.Register(r.Context(), in)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, apperr.Internal(err))
		return
	}

	h.writeData(w, http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := h.decode(r, &in); err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), in.Username, in.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.writeError(w, apperr.Internal(err))
		return
	}

	h.writeData(w, http.StatusOK, authResponse{Token: token, User: user})
}

// LogoutHandler is a formality with stateless tokens; the client drops
// the token and the short expiry does the rest.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Response{Success: true, Message: "logged out"})
}

// MeHandler returns the caller's full profile.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := h.currentUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	user, err := h.userService.GetByID(r.Context(), claims.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, user)
}
