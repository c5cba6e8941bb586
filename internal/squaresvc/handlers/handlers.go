package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	config "github.com/gregd453/BVSquares/configs"
	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/squaresvc/broker"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/squaresvc/service"
)

type Handler struct {
	tokenAuth     *jwtauth.JWTAuth
	userService   *service.UserService
	gameService   *service.GameService
	squareService *service.SquareService
	broker        *broker.Broker
}

func NewHandler(userService *service.UserService, gameService *service.GameService,
	squareService *service.SquareService, b *broker.Broker) *Handler {
	return &Handler{
		userService:   userService,
		gameService:   gameService,
		squareService: squareService,
		broker:        b,
	}
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, code int, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) writeData(w http.ResponseWriter, code int, data interface{}) {
	h.writeJSON(w, code, Response{Success: true, Data: data})
}

// writeError maps an error kind to its HTTP status and envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	rsp := Response{Success: false, Error: err.Error()}

	var code int
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		code = http.StatusBadRequest
	case apperr.KindAuth:
		code = http.StatusUnauthorized
	case apperr.KindForbidden:
		code = http.StatusForbidden
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindConflict:
		code = http.StatusConflict
	default:
		code = http.StatusInternalServerError
		log.Errorf("internal error: %v", err)
		rsp.Error = "internal server error"
	}

	var ae *apperr.Error
	if errors.As(err, &ae) && len(ae.Details) > 0 {
		rsp.Details = ae.Details
	}

	h.writeJSON(w, code, rsp)
}

func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Validation("invalid request body")
	}
	return nil
}

// Authenticator rejects requests without a valid token, answering with
// the JSON envelope instead of the library's plain text 401.
func (h *Handler) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			h.writeError(w, apperr.Auth("authentication required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// AdminOnly guards the admin route group on the user_type claim.
func (h *Handler) AdminOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := h.currentUser(r)
		if err != nil {
			h.writeError(w, err)
			return
		}
		if user.UserType != models.UserTypeAdmin {
			h.writeError(w, apperr.Forbidden("admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser rebuilds the caller's identity from the verified claims.
func (h *Handler) currentUser(r *http.Request) (*models.User, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return nil, apperr.Auth("authentication required")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, apperr.Auth("invalid token claims")
	}
	displayName, _ := claims["display_name"].(string)
	userType, _ := claims["user_type"].(string)

	return &models.User{ID: sub, DisplayName: displayName, UserType: userType}, nil
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "squares service is running at port " + os.Getenv("SERVICE_PORT"),
		Data:    map[string]string{"instance": config.GetInstanceId()},
	})
}
