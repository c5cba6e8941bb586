package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	config "github.com/gregd453/BVSquares/configs"
	"github.com/gregd453/BVSquares/internal/squaresvc/broker"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/squaresvc/service"
	"github.com/gregd453/BVSquares/internal/squaresvc/store/mock"
)

func newTestHandler(t *testing.T) (*Handler, *chi.Mux) {
	t.Helper()
	t.Setenv("JWT_SECRET_KEY", "test-secret")

	st := mock.NewStore()
	h := NewHandler(
		service.NewUserService(st.Users()),
		service.NewGameService(st.Games(), st.Squares()),
		service.NewSquareService(st.Games(), st.Squares(), st.Requests()),
		broker.NewBroker(nil),
	)
	h.InitAuth()

	r := chi.NewRouter()
	h.SetRoutes(r)
	return h, r
}

func doJSON(t *testing.T, r http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var rsp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rsp), "body: %s", w.Body.String())
	return w, rsp
}

func adminToken(t *testing.T, h *Handler) string {
	t.Helper()
	token, err := h.issueToken(&models.User{ID: "admin-1", DisplayName: "The Admin", UserType: models.UserTypeAdmin})
	require.NoError(t, err)
	return token
}

func registerPlayer(t *testing.T, r http.Handler, name string) string {
	t.Helper()
	w, rsp := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username":        name,
		"email":           name + "@example.com",
		"displayName":     "Player " + name,
		"password":        "secret-password",
		"confirmPassword": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", rsp)

	data := rsp.Data.(map[string]interface{})
	return data["token"].(string)
}

func createGame(t *testing.T, r http.Handler, token string) string {
	t.Helper()
	w, rsp := doJSON(t, r, http.MethodPost, "/v1/games", token, map[string]interface{}{
		"name":     "Sunday Showdown",
		"sport":    models.SportFootball,
		"homeTeam": "Hawks",
		"awayTeam": "Wolves",
		"gameDate": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		"payoutStructure": map[string]int{
			"firstQuarter": 25, "secondQuarter": 25, "thirdQuarter": 25, "finalScore": 25,
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", rsp)

	game := rsp.Data.(map[string]interface{})
	return game["id"].(string)
}

func TestHealthHandler(t *testing.T) {
	_, r := newTestHandler(t)
	id := config.CreateUniqueInstance("squares")

	w, rsp := doJSON(t, r, http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rsp.Success)

	data := rsp.Data.(map[string]interface{})
	assert.Equal(t, id, data["instance"])
}

func TestRegisterHandler_Validation(t *testing.T) {
	_, r := newTestHandler(t)

	w, rsp := doJSON(t, r, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username":        "p1",
		"email":           "not-an-email",
		"displayName":     "P",
		"password":        "short",
		"confirmPassword": "short",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, rsp.Success)
	assert.NotEmpty(t, rsp.Details)
}

func TestAuthFlow(t *testing.T) {
	_, r := newTestHandler(t)

	token := registerPlayer(t, r, "player_1")
	require.NotEmpty(t, token)

	// login with the same credentials
	w, rsp := doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "player_1",
		"password": "secret-password",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, rsp.Success)

	// me resolves the profile from the token
	w, rsp = doJSON(t, r, http.MethodGet, "/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	user := rsp.Data.(map[string]interface{})
	assert.Equal(t, "Player player_1", user["displayName"])

	// wrong password is a 401
	w, _ = doJSON(t, r, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "player_1",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	_, r := newTestHandler(t)

	w, rsp := doJSON(t, r, http.MethodPost, "/v1/games/g1/squares/request", "", map[string]int{"row": 0, "col": 0})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, rsp.Success)
}

func TestAdminRoutesRejectPlayers(t *testing.T) {
	h, r := newTestHandler(t)

	playerToken := registerPlayer(t, r, "player_1")
	w, _ := doJSON(t, r, http.MethodPost, "/v1/games", playerToken, map[string]string{})
	assert.Equal(t, http.StatusForbidden, w.Code)

	// the admin gets through
	createGame(t, r, adminToken(t, h))
}

func TestSquareRequestLifecycle(t *testing.T) {
	h, r := newTestHandler(t)

	admin := adminToken(t, h)
	gameID := createGame(t, r, admin)
	playerToken := registerPlayer(t, r, "player_1")

	// player claims a square
	w, rsp := doJSON(t, r, http.MethodPost, fmt.Sprintf("/v1/games/%s/squares/request", gameID), playerToken,
		map[string]int{"row": 3, "col": 4})
	require.Equal(t, http.StatusCreated, w.Code, "body: %v", rsp)
	request := rsp.Data.(map[string]interface{})
	requestID := request["id"].(string)

	// the admin sees it pending
	w, rsp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/games/%s/requests?status=pending", gameID), admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pending := rsp.Data.([]interface{})
	require.Len(t, pending, 1)

	// approve it
	w, rsp = doJSON(t, r, http.MethodPost, "/v1/requests/"+requestID+"/approve", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, "body: %v", rsp)

	// the grid shows the square approved
	w, rsp = doJSON(t, r, http.MethodGet, fmt.Sprintf("/v1/games/%s/squares", gameID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	squares := rsp.Data.([]interface{})
	require.Len(t, squares, 100)

	found := false
	for _, raw := range squares {
		sq := raw.(map[string]interface{})
		if sq["row"].(float64) == 3 && sq["col"].(float64) == 4 {
			assert.Equal(t, models.SquareApproved, sq["status"])
			found = true
		}
	}
	assert.True(t, found)
}

func TestGameNotFound(t *testing.T) {
	_, r := newTestHandler(t)

	w, rsp := doJSON(t, r, http.MethodGet, "/v1/games/does-not-exist", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, rsp.Success)
}
