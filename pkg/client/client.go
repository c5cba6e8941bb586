// Package client is a typed Go client for the squares service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken attaches the bearer token used on authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

// APIError is a non-2xx response decoded from the service envelope.
type APIError struct {
	Status  int
	Message string
	Details map[string]string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = env.Message
		}
		return &APIError{Status: resp.StatusCode, Message: msg, Details: env.Details}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// Auth carries the token and profile returned by register and login.
type Auth struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type RegisterParams struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates a player account and stores the returned token on
// the client.
func (c *Client) Register(ctx context.Context, params RegisterParams) (*Auth, error) {
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/v1/auth/register", params, &auth); err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*Auth, error) {
	body := map[string]string{"username": username, "password": password}
	var auth Auth
	if err := c.do(ctx, http.MethodPost, "/v1/auth/login", body, &auth); err != nil {
		return nil, err
	}
	c.token = auth.Token
	return &auth, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/v1/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GamesPage is one page of a games listing.
type GamesPage struct {
	Items      []*models.Game `json:"items"`
	NextCursor string         `json:"nextCursor"`
	Count      int            `json:"count"`
}

// ListGames pages games of one status; pass the previous page's cursor
// to continue.
func (c *Client) ListGames(ctx context.Context, status string, limit int, cursor string) (*GamesPage, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	path := "/v1/games"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page GamesPage
	if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodGet, "/v1/games/"+gameID, nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) ListSquares(ctx context.Context, gameID string) ([]*models.Square, error) {
	var squares []*models.Square
	if err := c.do(ctx, http.MethodGet, "/v1/games/"+gameID+"/squares", nil, &squares); err != nil {
		return nil, err
	}
	return squares, nil
}

func (c *Client) Winners(ctx context.Context, gameID string) ([]models.Winner, error) {
	var winners []models.Winner
	if err := c.do(ctx, http.MethodGet, "/v1/games/"+gameID+"/winners", nil, &winners); err != nil {
		return nil, err
	}
	return winners, nil
}

// RequestSquare claims a grid position for the logged in player.
func (c *Client) RequestSquare(ctx context.Context, gameID string, row, col int) (*models.SquareRequest, error) {
	body := map[string]int{"row": row, "col": col}
	var req models.SquareRequest
	if err := c.do(ctx, http.MethodPost, "/v1/games/"+gameID+"/squares/request", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) CancelSquare(ctx context.Context, gameID, squareID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/games/"+gameID+"/squares/"+squareID+"/cancel", nil, nil)
}

func (c *Client) ListUserSquares(ctx context.Context, userID string) ([]*models.Square, error) {
	var squares []*models.Square
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+userID+"/squares", nil, &squares); err != nil {
		return nil, err
	}
	return squares, nil
}

func (c *Client) ListUserRequests(ctx context.Context, userID string) ([]*models.SquareRequest, error) {
	var requests []*models.SquareRequest
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+userID+"/requests", nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

type GameParams struct {
	Name            string                 `json:"name"`
	Sport           string                 `json:"sport"`
	HomeTeam        string                 `json:"homeTeam"`
	AwayTeam        string                 `json:"awayTeam"`
	GameDate        time.Time              `json:"gameDate"`
	PayoutStructure models.PayoutStructure `json:"payoutStructure"`
}

func (c *Client) CreateGame(ctx context.Context, params GameParams) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPost, "/v1/games", params, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) UpdateGame(ctx context.Context, gameID string, params GameParams) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPut, "/v1/games/"+gameID, params, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

// ListRequests returns a game's square requests, optionally filtered
// by status.
func (c *Client) ListRequests(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error) {
	path := "/v1/games/" + gameID + "/requests"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}

	var requests []*models.SquareRequest
	if err := c.do(ctx, http.MethodGet, path, nil, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

func (c *Client) ApproveRequest(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	var req models.SquareRequest
	if err := c.do(ctx, http.MethodPost, "/v1/requests/"+requestID+"/approve", nil, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) RejectRequest(ctx context.Context, requestID, reason string) (*models.SquareRequest, error) {
	body := map[string]string{"reason": reason}
	var req models.SquareRequest
	if err := c.do(ctx, http.MethodPost, "/v1/requests/"+requestID+"/reject", body, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *Client) AssignNumbers(ctx context.Context, gameID string) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPost, "/v1/games/"+gameID+"/assign-numbers", nil, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) UpdateStatus(ctx context.Context, gameID, status string) (*models.Game, error) {
	body := map[string]string{"status": status}
	var game models.Game
	if err := c.do(ctx, http.MethodPut, "/v1/games/"+gameID+"/status", body, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

type ScoreParams struct {
	HomeQ1    *int `json:"homeQ1,omitempty"`
	AwayQ1    *int `json:"awayQ1,omitempty"`
	HomeQ2    *int `json:"homeQ2,omitempty"`
	AwayQ2    *int `json:"awayQ2,omitempty"`
	HomeQ3    *int `json:"homeQ3,omitempty"`
	AwayQ3    *int `json:"awayQ3,omitempty"`
	HomeQ4    *int `json:"homeQ4,omitempty"`
	AwayQ4    *int `json:"awayQ4,omitempty"`
	HomeFinal *int `json:"homeFinal,omitempty"`
	AwayFinal *int `json:"awayFinal,omitempty"`
}

func (c *Client) UpdateScores(ctx context.Context, gameID string, params ScoreParams) (*models.Game, error) {
	var game models.Game
	if err := c.do(ctx, http.MethodPut, "/v1/games/"+gameID+"/scores", params, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (c *Client) RemoveSquare(ctx context.Context, gameID, squareID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/games/"+gameID+"/squares/"+squareID+"/remove", nil, nil)
}

func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/v1/health", nil, nil)
}
