// Package mock is an in-memory stand-in for the document-store layer,
// preserving its conditional-write and pagination semantics so the
// services can be tested without a database.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/squaresvc/store"
)

type gameRec struct {
	game    models.Game
	listKey string
}

// Store implements the service store interfaces over maps guarded by
// one mutex.
type Store struct {
	mu       sync.Mutex
	users    map[string]*models.User
	games    map[string]*gameRec
	squares  map[string]map[string]*models.Square // gameID -> "r#c"
	requests map[string]*models.SquareRequest     // requestID

	// FailSquareCreation makes the next CreateAll fail after writing
	// the given number of squares, for all-or-nothing tests.
	FailSquareCreation bool
	PartialSquares     int

	// FailGameListing makes List fail as if the database were down.
	FailGameListing bool
}

func NewStore() *Store {
	return &Store{
		users:    map[string]*models.User{},
		games:    map[string]*gameRec{},
		squares:  map[string]map[string]*models.Square{},
		requests: map[string]*models.SquareRequest{},
	}
}

func cellKey(row, col int) string {
	return fmt.Sprintf("%d#%d", row, col)
}

// ---- UserStore ----

func (s *Store) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; ok {
		return fmt.Errorf("user %s already exists", user.ID)
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) DisplayNameExists(ctx context.Context, displayName string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.DisplayName == displayName {
			return true, nil
		}
	}
	return false, nil
}

// ---- GameStore ----

func (s *Store) CreateGame(ctx context.Context, game *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return fmt.Errorf("game %s already exists", game.ID)
	}
	g := *game
	s.games[game.ID] = &gameRec{game: g, listKey: store.GameListCreating}
	return nil
}

func (s *Store) Publish(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[gameID]
	if !ok || rec.listKey != store.GameListCreating {
		return fmt.Errorf("game %s not in creating state", gameID)
	}
	rec.listKey = store.GameListKey(models.GameStatusSetup)
	return nil
}

func (s *Store) Delete(ctx context.Context, gameID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.games, gameID)
	delete(s.squares, gameID)
	for id, req := range s.requests {
		if req.GameID == gameID {
			delete(s.requests, id)
		}
	}
	return nil
}

func (s *Store) GetGameByID(ctx context.Context, gameID string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.games[gameID]; ok {
		cp := rec.game
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) List(ctx context.Context, status string, limit int, cursor string) ([]*models.Game, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGameListing {
		return nil, "", fmt.Errorf("failed to list games: connection reset")
	}

	listKey := store.GameListKey(status)
	type keyed struct {
		key  store.PageKey
		game models.Game
	}
	var all []keyed
	for _, rec := range s.games {
		if rec.listKey != listKey {
			continue
		}
		all = append(all, keyed{
			key: store.PageKey{
				GSI1PK: rec.listKey,
				GSI1SK: rec.game.GameDate.UTC().Format(store.TimeLayout),
				PK:     "GAME#" + rec.game.ID,
			},
			game: rec.game,
		})
	}
	// newest game date first, pk as tiebreak
	sort.Slice(all, func(i, j int) bool {
		if all[i].key.GSI1SK != all[j].key.GSI1SK {
			return all[i].key.GSI1SK > all[j].key.GSI1SK
		}
		return all[i].key.PK > all[j].key.PK
	})

	if cursor != "" {
		k, err := store.DecodeCursor(cursor)
		if err != nil {
			return nil, "", err
		}
		idx := 0
		for i, item := range all {
			if item.key.GSI1SK < k.GSI1SK ||
				(item.key.GSI1SK == k.GSI1SK && item.key.PK < k.PK) {
				idx = i
				break
			}
			idx = len(all)
		}
		all = all[idx:]
	}

	next := ""
	if len(all) > limit {
		all = all[:limit]
		next = store.EncodeCursor(all[len(all)-1].key)
	}

	games := make([]*models.Game, 0, len(all))
	for i := range all {
		cp := all[i].game
		games = append(games, &cp)
	}
	return games, next, nil
}

func (s *Store) AssignNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[gameID]
	if !ok || rec.game.Status != models.GameStatusSetup || rec.game.RowNumbers != nil {
		return nil, nil
	}
	rec.game.RowNumbers = append([]int(nil), rowNumbers...)
	rec.game.ColNumbers = append([]int(nil), colNumbers...)
	rec.game.Status = models.GameStatusActive
	rec.game.UpdatedAt = time.Now().UTC()
	rec.listKey = store.GameListKey(models.GameStatusActive)
	cp := rec.game
	return &cp, nil
}

func (s *Store) UpdateStatus(ctx context.Context, gameID, from, to string) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[gameID]
	if !ok || rec.game.Status != from {
		return nil, nil
	}
	rec.game.Status = to
	rec.game.UpdatedAt = time.Now().UTC()
	rec.listKey = store.GameListKey(to)
	cp := rec.game
	return &cp, nil
}

func (s *Store) UpdateScores(ctx context.Context, gameID string, scores map[string]int) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[gameID]
	if !ok {
		return nil, nil
	}
	for field, value := range scores {
		v := value
		switch field {
		case "home_q1":
			rec.game.Scores.HomeQ1 = &v
		case "away_q1":
			rec.game.Scores.AwayQ1 = &v
		case "home_q2":
			rec.game.Scores.HomeQ2 = &v
		case "away_q2":
			rec.game.Scores.AwayQ2 = &v
		case "home_q3":
			rec.game.Scores.HomeQ3 = &v
		case "away_q3":
			rec.game.Scores.AwayQ3 = &v
		case "home_q4":
			rec.game.Scores.HomeQ4 = &v
		case "away_q4":
			rec.game.Scores.AwayQ4 = &v
		case "home_final":
			rec.game.Scores.HomeFinal = &v
		case "away_final":
			rec.game.Scores.AwayFinal = &v
		}
	}
	rec.game.UpdatedAt = time.Now().UTC()
	cp := rec.game
	return &cp, nil
}

func (s *Store) UpdateDetails(ctx context.Context, game *models.Game) (*models.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.games[game.ID]
	if !ok || rec.game.Status != models.GameStatusSetup {
		return nil, nil
	}
	rec.game.Name = game.Name
	rec.game.Sport = game.Sport
	rec.game.HomeTeam = game.HomeTeam
	rec.game.AwayTeam = game.AwayTeam
	rec.game.GameDate = game.GameDate
	rec.game.PayoutStructure = game.PayoutStructure
	rec.game.UpdatedAt = time.Now().UTC()
	cp := rec.game
	return &cp, nil
}

// ---- SquareStore ----

func (s *Store) CreateAll(ctx context.Context, gameID string, squares []*models.Square) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cells := map[string]*models.Square{}
	n := len(squares)
	if s.FailSquareCreation {
		n = s.PartialSquares
	}
	for _, sq := range squares[:n] {
		cp := *sq
		cells[cellKey(sq.Row, sq.Col)] = &cp
	}
	s.squares[gameID] = cells
	if s.FailSquareCreation {
		return fmt.Errorf("square creation incomplete: %d of %d", n, len(squares))
	}
	return nil
}

func (s *Store) ListByGame(ctx context.Context, gameID string) ([]*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Square
	for _, sq := range s.squares[gameID] {
		cp := *sq
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Row != out[j].Row {
			return out[i].Row < out[j].Row
		}
		return out[i].Col < out[j].Col
	})
	return out, nil
}

func (s *Store) ListByPlayer(ctx context.Context, playerID string) ([]*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Square
	for _, cells := range s.squares {
		for _, sq := range cells {
			if sq.PlayerID == playerID {
				cp := *sq
				out = append(out, &cp)
			}
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, gameID string, row, col int) (*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sq, ok := s.squares[gameID][cellKey(row, col)]; ok {
		cp := *sq
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) GetSquareByID(ctx context.Context, squareID string) (*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cells := range s.squares {
		for _, sq := range cells {
			if sq.ID == squareID {
				cp := *sq
				return &cp, nil
			}
		}
	}
	return nil, nil
}

func (s *Store) MarkRequested(ctx context.Context, gameID string, row, col int, playerID, playerDisplayName string) (*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq, ok := s.squares[gameID][cellKey(row, col)]
	if !ok || sq.Status != models.SquareAvailable {
		return nil, nil
	}
	now := time.Now().UTC()
	sq.Status = models.SquareRequested
	sq.PlayerID = playerID
	sq.PlayerDisplayName = playerDisplayName
	sq.RequestedAt = &now
	cp := *sq
	return &cp, nil
}

func (s *Store) MarkSquareApproved(ctx context.Context, gameID string, row, col int, playerID string) (*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq, ok := s.squares[gameID][cellKey(row, col)]
	if !ok || sq.Status != models.SquareRequested || sq.PlayerID != playerID {
		return nil, nil
	}
	now := time.Now().UTC()
	sq.Status = models.SquareApproved
	sq.ApprovedAt = &now
	cp := *sq
	return &cp, nil
}

func (s *Store) Release(ctx context.Context, gameID string, row, col int, fromStatus string) (*models.Square, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sq, ok := s.squares[gameID][cellKey(row, col)]
	if !ok || sq.Status != fromStatus {
		return nil, nil
	}
	sq.Status = models.SquareAvailable
	sq.PlayerID = ""
	sq.PlayerDisplayName = ""
	sq.RequestedAt = nil
	sq.ApprovedAt = nil
	cp := *sq
	return &cp, nil
}

// ---- RequestStore ----

func (s *Store) CreateRequest(ctx context.Context, req *models.SquareRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *req
	s.requests[req.ID] = &cp
	return nil
}

func (s *Store) GetRequestByID(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req, ok := s.requests[requestID]; ok {
		cp := *req
		return &cp, nil
	}
	return nil, nil
}

func (s *Store) ListRequestsByGame(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SquareRequest
	for _, req := range s.requests {
		if req.GameID != gameID {
			continue
		}
		if status != "" && req.Status != status {
			continue
		}
		cp := *req
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (s *Store) ListRequestsByPlayer(ctx context.Context, playerID string) ([]*models.SquareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SquareRequest
	for _, req := range s.requests {
		if req.PlayerID == playerID {
			cp := *req
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedAt.After(out[j].RequestedAt) })
	return out, nil
}

func (s *Store) MarkRequestApproved(ctx context.Context, gameID, requestID string) (*models.SquareRequest, error) {
	return s.processRequest(gameID, requestID, models.RequestApproved, "")
}

func (s *Store) MarkRequestRejected(ctx context.Context, gameID, requestID, reason string) (*models.SquareRequest, error) {
	return s.processRequest(gameID, requestID, models.RequestRejected, reason)
}

func (s *Store) processRequest(gameID, requestID, to, reason string) (*models.SquareRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[requestID]
	if !ok || req.GameID != gameID || req.Status != models.RequestPending {
		return nil, nil
	}
	now := time.Now().UTC()
	req.Status = to
	req.ProcessedAt = &now
	if reason != "" {
		req.RejectionReason = reason
	}
	cp := *req
	return &cp, nil
}

// Per-entity views expose the shared state under the exact store
// interfaces the services consume.

type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s} }

func (v *Users) Create(ctx context.Context, user *models.User) error {
	return v.s.Create(ctx, user)
}

func (v *Users) GetByID(ctx context.Context, id string) (*models.User, error) {
	return v.s.GetByID(ctx, id)
}

func (v *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return v.s.GetByEmail(ctx, email)
}

func (v *Users) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return v.s.GetByUsername(ctx, username)
}

func (v *Users) DisplayNameExists(ctx context.Context, displayName string) (bool, error) {
	return v.s.DisplayNameExists(ctx, displayName)
}

type Games struct{ s *Store }

func (s *Store) Games() *Games { return &Games{s} }

func (v *Games) Create(ctx context.Context, game *models.Game) error {
	return v.s.CreateGame(ctx, game)
}

func (v *Games) Publish(ctx context.Context, gameID string) error {
	return v.s.Publish(ctx, gameID)
}

func (v *Games) Delete(ctx context.Context, gameID string) error {
	return v.s.Delete(ctx, gameID)
}

func (v *Games) GetByID(ctx context.Context, gameID string) (*models.Game, error) {
	return v.s.GetGameByID(ctx, gameID)
}

func (v *Games) List(ctx context.Context, status string, limit int, cursor string) ([]*models.Game, string, error) {
	return v.s.List(ctx, status, limit, cursor)
}

func (v *Games) AssignNumbers(ctx context.Context, gameID string, rowNumbers, colNumbers []int) (*models.Game, error) {
	return v.s.AssignNumbers(ctx, gameID, rowNumbers, colNumbers)
}

func (v *Games) UpdateStatus(ctx context.Context, gameID, from, to string) (*models.Game, error) {
	return v.s.UpdateStatus(ctx, gameID, from, to)
}

func (v *Games) UpdateScores(ctx context.Context, gameID string, scores map[string]int) (*models.Game, error) {
	return v.s.UpdateScores(ctx, gameID, scores)
}

func (v *Games) UpdateDetails(ctx context.Context, game *models.Game) (*models.Game, error) {
	return v.s.UpdateDetails(ctx, game)
}

type Squares struct{ s *Store }

func (s *Store) Squares() *Squares { return &Squares{s} }

func (v *Squares) CreateAll(ctx context.Context, gameID string, squares []*models.Square) error {
	return v.s.CreateAll(ctx, gameID, squares)
}

func (v *Squares) ListByGame(ctx context.Context, gameID string) ([]*models.Square, error) {
	return v.s.ListByGame(ctx, gameID)
}

func (v *Squares) ListByPlayer(ctx context.Context, playerID string) ([]*models.Square, error) {
	return v.s.ListByPlayer(ctx, playerID)
}

func (v *Squares) Get(ctx context.Context, gameID string, row, col int) (*models.Square, error) {
	return v.s.Get(ctx, gameID, row, col)
}

func (v *Squares) GetByID(ctx context.Context, squareID string) (*models.Square, error) {
	return v.s.GetSquareByID(ctx, squareID)
}

func (v *Squares) MarkRequested(ctx context.Context, gameID string, row, col int, playerID, playerDisplayName string) (*models.Square, error) {
	return v.s.MarkRequested(ctx, gameID, row, col, playerID, playerDisplayName)
}

func (v *Squares) MarkApproved(ctx context.Context, gameID string, row, col int, playerID string) (*models.Square, error) {
	return v.s.MarkSquareApproved(ctx, gameID, row, col, playerID)
}

func (v *Squares) Release(ctx context.Context, gameID string, row, col int, fromStatus string) (*models.Square, error) {
	return v.s.Release(ctx, gameID, row, col, fromStatus)
}

type Requests struct{ s *Store }

func (s *Store) Requests() *Requests { return &Requests{s} }

func (v *Requests) Create(ctx context.Context, req *models.SquareRequest) error {
	return v.s.CreateRequest(ctx, req)
}

func (v *Requests) GetByID(ctx context.Context, requestID string) (*models.SquareRequest, error) {
	return v.s.GetRequestByID(ctx, requestID)
}

func (v *Requests) ListByGame(ctx context.Context, gameID, status string) ([]*models.SquareRequest, error) {
	return v.s.ListRequestsByGame(ctx, gameID, status)
}

func (v *Requests) ListByPlayer(ctx context.Context, playerID string) ([]*models.SquareRequest, error) {
	return v.s.ListRequestsByPlayer(ctx, playerID)
}

func (v *Requests) MarkApproved(ctx context.Context, gameID, requestID string) (*models.SquareRequest, error) {
	return v.s.MarkRequestApproved(ctx, gameID, requestID)
}

func (v *Requests) MarkRejected(ctx context.Context, gameID, requestID, reason string) (*models.SquareRequest, error) {
	return v.s.MarkRequestRejected(ctx, gameID, requestID, reason)
}
