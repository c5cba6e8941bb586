package service

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/format"
	"github.com/gregd453/BVSquares/internal/squaresvc/grid"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/squaresvc/store"
	"github.com/gregd453/BVSquares/internal/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type GameService struct {
	gameStore   GameStore
	squareStore SquareStore
}

func NewGameService(gameStore GameStore, squareStore SquareStore) *GameService {
	return &GameService{gameStore: gameStore, squareStore: squareStore}
}

// PagedGames is one page of a games listing.
type PagedGames struct {
	Items      []*models.Game `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
	Count      int            `json:"count"`
}

// Create validates the game form and creates the game together with
// its 100 squares. The game is only published into listings once every
// square exists; on a partial failure the whole partition is backed
// out so no half-built grid survives.
func (s *GameService) Create(ctx context.Context, in validation.GameInput) (*models.Game, error) {
	in.Name = validation.SanitizeInput(in.Name)
	in.HomeTeam = validation.SanitizeInput(in.HomeTeam)
	in.AwayTeam = validation.SanitizeInput(in.AwayTeam)

	if errs := validation.ValidateGame(in); len(errs) > 0 {
		return nil, apperr.ValidationFields("invalid game", errs)
	}

	now := time.Now().UTC()
	game := &models.Game{
		ID:              uuid.NewString(),
		Name:            in.Name,
		Sport:           in.Sport,
		HomeTeam:        in.HomeTeam,
		AwayTeam:        in.AwayTeam,
		GameDate:        in.GameDate,
		Status:          models.GameStatusSetup,
		PayoutStructure: in.PayoutStructure,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.gameStore.Create(ctx, game); err != nil {
		return nil, apperr.Internal(err)
	}

	squares := make([]*models.Square, 0, models.GridSize*models.GridSize)
	for row := 0; row < models.GridSize; row++ {
		for col := 0; col < models.GridSize; col++ {
			squares = append(squares, &models.Square{
				ID:        format.SquareID(game.ID, row, col),
				GameID:    game.ID,
				Row:       row,
				Col:       col,
				Status:    models.SquareAvailable,
				CreatedAt: now,
			})
		}
	}

	if err := s.squareStore.CreateAll(ctx, game.ID, squares); err != nil {
		if delErr := s.gameStore.Delete(ctx, game.ID); delErr != nil {
			log.Errorf("failed to back out game %s after square creation failure: %v", game.ID, delErr)
		}
		return nil, apperr.Wrap(err, apperr.KindInternal, "game creation failed")
	}

	if err := s.gameStore.Publish(ctx, game.ID); err != nil {
		return nil, apperr.Internal(err)
	}
	return game, nil
}

func (s *GameService) Get(ctx context.Context, gameID string) (*models.Game, error) {
	game, err := s.gameStore.GetByID(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if game == nil {
		return nil, apperr.NotFound("game not found")
	}
	return game, nil
}

// List pages games of one status, defaulting to setup like the games
// browser does.
func (s *GameService) List(ctx context.Context, status string, limit int, cursor string) (*PagedGames, error) {
	if status == "" {
		status = models.GameStatusSetup
	}
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, next, err := s.gameStore.List(ctx, status, limit, cursor)
	if err != nil {
		// a bad cursor is the client's mistake, everything else is ours
		if errors.Is(err, store.ErrInvalidCursor) {
			return nil, apperr.Wrap(err, apperr.KindValidation, "invalid pagination cursor")
		}
		return nil, apperr.Internal(err)
	}
	return &PagedGames{Items: items, NextCursor: next, Count: len(items)}, nil
}

// Update rewrites the editable fields of a game still in setup.
func (s *GameService) Update(ctx context.Context, gameID string, in validation.GameInput) (*models.Game, error) {
	in.Name = validation.SanitizeInput(in.Name)
	in.HomeTeam = validation.SanitizeInput(in.HomeTeam)
	in.AwayTeam = validation.SanitizeInput(in.AwayTeam)

	if errs := validation.ValidateGame(in); len(errs) > 0 {
		return nil, apperr.ValidationFields("invalid game", errs)
	}

	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}

	updated, err := s.gameStore.UpdateDetails(ctx, &models.Game{
		ID:              gameID,
		Name:            in.Name,
		Sport:           in.Sport,
		HomeTeam:        in.HomeTeam,
		AwayTeam:        in.AwayTeam,
		GameDate:        in.GameDate,
		PayoutStructure: in.PayoutStructure,
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		return nil, apperr.Conflict("game can only be edited during setup")
	}
	return updated, nil
}

// AssignNumbers draws two independent random permutations of 0-9,
// persists them and activates the game. The conditional write makes a
// second call fail instead of reassigning.
func (s *GameService) AssignNumbers(ctx context.Context, gameID string) (*models.Game, error) {
	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}

	updated, err := s.gameStore.AssignNumbers(ctx, gameID, rand.Perm(models.GridSize), rand.Perm(models.GridSize))
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		return nil, apperr.Conflict("numbers already assigned or game not in setup")
	}
	return updated, nil
}

// UpdateStatus handles the one remaining manual transition,
// active to completed. Setup to active happens through AssignNumbers.
func (s *GameService) UpdateStatus(ctx context.Context, gameID, to string) (*models.Game, error) {
	if to != models.GameStatusCompleted {
		return nil, apperr.Validation("status can only be set to completed")
	}
	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}

	updated, err := s.gameStore.UpdateStatus(ctx, gameID, models.GameStatusActive, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		return nil, apperr.Conflict("only an active game can be completed")
	}
	return updated, nil
}

// UpdateScores merges a validated partial score update into the game.
func (s *GameService) UpdateScores(ctx context.Context, gameID string, in validation.ScoreInput) (*models.Game, error) {
	if errs := validation.ValidateScores(in); len(errs) > 0 {
		return nil, apperr.ValidationFields("invalid scores", errs)
	}
	if _, err := s.Get(ctx, gameID); err != nil {
		return nil, err
	}

	set := map[string]int{}
	add := func(field string, v *int) {
		if v != nil {
			set[field] = *v
		}
	}
	add("home_q1", in.HomeQ1)
	add("away_q1", in.AwayQ1)
	add("home_q2", in.HomeQ2)
	add("away_q2", in.AwayQ2)
	add("home_q3", in.HomeQ3)
	add("away_q3", in.AwayQ3)
	add("home_q4", in.HomeQ4)
	add("away_q4", in.AwayQ4)
	add("home_final", in.HomeFinal)
	add("away_final", in.AwayFinal)

	if len(set) == 0 {
		return nil, apperr.Validation("no scores supplied")
	}

	updated, err := s.gameStore.UpdateScores(ctx, gameID, set)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if updated == nil {
		return nil, apperr.NotFound("game not found")
	}
	return updated, nil
}

// Winners derives the per-period winners from the recorded scores, the
// assigned grid numbers and the approved squares. Rows carry the home
// digit, columns the away digit.
func (s *GameService) Winners(ctx context.Context, gameID string) ([]models.Winner, error) {
	game, err := s.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !game.NumbersAssigned() {
		return nil, apperr.Conflict("numbers have not been assigned")
	}

	squares, err := s.squareStore.ListByGame(ctx, gameID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	g, err := grid.Build(squares)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	periods := []struct {
		name   string
		home   *int
		away   *int
		payout int
	}{
		{models.PeriodQ1, game.Scores.HomeQ1, game.Scores.AwayQ1, game.PayoutStructure.FirstQuarter},
		{models.PeriodQ2, game.Scores.HomeQ2, game.Scores.AwayQ2, game.PayoutStructure.SecondQuarter},
		{models.PeriodQ3, game.Scores.HomeQ3, game.Scores.AwayQ3, game.PayoutStructure.ThirdQuarter},
		{models.PeriodFinal, game.Scores.HomeFinal, game.Scores.AwayFinal, game.PayoutStructure.FinalScore},
	}

	var winners []models.Winner
	for _, p := range periods {
		if p.home == nil || p.away == nil {
			continue
		}
		homeDigit := format.LastDigit(*p.home)
		awayDigit := format.LastDigit(*p.away)

		row := indexOf(game.RowNumbers, homeDigit)
		col := indexOf(game.ColNumbers, awayDigit)
		if row < 0 || col < 0 {
			return nil, apperr.Conflict("assigned numbers are not a valid permutation")
		}

		w := models.Winner{
			Period:     p.name,
			HomeScore:  *p.home,
			AwayScore:  *p.away,
			HomeNumber: homeDigit,
			AwayNumber: awayDigit,
			Payout:     p.payout,
		}
		if sq := g.At(row, col); sq.Status == models.SquareApproved {
			w.PlayerID = sq.PlayerID
			w.PlayerDisplayName = sq.PlayerDisplayName
		}
		winners = append(winners, w)
	}
	return winners, nil
}

func indexOf(nums []int, digit int) int {
	for i, n := range nums {
		if n == digit {
			return i
		}
	}
	return -1
}
