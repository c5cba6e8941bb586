package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregd453/BVSquares/internal/apperr"
	"github.com/gregd453/BVSquares/internal/squaresvc/models"
	"github.com/gregd453/BVSquares/internal/squaresvc/service"
	"github.com/gregd453/BVSquares/internal/squaresvc/store/mock"
	"github.com/gregd453/BVSquares/internal/validation"
)

func setup(t *testing.T) (*service.UserService, *service.GameService, *service.SquareService, *mock.Store) {
	t.Helper()
	st := mock.NewStore()
	userSvc := service.NewUserService(st.Users())
	gameSvc := service.NewGameService(st.Games(), st.Squares())
	squareSvc := service.NewSquareService(st.Games(), st.Squares(), st.Requests())
	return userSvc, gameSvc, squareSvc, st
}

func gameInput() validation.GameInput {
	return validation.GameInput{
		Name:     "Sunday Showdown",
		Sport:    models.SportFootball,
		HomeTeam: "Hawks",
		AwayTeam: "Wolves",
		GameDate: time.Now().Add(48 * time.Hour),
		PayoutStructure: models.PayoutStructure{
			FirstQuarter: 25, SecondQuarter: 25, ThirdQuarter: 25, FinalScore: 25,
		},
	}
}

func player(id, name string) *models.User {
	return &models.User{ID: id, Username: id, DisplayName: name, UserType: models.UserTypePlayer}
}

func TestCreateGame_CreatesFullGrid(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusSetup, game.Status)

	squares, err := squareSvc.ListByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, squares, 100)

	seen := map[string]bool{}
	for _, sq := range squares {
		assert.Equal(t, models.SquareAvailable, sq.Status)
		key := fmt.Sprintf("%d-%d", sq.Row, sq.Col)
		assert.False(t, seen[key], "duplicate square at %s", key)
		seen[key] = true
	}
	assert.Len(t, seen, 100)
}

func TestCreateGame_RejectsBadPayout(t *testing.T) {
	_, gameSvc, _, st := setup(t)
	ctx := context.Background()

	in := gameInput()
	in.PayoutStructure = models.PayoutStructure{
		FirstQuarter: 30, SecondQuarter: 30, ThirdQuarter: 30, FinalScore: 20,
	}

	_, err := gameSvc.Create(ctx, in)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// nothing was written before validation failed
	games, _, listErr := st.Games().List(ctx, models.GameStatusSetup, 10, "")
	require.NoError(t, listErr)
	assert.Empty(t, games)
}

func TestCreateGame_PartialSquareCreationBackedOut(t *testing.T) {
	_, gameSvc, _, st := setup(t)
	ctx := context.Background()

	st.FailSquareCreation = true
	st.PartialSquares = 40

	_, err := gameSvc.Create(ctx, gameInput())
	require.Error(t, err)

	games, _, listErr := st.Games().List(ctx, models.GameStatusSetup, 10, "")
	require.NoError(t, listErr)
	assert.Empty(t, games, "half-built game must not be visible")
}

func TestRequestSquare(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	req, err := squareSvc.Request(ctx, game.ID, 3, 4, player("u1", "Player One"))
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, req.Status)
	assert.Equal(t, 3, req.Row)
	assert.Equal(t, 4, req.Col)

	sq, err := squareSvc.ListByGame(ctx, game.ID)
	require.NoError(t, err)
	target := findSquare(sq, 3, 4)
	assert.Equal(t, models.SquareRequested, target.Status)
	assert.Equal(t, "u1", target.PlayerID)
	assert.Equal(t, "Player One", target.PlayerDisplayName)
}

func TestRequestSquare_NotAvailableFails(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	_, err = squareSvc.Request(ctx, game.ID, 3, 4, player("u1", "Player One"))
	require.NoError(t, err)

	// second player hits the same cell
	_, err = squareSvc.Request(ctx, game.ID, 3, 4, player("u2", "Player Two"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	// square still belongs to the first requester
	squares, _ := squareSvc.ListByGame(ctx, game.ID)
	target := findSquare(squares, 3, 4)
	assert.Equal(t, models.SquareRequested, target.Status)
	assert.Equal(t, "u1", target.PlayerID)
}

func TestRequestSquare_InvalidPosition(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	_, err = squareSvc.Request(ctx, game.ID, 10, 0, player("u1", "Player One"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestRequestSquare_GameNotInSetup(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)
	_, err = gameSvc.AssignNumbers(ctx, game.ID)
	require.NoError(t, err)

	_, err = squareSvc.Request(ctx, game.ID, 0, 0, player("u1", "Player One"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestApproveRequest(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	req, err := squareSvc.Request(ctx, game.ID, 3, 4, player("u1", "Player One"))
	require.NoError(t, err)

	approved, err := squareSvc.Approve(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestApproved, approved.Status)
	require.NotNil(t, approved.ProcessedAt)

	squares, _ := squareSvc.ListByGame(ctx, game.ID)
	target := findSquare(squares, 3, 4)
	assert.Equal(t, models.SquareApproved, target.Status)
	assert.Equal(t, approved.PlayerID, target.PlayerID)

	// approving again fails
	_, err = squareSvc.Approve(ctx, req.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestApproveRequest_UnknownID(t *testing.T) {
	_, _, squareSvc, _ := setup(t)
	_, err := squareSvc.Approve(context.Background(), "nope")
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestRejectRequest_RevertsSquare(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	req, err := squareSvc.Request(ctx, game.ID, 5, 5, player("u1", "Player One"))
	require.NoError(t, err)

	rejected, err := squareSvc.Reject(ctx, req.ID, "duplicate claim")
	require.NoError(t, err)
	assert.Equal(t, models.RequestRejected, rejected.Status)
	assert.Equal(t, "duplicate claim", rejected.RejectionReason)

	squares, _ := squareSvc.ListByGame(ctx, game.ID)
	target := findSquare(squares, 5, 5)
	assert.Equal(t, models.SquareAvailable, target.Status)
	assert.Empty(t, target.PlayerID)
	assert.Empty(t, target.PlayerDisplayName)

	// a rejected square can be requested again
	_, err = squareSvc.Request(ctx, game.ID, 5, 5, player("u2", "Player Two"))
	require.NoError(t, err)
}

func TestCancelRequest(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	_, err = squareSvc.Request(ctx, game.ID, 2, 2, player("u1", "Player One"))
	require.NoError(t, err)

	squares, _ := squareSvc.ListByGame(ctx, game.ID)
	target := findSquare(squares, 2, 2)

	// only the requester may cancel
	err = squareSvc.Cancel(ctx, target.ID, "u2")
	require.Error(t, err)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	require.NoError(t, squareSvc.Cancel(ctx, target.ID, "u1"))

	squares, _ = squareSvc.ListByGame(ctx, game.ID)
	assert.Equal(t, models.SquareAvailable, findSquare(squares, 2, 2).Status)

	reqs, err := squareSvc.ListPlayerRequests(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, models.RequestRejected, reqs[0].Status)
}

func TestRemoveSquare(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	req, err := squareSvc.Request(ctx, game.ID, 1, 1, player("u1", "Player One"))
	require.NoError(t, err)
	_, err = squareSvc.Approve(ctx, req.ID)
	require.NoError(t, err)

	squares, _ := squareSvc.ListByGame(ctx, game.ID)
	target := findSquare(squares, 1, 1)

	require.NoError(t, squareSvc.Remove(ctx, game.ID, target.ID))

	squares, _ = squareSvc.ListByGame(ctx, game.ID)
	released := findSquare(squares, 1, 1)
	assert.Equal(t, models.SquareAvailable, released.Status)
	assert.Empty(t, released.PlayerID)
}

func TestAssignNumbers_OnceOnly(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	active, err := gameSvc.AssignNumbers(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusActive, active.Status)
	assertPermutation(t, active.RowNumbers)
	assertPermutation(t, active.ColNumbers)

	// second call fails and the numbers stay put
	_, err = gameSvc.AssignNumbers(ctx, game.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	after, err := gameSvc.Get(ctx, game.ID)
	require.NoError(t, err)
	assert.Equal(t, active.RowNumbers, after.RowNumbers)
	assert.Equal(t, active.ColNumbers, after.ColNumbers)
}

func TestUpdateStatus_CompleteActiveGame(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	// a setup game cannot be completed directly
	_, err = gameSvc.UpdateStatus(ctx, game.ID, models.GameStatusCompleted)
	require.Error(t, err)

	_, err = gameSvc.AssignNumbers(ctx, game.ID)
	require.NoError(t, err)

	done, err := gameSvc.UpdateStatus(ctx, game.ID, models.GameStatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.GameStatusCompleted, done.Status)
}

func TestUpdateScores(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	home, away := 17, 13
	updated, err := gameSvc.UpdateScores(ctx, game.ID, validation.ScoreInput{HomeQ1: &home, AwayQ1: &away})
	require.NoError(t, err)
	require.NotNil(t, updated.Scores.HomeQ1)
	assert.Equal(t, 17, *updated.Scores.HomeQ1)
	assert.Equal(t, 13, *updated.Scores.AwayQ1)

	bad := 1234
	_, err = gameSvc.UpdateScores(ctx, game.ID, validation.ScoreInput{HomeQ2: &bad})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestWinners(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	req, err := squareSvc.Request(ctx, game.ID, 3, 4, player("u1", "Player One"))
	require.NoError(t, err)
	_, err = squareSvc.Approve(ctx, req.ID)
	require.NoError(t, err)

	active, err := gameSvc.AssignNumbers(ctx, game.ID)
	require.NoError(t, err)

	// pick scores whose last digits land on the approved square (3,4)
	home := 10 + active.RowNumbers[3]
	away := 20 + active.ColNumbers[4]
	_, err = gameSvc.UpdateScores(ctx, game.ID, validation.ScoreInput{HomeQ1: &home, AwayQ1: &away})
	require.NoError(t, err)

	winners, err := gameSvc.Winners(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, models.PeriodQ1, winners[0].Period)
	assert.Equal(t, "u1", winners[0].PlayerID)
	assert.Equal(t, "Player One", winners[0].PlayerDisplayName)
	assert.Equal(t, 25, winners[0].Payout)
}

func TestWinners_RequiresAssignedNumbers(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	_, err = gameSvc.Winners(ctx, game.ID)
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestListGames_PaginationRoundTrip(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	created := map[string]bool{}
	for i := 0; i < 23; i++ {
		in := gameInput()
		in.Name = fmt.Sprintf("Game %02d", i)
		in.GameDate = time.Now().Add(time.Duration(24+i) * time.Hour)
		game, err := gameSvc.Create(ctx, in)
		require.NoError(t, err)
		created[game.ID] = true
	}

	seen := map[string]bool{}
	cursor := ""
	pages := 0
	for {
		page, err := gameSvc.List(ctx, models.GameStatusSetup, 7, cursor)
		require.NoError(t, err)
		for _, g := range page.Items {
			assert.False(t, seen[g.ID], "duplicate game %s across pages", g.ID)
			seen[g.ID] = true
		}
		pages++
		require.Less(t, pages, 10, "pagination did not terminate")
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	assert.Equal(t, len(created), len(seen), "pagination missed games")
	assert.Equal(t, 4, pages)
}

func TestListGames_MalformedCursorIsValidation(t *testing.T) {
	_, gameSvc, _, _ := setup(t)
	ctx := context.Background()

	_, err := gameSvc.List(ctx, models.GameStatusSetup, 7, "not a cursor!!")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestListGames_StoreFailureIsInternal(t *testing.T) {
	_, gameSvc, _, st := setup(t)
	ctx := context.Background()

	st.FailGameListing = true
	_, err := gameSvc.List(ctx, models.GameStatusSetup, 7, "")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestLifecycleScenario(t *testing.T) {
	_, gameSvc, squareSvc, _ := setup(t)
	ctx := context.Background()

	game, err := gameSvc.Create(ctx, gameInput())
	require.NoError(t, err)

	squares, err := squareSvc.ListByGame(ctx, game.ID)
	require.NoError(t, err)
	require.Len(t, squares, 100)
	for _, sq := range squares {
		require.Equal(t, models.SquareAvailable, sq.Status)
	}

	req, err := squareSvc.Request(ctx, game.ID, 3, 4, player("u1", "Player One"))
	require.NoError(t, err)

	squares, _ = squareSvc.ListByGame(ctx, game.ID)
	require.Equal(t, models.SquareRequested, findSquare(squares, 3, 4).Status)

	approved, err := squareSvc.Approve(ctx, req.ID)
	require.NoError(t, err)
	require.Equal(t, models.RequestApproved, approved.Status)

	squares, _ = squareSvc.ListByGame(ctx, game.ID)
	require.Equal(t, models.SquareApproved, findSquare(squares, 3, 4).Status)

	active, err := gameSvc.AssignNumbers(ctx, game.ID)
	require.NoError(t, err)
	require.Equal(t, models.GameStatusActive, active.Status)
	assertPermutation(t, active.RowNumbers)
	assertPermutation(t, active.ColNumbers)
}

func TestRegister_And_Authenticate(t *testing.T) {
	userSvc, _, _, _ := setup(t)
	ctx := context.Background()

	in := validation.RegisterInput{
		Username:        "player_1",
		Email:           "p1@example.com",
		DisplayName:     "Player One",
		Password:        "secret-password",
		ConfirmPassword: "secret-password",
	}
	user, err := userSvc.Register(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, models.UserTypePlayer, user.UserType)
	assert.NotEqual(t, "secret-password", user.PasswordHash)

	// duplicate email
	dup := in
	dup.Username = "player_2"
	dup.DisplayName = "Player Two"
	_, err = userSvc.Register(ctx, dup)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	// duplicate display name
	dup = in
	dup.Username = "player_3"
	dup.Email = "p3@example.com"
	_, err = userSvc.Register(ctx, dup)
	require.Error(t, err)

	got, err := userSvc.Authenticate(ctx, "player_1", "secret-password")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = userSvc.Authenticate(ctx, "player_1", "wrong-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	_, err = userSvc.Authenticate(ctx, "ghost", "secret-password")
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func findSquare(squares []*models.Square, row, col int) *models.Square {
	for _, sq := range squares {
		if sq.Row == row && sq.Col == col {
			return sq
		}
	}
	return nil
}

func assertPermutation(t *testing.T, nums []int) {
	t.Helper()
	require.Len(t, nums, 10)
	seen := map[int]bool{}
	for _, n := range nums {
		require.GreaterOrEqual(t, n, 0)
		require.LessOrEqual(t, n, 9)
		require.False(t, seen[n], "digit %d repeated", n)
		seen[n] = true
	}
}
