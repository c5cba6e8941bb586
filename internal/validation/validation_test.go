package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

func validRegister() RegisterInput {
	return RegisterInput{
		Username:        "player_1",
		Email:           "player@example.com",
		DisplayName:     "Player One",
		Password:        "secret-password",
		ConfirmPassword: "secret-password",
	}
}

func TestValidateRegister_Valid(t *testing.T) {
	assert.Empty(t, ValidateRegister(validRegister()))
}

func TestValidateRegister_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{"missing username", func(in *RegisterInput) { in.Username = "" }, "username"},
		{"short username", func(in *RegisterInput) { in.Username = "ab" }, "username"},
		{"bad username chars", func(in *RegisterInput) { in.Username = "no spaces" }, "username"},
		{"missing email", func(in *RegisterInput) { in.Email = "" }, "email"},
		{"bad email", func(in *RegisterInput) { in.Email = "not-an-email" }, "email"},
		{"short display name", func(in *RegisterInput) { in.DisplayName = "x" }, "displayName"},
		{"short password", func(in *RegisterInput) { in.Password = "short"; in.ConfirmPassword = "short" }, "password"},
		{"mismatched confirm", func(in *RegisterInput) { in.ConfirmPassword = "different-pass" }, "confirmPassword"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegister()
			tt.mutate(&in)
			errs := ValidateRegister(in)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func validGame() GameInput {
	return GameInput{
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

func TestValidateGame_Valid(t *testing.T) {
	assert.Empty(t, ValidateGame(validGame()))
}

func TestValidateGame_PayoutMustTotal100(t *testing.T) {
	in := validGame()
	in.PayoutStructure = models.PayoutStructure{
		FirstQuarter: 30, SecondQuarter: 30, ThirdQuarter: 30, FinalScore: 20,
	}
	errs := ValidateGame(in)
	assert.Contains(t, errs, "payoutStructure")
}

func TestValidateGame_FieldErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GameInput)
		field  string
	}{
		{"missing name", func(in *GameInput) { in.Name = "" }, "name"},
		{"short name", func(in *GameInput) { in.Name = "ab" }, "name"},
		{"unknown sport", func(in *GameInput) { in.Sport = "cricket" }, "sport"},
		{"missing home team", func(in *GameInput) { in.HomeTeam = "" }, "homeTeam"},
		{"same teams", func(in *GameInput) { in.AwayTeam = in.HomeTeam }, "awayTeam"},
		{"past date", func(in *GameInput) { in.GameDate = time.Now().Add(-time.Hour) }, "gameDate"},
		{"zero date", func(in *GameInput) { in.GameDate = time.Time{} }, "gameDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validGame()
			tt.mutate(&in)
			errs := ValidateGame(in)
			assert.Contains(t, errs, tt.field)
		})
	}
}

func TestValidateScores(t *testing.T) {
	ok := 21
	tooBig := 1000
	negative := -1

	assert.Empty(t, ValidateScores(ScoreInput{HomeQ1: &ok}))
	assert.Contains(t, ValidateScores(ScoreInput{HomeQ2: &tooBig}), "homeQ2")
	assert.Contains(t, ValidateScores(ScoreInput{AwayFinal: &negative}), "awayFinal")
	assert.Empty(t, ValidateScores(ScoreInput{}))
}

func TestValidPosition(t *testing.T) {
	assert.True(t, ValidPosition(0, 0))
	assert.True(t, ValidPosition(9, 9))
	assert.False(t, ValidPosition(-1, 0))
	assert.False(t, ValidPosition(0, 10))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", SanitizeInput("  <hello>  "))
	assert.Equal(t, "OMalley", SanitizeDisplayName(` O'Malley `))
}
