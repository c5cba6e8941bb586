package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

func TestGameStatus(t *testing.T) {
	assert.Equal(t, "Setup", GameStatus(models.GameStatusSetup))
	assert.Equal(t, "Active", GameStatus(models.GameStatusActive))
	assert.Equal(t, "Completed", GameStatus(models.GameStatusCompleted))
	assert.Equal(t, "Unknown", GameStatus("bogus"))
}

func TestSport(t *testing.T) {
	assert.Equal(t, "Football", Sport(models.SportFootball))
	assert.Equal(t, "hurling", Sport("hurling"))
}

func TestScore(t *testing.T) {
	n := 17
	assert.Equal(t, "17", Score(&n))
	assert.Equal(t, "-", Score(nil))
}

func TestLastDigit(t *testing.T) {
	assert.Equal(t, 7, LastDigit(17))
	assert.Equal(t, 0, LastDigit(30))
	assert.Equal(t, 3, LastDigit(3))
}

func TestSquareHelpers(t *testing.T) {
	assert.Equal(t, "Row 3, Col 4", SquarePosition(3, 4))
	assert.Equal(t, "g1-3-4", SquareID("g1", 3, 4))
}

func TestWinnerPeriod(t *testing.T) {
	assert.Equal(t, "1st Quarter", WinnerPeriod(models.PeriodQ1))
	assert.Equal(t, "Final Score", WinnerPeriod(models.PeriodFinal))
	assert.Equal(t, "OT", WinnerPeriod("OT"))
}

func TestTimeAgo(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{time.Minute, "1 minute ago"},
		{5 * time.Minute, "5 minutes ago"},
		{time.Hour, "1 hour ago"},
		{26 * time.Hour, "1 day ago"},
		{80 * time.Hour, "3 days ago"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TimeAgo(now.Add(-tt.ago), now))
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Shorty", DisplayName("Shorty"))
	assert.Equal(t, "A Very Long ...", DisplayName("A Very Long Display Name"))
}

func TestPayout(t *testing.T) {
	assert.Equal(t, "25%", Payout(25))
}
