// Package format holds pure presentation helpers shared by API
// responses and the socket service.
package format

import (
	"fmt"
	"time"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

func Date(t time.Time) string {
	return t.Format("Mon, Jan 2, 2006 3:04 PM")
}

func DateShort(t time.Time) string {
	return t.Format("Jan 2, 3:04 PM")
}

func GameStatus(status string) string {
	switch status {
	case models.GameStatusSetup:
		return "Setup"
	case models.GameStatusActive:
		return "Active"
	case models.GameStatusCompleted:
		return "Completed"
	}
	return "Unknown"
}

func Sport(sport string) string {
	switch sport {
	case models.SportFootball:
		return "Football"
	case models.SportBasketball:
		return "Basketball"
	case models.SportSoccer:
		return "Soccer"
	}
	return sport
}

func Score(score *int) string {
	if score == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *score)
}

// LastDigit is the digit that decides a period winner.
func LastDigit(score int) int {
	return score % 10
}

func SquarePosition(row, col int) string {
	return fmt.Sprintf("Row %d, Col %d", row, col)
}

// SquareID builds the composite cell identifier used on square records.
func SquareID(gameID string, row, col int) string {
	return fmt.Sprintf("%s-%d-%d", gameID, row, col)
}

func WinnerPeriod(period string) string {
	switch period {
	case models.PeriodQ1:
		return "1st Quarter"
	case models.PeriodQ2:
		return "2nd Quarter"
	case models.PeriodQ3:
		return "3rd Quarter"
	case models.PeriodQ4:
		return "4th Quarter"
	case models.PeriodFinal:
		return "Final Score"
	}
	return period
}

func Payout(percent int) string {
	return fmt.Sprintf("%d%%", percent)
}

// TimeAgo renders a coarse relative timestamp.
func TimeAgo(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	default:
		return plural(int(d.Hours()/24), "day")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}

// DisplayName truncates long names for grid cells.
func DisplayName(name string) string {
	if len(name) > 15 {
		return name[:12] + "..."
	}
	return name
}
