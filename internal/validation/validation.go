package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

var (
	emailRe    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

func ValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// ValidUsername accepts 3-20 characters of letters, digits and underscores.
func ValidUsername(username string) bool {
	return usernameRe.MatchString(username)
}

func ValidDisplayName(displayName string) bool {
	return len(displayName) >= 2 && len(displayName) <= 30
}

func ValidPassword(password string) bool {
	return len(password) >= 8
}

// RegisterInput is the registration form payload.
type RegisterInput struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	DisplayName     string `json:"displayName"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ValidateRegister returns a map of field name to message for every
// failing field. An empty map means the input is valid.
func ValidateRegister(in RegisterInput) map[string]string {
	errs := map[string]string{}

	switch {
	case in.Username == "":
		errs["username"] = "Username is required"
	case !ValidUsername(in.Username):
		errs["username"] = "Username must be 3-20 characters, letters, numbers, and underscores only"
	}

	switch {
	case in.Email == "":
		errs["email"] = "Email is required"
	case !ValidEmail(in.Email):
		errs["email"] = "Please enter a valid email address"
	}

	switch {
	case in.DisplayName == "":
		errs["displayName"] = "Display name is required"
	case !ValidDisplayName(in.DisplayName):
		errs["displayName"] = "Display name must be 2-30 characters"
	}

	switch {
	case in.Password == "":
		errs["password"] = "Password is required"
	case !ValidPassword(in.Password):
		errs["password"] = "Password must be at least 8 characters"
	}

	switch {
	case in.ConfirmPassword == "":
		errs["confirmPassword"] = "Please confirm your password"
	case in.Password != in.ConfirmPassword:
		errs["confirmPassword"] = "Passwords do not match"
	}

	return errs
}

// GameInput is the game creation/update form payload.
type GameInput struct {
	Name            string                 `json:"name"`
	Sport           string                 `json:"sport"`
	HomeTeam        string                 `json:"homeTeam"`
	AwayTeam        string                 `json:"awayTeam"`
	GameDate        time.Time              `json:"gameDate"`
	PayoutStructure models.PayoutStructure `json:"payoutStructure"`
}

func validSport(sport string) bool {
	switch sport {
	case models.SportFootball, models.SportBasketball, models.SportSoccer:
		return true
	}
	return false
}

// ValidateGame checks the game form, including the payout-structure
// sum-to-100 invariant.
func ValidateGame(in GameInput) map[string]string {
	errs := map[string]string{}

	switch {
	case in.Name == "":
		errs["name"] = "Game name is required"
	case len(in.Name) < 3 || len(in.Name) > 100:
		errs["name"] = "Game name must be 3-100 characters"
	}

	switch {
	case in.Sport == "":
		errs["sport"] = "Sport is required"
	case !validSport(in.Sport):
		errs["sport"] = "Sport must be football, basketball or soccer"
	}

	switch {
	case in.HomeTeam == "":
		errs["homeTeam"] = "Home team is required"
	case len(in.HomeTeam) < 2 || len(in.HomeTeam) > 50:
		errs["homeTeam"] = "Team name must be 2-50 characters"
	}

	switch {
	case in.AwayTeam == "":
		errs["awayTeam"] = "Away team is required"
	case len(in.AwayTeam) < 2 || len(in.AwayTeam) > 50:
		errs["awayTeam"] = "Team name must be 2-50 characters"
	}

	if in.HomeTeam != "" && in.HomeTeam == in.AwayTeam {
		errs["awayTeam"] = "Home and away teams must be different"
	}

	switch {
	case in.GameDate.IsZero():
		errs["gameDate"] = "Game date is required"
	case in.GameDate.Before(time.Now()):
		errs["gameDate"] = "Game date must be in the future"
	}

	if in.PayoutStructure.Total() != 100 {
		errs["payoutStructure"] = "Payout percentages must total 100%"
	}

	return errs
}

// ScoreInput carries a partial score update. Nil fields are left alone.
type ScoreInput struct {
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

// ValidateScores bounds every supplied score to 0-999.
func ValidateScores(in ScoreInput) map[string]string {
	errs := map[string]string{}
	fields := map[string]*int{
		"homeQ1": in.HomeQ1, "awayQ1": in.AwayQ1,
		"homeQ2": in.HomeQ2, "awayQ2": in.AwayQ2,
		"homeQ3": in.HomeQ3, "awayQ3": in.AwayQ3,
		"homeQ4": in.HomeQ4, "awayQ4": in.AwayQ4,
		"homeFinal": in.HomeFinal, "awayFinal": in.AwayFinal,
	}
	for name, v := range fields {
		if v != nil && (*v < 0 || *v > 999) {
			errs[name] = "Score must be between 0 and 999"
		}
	}
	return errs
}

// ValidPosition reports whether (row, col) addresses a grid cell.
func ValidPosition(row, col int) bool {
	return row >= 0 && row < models.GridSize && col >= 0 && col < models.GridSize
}

// SanitizeInput trims whitespace and strips angle brackets.
func SanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r == '<' || r == '>' {
			return -1
		}
		return r
	}, s)
}

// SanitizeDisplayName additionally strips characters with HTML meaning.
func SanitizeDisplayName(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '&', '"', '\'':
			return -1
		}
		return r
	}, s)
}
