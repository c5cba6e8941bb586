package models

import "time"

const (
	GameStatusSetup     = "setup"
	GameStatusActive    = "active"
	GameStatusCompleted = "completed"
)

const (
	SportFootball   = "football"
	SportBasketball = "basketball"
	SportSoccer     = "soccer"
)

// PayoutStructure allocates winnings across the four scoring periods.
// The four percentages must sum to exactly 100.
type PayoutStructure struct {
	FirstQuarter  int `json:"firstQuarter" bson:"first_quarter"`
	SecondQuarter int `json:"secondQuarter" bson:"second_quarter"`
	ThirdQuarter  int `json:"thirdQuarter" bson:"third_quarter"`
	FinalScore    int `json:"finalScore" bson:"final_score"`
}

func (p PayoutStructure) Total() int {
	return p.FirstQuarter + p.SecondQuarter + p.ThirdQuarter + p.FinalScore
}

// GameScores holds partial quarter and final scores for both teams.
// Nil means the period has not been recorded yet.
type GameScores struct {
	HomeQ1    *int `json:"homeQ1,omitempty" bson:"home_q1,omitempty"`
	AwayQ1    *int `json:"awayQ1,omitempty" bson:"away_q1,omitempty"`
	HomeQ2    *int `json:"homeQ2,omitempty" bson:"home_q2,omitempty"`
	AwayQ2    *int `json:"awayQ2,omitempty" bson:"away_q2,omitempty"`
	HomeQ3    *int `json:"homeQ3,omitempty" bson:"home_q3,omitempty"`
	AwayQ3    *int `json:"awayQ3,omitempty" bson:"away_q3,omitempty"`
	HomeQ4    *int `json:"homeQ4,omitempty" bson:"home_q4,omitempty"`
	AwayQ4    *int `json:"awayQ4,omitempty" bson:"away_q4,omitempty"`
	HomeFinal *int `json:"homeFinal,omitempty" bson:"home_final,omitempty"`
	AwayFinal *int `json:"awayFinal,omitempty" bson:"away_final,omitempty"`
}

// Game is one squares pool tied to a sports game. RowNumbers and
// ColNumbers stay nil until the admin assigns numbers, at which point
// each is a permutation of the digits 0-9 and the game goes active.
type Game struct {
	ID              string          `json:"id" bson:"id"`
	Name            string          `json:"name" bson:"name"`
	Sport           string          `json:"sport" bson:"sport"`
	HomeTeam        string          `json:"homeTeam" bson:"home_team"`
	AwayTeam        string          `json:"awayTeam" bson:"away_team"`
	GameDate        time.Time       `json:"gameDate" bson:"game_date"`
	Status          string          `json:"status" bson:"status"`
	PayoutStructure PayoutStructure `json:"payoutStructure" bson:"payout_structure"`
	RowNumbers      []int           `json:"rowNumbers,omitempty" bson:"row_numbers,omitempty"`
	ColNumbers      []int           `json:"colNumbers,omitempty" bson:"col_numbers,omitempty"`
	Scores          GameScores      `json:"scores" bson:"scores"`
	CreatedAt       time.Time       `json:"createdAt" bson:"created_at"`
	UpdatedAt       time.Time       `json:"updatedAt" bson:"updated_at"`
}

func (g *Game) NumbersAssigned() bool {
	return len(g.RowNumbers) == GridSize && len(g.ColNumbers) == GridSize
}

// Winner periods.
const (
	PeriodQ1    = "Q1"
	PeriodQ2    = "Q2"
	PeriodQ3    = "Q3"
	PeriodQ4    = "Q4"
	PeriodFinal = "Final"
)

// Winner is the derived result for one scoring period once scores and
// grid numbers are known.
type Winner struct {
	Period            string `json:"period"`
	PlayerID          string `json:"playerId,omitempty"`
	PlayerDisplayName string `json:"playerDisplayName,omitempty"`
	HomeScore         int    `json:"homeScore"`
	AwayScore         int    `json:"awayScore"`
	HomeNumber        int    `json:"homeNumber"`
	AwayNumber        int    `json:"awayNumber"`
	Payout            int    `json:"payout"`
}
