// Package grid reconciles a flat square list into the 10x10 game grid
// and derives the interactions a viewer is allowed on each cell.
package grid

import (
	"fmt"

	"github.com/gregd453/BVSquares/internal/squaresvc/models"
)

// Grid is the assembled 10x10 board, indexed [row][col].
type Grid struct {
	Cells [models.GridSize][models.GridSize]*models.Square
}

// Build maps a flat square list onto the grid. It fails when the list
// is not exactly one square per (row, col) cell.
func Build(squares []*models.Square) (*Grid, error) {
	if len(squares) != models.GridSize*models.GridSize {
		return nil, fmt.Errorf("expected %d squares, got %d", models.GridSize*models.GridSize, len(squares))
	}

	g := &Grid{}
	for _, sq := range squares {
		if sq.Row < 0 || sq.Row >= models.GridSize || sq.Col < 0 || sq.Col >= models.GridSize {
			return nil, fmt.Errorf("square %s out of range at (%d,%d)", sq.ID, sq.Row, sq.Col)
		}
		if g.Cells[sq.Row][sq.Col] != nil {
			return nil, fmt.Errorf("duplicate square at (%d,%d)", sq.Row, sq.Col)
		}
		g.Cells[sq.Row][sq.Col] = sq
	}
	return g, nil
}

// At returns the square at (row, col).
func (g *Grid) At(row, col int) *models.Square {
	return g.Cells[row][col]
}

// CountByStatus tallies squares per status.
func (g *Grid) CountByStatus() map[string]int {
	counts := map[string]int{}
	for _, row := range g.Cells {
		for _, sq := range row {
			counts[sq.Status]++
		}
	}
	return counts
}

// CanRequest reports whether the viewer may claim the square: the game
// is still in setup, the square is unclaimed and the viewer is signed in.
func CanRequest(sq *models.Square, gameStatus, viewerID string) bool {
	return gameStatus == models.GameStatusSetup &&
		sq.Status == models.SquareAvailable &&
		viewerID != ""
}

// CanCancel reports whether the viewer may withdraw a pending claim on
// the square. Only the requester, and only before approval.
func CanCancel(sq *models.Square, gameStatus, viewerID string) bool {
	return gameStatus == models.GameStatusSetup &&
		sq.Status == models.SquareRequested &&
		viewerID != "" &&
		sq.PlayerID == viewerID
}
