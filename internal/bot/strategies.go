package bot

import (
	"math/rand/v2"

	"mineseeker/internal/domain"
)

// RandomBot reveals a uniformly chosen hidden cell.
type RandomBot struct {
	rng *rand.Rand
}

func (b *RandomBot) CalculateMove(view domain.View) (Move, error) {
	hidden := cellsInState(view, domain.CellHidden)
	if len(hidden) == 0 {
		return Move{}, ErrNoMove
	}
	return Move{Kind: MoveReveal, Cell: hidden[b.rng.IntN(len(hidden))]}, nil
}

// SolverBot applies single-cell deductions around revealed numbers and falls
// back to a guess when nothing is certain.
type SolverBot struct {
	fallback Brain
}

func (b *SolverBot) CalculateMove(view domain.View) (Move, error) {
	for r, row := range view.Cells {
		for c, cell := range row {
			if cell.State != domain.CellRevealed || cell.Count == 0 {
				continue
			}
			hidden, flagged := neighbours(view, r, c)
			if len(hidden) == 0 {
				continue
			}
			// Every remaining mine is accounted for: the rest is safe.
			if flagged == cell.Count {
				return Move{Kind: MoveReveal, Cell: hidden[0]}, nil
			}
			// Every hidden neighbour must be a mine.
			if flagged+len(hidden) == cell.Count {
				return Move{Kind: MoveFlag, Cell: hidden[0]}, nil
			}
		}
	}
	return b.fallback.CalculateMove(view)
}

func neighbours(view domain.View, row, col int) (hidden []domain.Coord, flagged int) {
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			r, c := row+dr, col+dc
			if (dr == 0 && dc == 0) || r < 0 || c < 0 || r >= view.Dimension || c >= view.Dimension {
				continue
			}
			switch view.Cells[r][c].State {
			case domain.CellHidden:
				hidden = append(hidden, domain.Coord{Row: r, Col: c})
			case domain.CellFlagged:
				flagged++
			}
		}
	}
	return hidden, flagged
}

func cellsInState(view domain.View, state domain.CellState) []domain.Coord {
	var out []domain.Coord
	for r, row := range view.Cells {
		for c, cell := range row {
			if cell.State == state {
				out = append(out, domain.Coord{Row: r, Col: c})
			}
		}
	}
	return out
}
