package domain

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every violation reported by Validate.
var ErrInvariant = errors.New("session invariant violated")

// Validate checks the board and session invariants: the mine total, every
// neighbour count, the flag counter, cell states against the status and the
// win condition.
func (s *GameSession) Validate() error {
	b := s.board
	if got := b.CountMines(); got != b.MineCount {
		return fmt.Errorf("%w: %d mines on board, want %d", ErrInvariant, got, b.MineCount)
	}

	exploded := 0
	for r := 0; r < b.Dimension; r++ {
		for c := 0; c < b.Dimension; c++ {
			cell := b.Cells[r][c]
			if !cell.Content.IsMine() {
				if want := b.adjacentMines(r, c); cell.Content != want {
					return fmt.Errorf("%w: cell (%d,%d) count %d, want %d", ErrInvariant, r, c, cell.Content, want)
				}
			}
			switch cell.State {
			case CellExploded:
				if !cell.Content.IsMine() {
					return fmt.Errorf("%w: exploded cell (%d,%d) is not a mine", ErrInvariant, r, c)
				}
				exploded++
			case CellRevealed:
				if cell.Content.IsMine() {
					return fmt.Errorf("%w: mine (%d,%d) revealed without exploding", ErrInvariant, r, c)
				}
			}
		}
	}

	if got := b.CountState(CellFlagged); got != s.flagCount {
		return fmt.Errorf("%w: flag count %d, %d cells flagged", ErrInvariant, s.flagCount, got)
	}
	if (s.status == StatusLost) != (exploded == 1) || exploded > 1 {
		return fmt.Errorf("%w: status %s with %d exploded cells", ErrInvariant, s.status, exploded)
	}
	if s.status != StatusLost && (s.status == StatusWon) != s.CheckWin() {
		return fmt.Errorf("%w: status %s disagrees with win condition", ErrInvariant, s.status)
	}
	return nil
}
