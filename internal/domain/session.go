package domain

import (
	"fmt"
	"math/rand/v2"
)

// Status is the lifecycle state of a game session.
type Status string

const (
	// StatusInProgress accepts reveals and flags.
	StatusInProgress Status = "in_progress"
	// StatusLost is reached by revealing a mine.
	StatusLost Status = "lost"
	// StatusWon is reached once every safe cell is revealed.
	StatusWon Status = "won"
)

// Terminal reports whether no further moves are accepted.
func (s Status) Terminal() bool {
	return s == StatusLost || s == StatusWon
}

// GameSession owns one board and its play state. It is not safe for
// concurrent use; each match owns its own session.
type GameSession struct {
	board          *Board
	status         Status
	firstMoveTaken bool
	flagCount      int
	rng            *rand.Rand
}

// NewSession generates a fresh board and returns a session ready for its first move.
// mineCount must leave room for a blank first reveal anywhere on the board
// (see MaxMines); otherwise ErrUnsatisfiableSafeCell is returned.
func NewSession(dimension, mineCount int, rng *rand.Rand) (*GameSession, error) {
	if rng == nil {
		rng = NewRand()
	}
	board, err := Generate(dimension, mineCount, nil, rng)
	if err != nil {
		return nil, err
	}
	if mineCount > MaxMines(dimension) {
		return nil, fmt.Errorf("%w: at most %d mines fit a %dx%d board", ErrUnsatisfiableSafeCell, MaxMines(dimension), dimension, dimension)
	}
	return &GameSession{
		board:  board,
		status: StatusInProgress,
		rng:    rng,
	}, nil
}

// Board returns the live board. Callers must not mutate it.
func (s *GameSession) Board() *Board { return s.board }

// Status returns the current status.
func (s *GameSession) Status() Status { return s.status }

// FirstMoveTaken reports whether a reveal has already been played.
func (s *GameSession) FirstMoveTaken() bool { return s.firstMoveTaken }

// FlagCount returns the number of flagged cells.
func (s *GameSession) FlagCount() int { return s.flagCount }

// Dimension returns the board edge length.
func (s *GameSession) Dimension() int { return s.board.Dimension }

// MineCount returns the number of mines on the board.
func (s *GameSession) MineCount() int { return s.board.MineCount }

// RevealedCount returns the number of Revealed cells.
func (s *GameSession) RevealedCount() int { return s.board.CountState(CellRevealed) }

// Reveal opens the cell at (row, col) and reports whether anything changed.
//
// The call is ignored when the game is over, the coordinate is off the board,
// or the cell is not Hidden. On the first reveal, a mine or numbered target
// causes the whole board to be regenerated around (row, col) so that the
// first move always opens a blank region.
func (s *GameSession) Reveal(row, col int) bool {
	if s.status != StatusInProgress || !s.board.InBounds(row, col) {
		return false
	}
	if s.board.At(row, col).State != CellHidden {
		return false
	}

	if !s.firstMoveTaken {
		if !s.board.At(row, col).Content.IsBlank() {
			s.regenerate(Coord{Row: row, Col: col})
		}
		s.firstMoveTaken = true
	}

	cell := s.board.At(row, col)
	if cell.Content.IsMine() {
		cell.State = CellExploded
		s.status = StatusLost
		return true
	}

	s.floodReveal(row, col)
	if s.CheckWin() {
		s.status = StatusWon
	}
	return true
}

// regenerate replaces the board with one that is blank at safe. Flags placed
// before the first reveal belong to the discarded layout and are cleared.
func (s *GameSession) regenerate(safe Coord) {
	board, err := Generate(s.board.Dimension, s.board.MineCount, &safe, s.rng)
	if err != nil {
		// NewSession already bounded mineCount by MaxMines, so any cell can be made blank.
		return
	}
	s.board = board
	s.flagCount = 0
	s.status = StatusInProgress
}

// floodReveal opens (row, col) and, through blank cells, every connected
// Hidden cell. Numbered cells are opened but do not propagate. Each cell is
// pushed at most once, so the stack never exceeds Dimension² entries.
func (s *GameSession) floodReveal(row, col int) int {
	b := s.board
	b.At(row, col).State = CellRevealed
	opened := 1
	if !b.At(row, col).Content.IsBlank() {
		return opened
	}

	stack := make([]Coord, 0, b.Dimension)
	stack = append(stack, Coord{Row: row, Col: col})
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		b.forEachNeighbor(cur.Row, cur.Col, func(r, c int) {
			next := b.At(r, c)
			if next.State != CellHidden || next.Content.IsMine() {
				return
			}
			next.State = CellRevealed
			opened++
			if next.Content.IsBlank() {
				stack = append(stack, Coord{Row: r, Col: c})
			}
		})
	}
	return opened
}

// ToggleFlag flips (row, col) between Hidden and Flagged and reports whether
// anything changed. Opened cells, off-board coordinates and finished games are ignored.
func (s *GameSession) ToggleFlag(row, col int) bool {
	if s.status != StatusInProgress || !s.board.InBounds(row, col) {
		return false
	}
	cell := s.board.At(row, col)
	switch cell.State {
	case CellHidden:
		cell.State = CellFlagged
		s.flagCount++
	case CellFlagged:
		cell.State = CellHidden
		s.flagCount--
	default:
		return false
	}
	return true
}

// CheckWin reports whether every non-mine cell is Revealed. Flags are ignored.
func (s *GameSession) CheckWin() bool {
	for r := range s.board.Cells {
		for c := range s.board.Cells[r] {
			cell := s.board.Cells[r][c]
			if !cell.Content.IsMine() && cell.State != CellRevealed {
				return false
			}
		}
	}
	return true
}
