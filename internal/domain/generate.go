package domain

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	// ErrInvalidConfig is returned for board dimensions or mine counts that cannot form a board.
	ErrInvalidConfig = errors.New("invalid board configuration")
	// ErrUnsatisfiableSafeCell is returned when too many mines leave no room for a blank safe cell.
	ErrUnsatisfiableSafeCell = errors.New("safe cell cannot be made blank")
)

// NewRand returns a randomly seeded generator for boards.
func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// NewSeededRand returns a reproducible generator for seed.
func NewSeededRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// MaxMines returns the largest mine count for which every first reveal on a
// dimension×dimension board can still be turned into a blank.
func MaxMines(dimension int) int {
	if dimension < 1 {
		return 0
	}
	worst := min(dimension, 3) // widest closed neighbourhood is 3x3
	return dimension*dimension - worst*worst
}

// Generate places mineCount mines uniformly at random on a fresh
// dimension×dimension board and computes the neighbour counts.
//
// When safe is non-nil the safe cell is guaranteed to have content 0. Mines are
// drawn uniformly from the cells outside the safe cell's closed neighbourhood,
// which yields the same distribution as re-rolling a full placement until the
// safe cell is blank, without the unbounded retry.
func Generate(dimension, mineCount int, safe *Coord, rng *rand.Rand) (*Board, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidConfig, dimension)
	}
	total := dimension * dimension
	if mineCount < 0 || mineCount >= total {
		return nil, fmt.Errorf("%w: %d mines on a %dx%d board", ErrInvalidConfig, mineCount, dimension, dimension)
	}
	if rng == nil {
		rng = NewRand()
	}

	b := newBoard(dimension, mineCount)
	excluded := make([]bool, total)
	if safe != nil {
		if !b.InBounds(safe.Row, safe.Col) {
			return nil, fmt.Errorf("%w: safe cell (%d,%d) out of bounds", ErrInvalidConfig, safe.Row, safe.Col)
		}
		excluded[safe.Row*dimension+safe.Col] = true
		b.forEachNeighbor(safe.Row, safe.Col, func(r, c int) {
			excluded[r*dimension+c] = true
		})
	}

	candidates := make([]int, 0, total)
	for i, skip := range excluded {
		if !skip {
			candidates = append(candidates, i)
		}
	}
	if mineCount > len(candidates) {
		return nil, fmt.Errorf("%w: %d mines, %d cells outside the safe area", ErrUnsatisfiableSafeCell, mineCount, len(candidates))
	}

	// Partial Fisher-Yates: the first mineCount candidates become mines.
	for i := 0; i < mineCount; i++ {
		j := i + rng.IntN(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		idx := candidates[i]
		b.Cells[idx/dimension][idx%dimension].Content = Mine
	}

	b.computeCounts()
	return b, nil
}

// BoardFromMines builds a board with mines at exactly the given coordinates.
// Duplicate coordinates count once.
func BoardFromMines(dimension int, mines []Coord) (*Board, error) {
	if dimension < 1 {
		return nil, fmt.Errorf("%w: dimension %d", ErrInvalidConfig, dimension)
	}
	b := newBoard(dimension, 0)
	for _, m := range mines {
		if !b.InBounds(m.Row, m.Col) {
			return nil, fmt.Errorf("%w: mine (%d,%d) out of bounds", ErrInvalidConfig, m.Row, m.Col)
		}
		b.Cells[m.Row][m.Col].Content = Mine
	}
	b.MineCount = b.CountMines()
	b.computeCounts()
	return b, nil
}
