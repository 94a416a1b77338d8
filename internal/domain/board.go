package domain

import "strings"

// CellState is the visible state of a single cell.
type CellState string

const (
	// CellHidden is an unopened cell.
	CellHidden CellState = "hidden"
	// CellRevealed is an opened cell showing its content.
	CellRevealed CellState = "revealed"
	// CellFlagged is an unopened cell carrying a flag marker.
	CellFlagged CellState = "flagged"
	// CellExploded is the mine that ended the game. It counts as opened.
	CellExploded CellState = "exploded"
)

// Opened reports whether the cell content is visible (Revealed or Exploded).
func (s CellState) Opened() bool {
	return s == CellRevealed || s == CellExploded
}

// Content is what lies under a cell: Mine or the number of adjacent mines (0..8).
type Content int8

// Mine is the content of a mined cell.
const Mine Content = -1

// IsMine reports whether the content is a mine.
func (c Content) IsMine() bool { return c == Mine }

// IsBlank reports whether the content is a mine-free cell with no adjacent mines.
func (c Content) IsBlank() bool { return c == 0 }

// Cell is one square of the board.
type Cell struct {
	State   CellState
	Content Content
}

// Coord addresses a cell by 0-based row and column.
type Coord struct {
	Row int
	Col int
}

// neighborOffsets lists the 8-neighbourhood of a cell.
var neighborOffsets = [8][2]int{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}

// Board is a square grid of cells plus the number of mines placed on it.
type Board struct {
	Dimension int
	MineCount int
	Cells     [][]Cell // Cells[row][col]
}

func newBoard(dimension, mineCount int) *Board {
	cells := make([][]Cell, dimension)
	for r := range cells {
		cells[r] = make([]Cell, dimension)
		for c := range cells[r] {
			cells[r][c].State = CellHidden
		}
	}
	return &Board{Dimension: dimension, MineCount: mineCount, Cells: cells}
}

// InBounds reports whether (row, col) lies on the board.
func (b *Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Dimension && col >= 0 && col < b.Dimension
}

// At returns the cell at (row, col). The coordinate must be in bounds.
func (b *Board) At(row, col int) *Cell {
	return &b.Cells[row][col]
}

// forEachNeighbor calls fn for every in-bounds neighbour of (row, col). No wraparound.
func (b *Board) forEachNeighbor(row, col int, fn func(r, c int)) {
	for _, off := range neighborOffsets {
		r, c := row+off[0], col+off[1]
		if b.InBounds(r, c) {
			fn(r, c)
		}
	}
}

// adjacentMines counts mined cells among the in-bounds neighbours of (row, col).
func (b *Board) adjacentMines(row, col int) Content {
	var n Content
	b.forEachNeighbor(row, col, func(r, c int) {
		if b.Cells[r][c].Content.IsMine() {
			n++
		}
	})
	return n
}

// computeCounts fills the neighbour count of every non-mine cell.
func (b *Board) computeCounts() {
	for r := 0; r < b.Dimension; r++ {
		for c := 0; c < b.Dimension; c++ {
			if b.Cells[r][c].Content.IsMine() {
				continue
			}
			b.Cells[r][c].Content = b.adjacentMines(r, c)
		}
	}
}

// CountMines returns the number of mined cells.
func (b *Board) CountMines() int {
	n := 0
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c].Content.IsMine() {
				n++
			}
		}
	}
	return n
}

// CountState returns the number of cells in the given state.
func (b *Board) CountState(state CellState) int {
	n := 0
	for r := range b.Cells {
		for c := range b.Cells[r] {
			if b.Cells[r][c].State == state {
				n++
			}
		}
	}
	return n
}

// String renders the full board including hidden content, for debugging.
// '*' is a mine, '.' a blank, digits are counts.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < b.Dimension; r++ {
		for c := 0; c < b.Dimension; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			switch content := b.Cells[r][c].Content; {
			case content.IsMine():
				sb.WriteByte('*')
			case content.IsBlank():
				sb.WriteByte('.')
			default:
				sb.WriteByte(byte('0' + content))
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
