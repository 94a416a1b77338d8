package domain

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func bruteAdjacent(b *Board, row, col int) Content {
	var n Content
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			r, c := row+dr, col+dc
			if r < 0 || r >= b.Dimension || c < 0 || c >= b.Dimension {
				continue
			}
			if b.Cells[r][c].Content == Mine {
				n++
			}
		}
	}
	return n
}

func assertBoardCounts(t *testing.T, b *Board, wantMines int) {
	t.Helper()
	mines := 0
	for r := 0; r < b.Dimension; r++ {
		for c := 0; c < b.Dimension; c++ {
			cell := b.Cells[r][c]
			if cell.State != CellHidden {
				t.Fatalf("cell (%d,%d) state = %s, want hidden", r, c, cell.State)
			}
			if cell.Content == Mine {
				mines++
				continue
			}
			if want := bruteAdjacent(b, r, c); cell.Content != want {
				t.Fatalf("cell (%d,%d) content = %d, want %d", r, c, cell.Content, want)
			}
		}
	}
	if mines != wantMines {
		t.Fatalf("mines = %d, want %d", mines, wantMines)
	}
	if b.MineCount != wantMines {
		t.Fatalf("MineCount = %d, want %d", b.MineCount, wantMines)
	}
}

func TestGenerate_MineCountAndNeighborCounts(t *testing.T) {
	tests := []struct {
		name      string
		dimension int
		mines     int
	}{
		{name: "reference board", dimension: 10, mines: 10},
		{name: "no mines", dimension: 10, mines: 0},
		{name: "dense", dimension: 6, mines: 30},
		{name: "single cell", dimension: 1, mines: 0},
		{name: "almost full", dimension: 4, mines: 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 50; seed++ {
				b, err := Generate(tt.dimension, tt.mines, nil, rand.New(rand.NewPCG(seed, 7)))
				if err != nil {
					t.Fatalf("Generate() error: %v", err)
				}
				assertBoardCounts(t, b, tt.mines)
			}
		})
	}
}

func TestGenerate_SafeCellIsBlank(t *testing.T) {
	tests := []struct {
		name      string
		dimension int
		mines     int
		safe      Coord
	}{
		{name: "center", dimension: 10, mines: 10, safe: Coord{Row: 5, Col: 5}},
		{name: "corner", dimension: 10, mines: 10, safe: Coord{Row: 0, Col: 0}},
		{name: "edge", dimension: 10, mines: 10, safe: Coord{Row: 9, Col: 4}},
		{name: "tightest center", dimension: 10, mines: 91, safe: Coord{Row: 4, Col: 6}},
		{name: "tightest corner", dimension: 10, mines: 96, safe: Coord{Row: 9, Col: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for seed := uint64(0); seed < 50; seed++ {
				safe := tt.safe
				b, err := Generate(tt.dimension, tt.mines, &safe, rand.New(rand.NewPCG(seed, 11)))
				if err != nil {
					t.Fatalf("Generate() error: %v", err)
				}
				assertBoardCounts(t, b, tt.mines)
				if got := b.At(safe.Row, safe.Col).Content; got != 0 {
					t.Fatalf("safe cell content = %d, want 0", got)
				}
			}
		})
	}
}

func TestGenerate_InvalidConfig(t *testing.T) {
	center := Coord{Row: 5, Col: 5}
	outside := Coord{Row: 10, Col: 0}
	tests := []struct {
		name      string
		dimension int
		mines     int
		safe      *Coord
		want      error
	}{
		{name: "zero dimension", dimension: 0, mines: 0, want: ErrInvalidConfig},
		{name: "negative mines", dimension: 10, mines: -1, want: ErrInvalidConfig},
		{name: "board full of mines", dimension: 10, mines: 100, want: ErrInvalidConfig},
		{name: "more mines than cells", dimension: 3, mines: 12, want: ErrInvalidConfig},
		{name: "safe cell off board", dimension: 10, mines: 10, safe: &outside, want: ErrInvalidConfig},
		{name: "no room around safe cell", dimension: 10, mines: 92, safe: &center, want: ErrUnsatisfiableSafeCell},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Generate(tt.dimension, tt.mines, tt.safe, rand.New(rand.NewPCG(1, 2)))
			if !errors.Is(err, tt.want) {
				t.Fatalf("Generate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerate_SafeCellNeverMined(t *testing.T) {
	// 10 mines over the 12 cells outside the corner's neighbourhood: across many
	// seeds every outside cell gets mined, no inside cell ever does.
	safe := Coord{Row: 0, Col: 0}
	seen := make(map[int]bool)
	for seed := uint64(0); seed < 200; seed++ {
		b, err := Generate(4, 10, &safe, rand.New(rand.NewPCG(seed, 3)))
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		for r := 0; r < 4; r++ {
			for c := 0; c < 4; c++ {
				if b.Cells[r][c].Content == Mine {
					seen[r*4+c] = true
				}
			}
		}
	}
	for _, idx := range []int{0, 1, 4, 5} {
		if seen[idx] {
			t.Fatalf("cell %d in the safe neighbourhood received a mine", idx)
		}
	}
	if len(seen) != 12 {
		t.Fatalf("mined cells seen = %d, want all 12 cells outside the safe area", len(seen))
	}
}

func TestMaxMines(t *testing.T) {
	tests := []struct {
		dimension int
		want      int
	}{
		{dimension: 0, want: 0},
		{dimension: 1, want: 0},
		{dimension: 2, want: 0},
		{dimension: 3, want: 0},
		{dimension: 4, want: 7},
		{dimension: 10, want: 91},
	}
	for _, tt := range tests {
		if got := MaxMines(tt.dimension); got != tt.want {
			t.Fatalf("MaxMines(%d) = %d, want %d", tt.dimension, got, tt.want)
		}
	}
}

func TestBoardFromMines(t *testing.T) {
	b, err := BoardFromMines(3, []Coord{{Row: 0, Col: 0}, {Row: 2, Col: 2}, {Row: 0, Col: 0}})
	if err != nil {
		t.Fatalf("BoardFromMines() error: %v", err)
	}
	assertBoardCounts(t, b, 2)
	if got := b.At(1, 1).Content; got != 2 {
		t.Fatalf("center content = %d, want 2", got)
	}
	if got := b.String(); got != "* 1 .\n1 2 1\n. 1 *\n" {
		t.Fatalf("String() = %q", got)
	}

	if _, err := BoardFromMines(3, []Coord{{Row: 3, Col: 0}}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("BoardFromMines() error = %v, want ErrInvalidConfig", err)
	}
}
