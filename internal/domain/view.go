package domain

// CellView is what a client may know about one cell.
type CellView struct {
	State CellState
	// Count is the adjacent mine count; only set for Revealed cells.
	Count int
	// Mine is set on the exploded cell and, once the game is over, on every other mine.
	Mine bool
}

// View is an immutable snapshot of a session for rendering.
type View struct {
	Dimension int
	MineCount int
	FlagCount int
	Status    Status
	Cells     [][]CellView
}

// Snapshot returns the client-visible state. Content of unopened cells is
// withheld while the game is in progress.
func (s *GameSession) Snapshot() View {
	b := s.board
	cells := make([][]CellView, b.Dimension)
	for r := range cells {
		cells[r] = make([]CellView, b.Dimension)
		for c := range cells[r] {
			cell := b.Cells[r][c]
			v := CellView{State: cell.State}
			switch {
			case cell.State.Opened() && cell.Content.IsMine():
				v.Mine = true
			case cell.State.Opened():
				v.Count = int(cell.Content)
			case s.status.Terminal() && cell.Content.IsMine():
				v.Mine = true
			}
			cells[r][c] = v
		}
	}
	return View{
		Dimension: b.Dimension,
		MineCount: b.MineCount,
		FlagCount: s.flagCount,
		Status:    s.status,
		Cells:     cells,
	}
}
