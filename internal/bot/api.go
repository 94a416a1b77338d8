package bot

import (
	"mineseeker/internal/domain"
)

// MoveKind selects the gesture a bot performs.
type MoveKind int

const (
	MoveReveal MoveKind = iota
	MoveFlag
)

// Move represents the decision made by the AI.
type Move struct {
	Kind MoveKind
	Cell domain.Coord
}

// Brain is the interface that all bot strategies must implement. Brains only
// see the player-visible snapshot.
type Brain interface {
	CalculateMove(view domain.View) (Move, error)
}
