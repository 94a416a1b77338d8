package bot

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// BotLevel selects a strategy.
type BotLevel int

const (
	BotLevelRandom BotLevel = iota
	BotLevelSolver
)

// ErrNoMove is returned when the view has no hidden cell left to act on.
var ErrNoMove = errors.New("no move available")

// ParseLevel maps a CLI name to a BotLevel.
func ParseLevel(name string) (BotLevel, error) {
	switch name {
	case "random":
		return BotLevelRandom, nil
	case "solver":
		return BotLevelSolver, nil
	default:
		return 0, fmt.Errorf("unknown bot level: %q", name)
	}
}

// NewBrain creates a new AI brain based on the specified level.
func NewBrain(level BotLevel, rng *rand.Rand) (Brain, error) {
	switch level {
	case BotLevelRandom:
		return &RandomBot{rng: rng}, nil
	case BotLevelSolver:
		return &SolverBot{fallback: &RandomBot{rng: rng}}, nil
	default:
		return nil, fmt.Errorf("unknown bot level: %d", level)
	}
}
