package app

import (
	"errors"
	"math/rand/v2"

	"mineseeker/internal/domain"
)

// Service turns player gestures into Board Engine calls and emits the
// resulting snapshots as events.
type Service struct {
	rng *rand.Rand
}

// NewService constructs a Service with provided rng or a randomly seeded default.
func NewService(rng *rand.Rand) *Service {
	if rng == nil {
		rng = domain.NewRand()
	}
	return &Service{rng: rng}
}

var ErrNoSession = errors.New("no game session")

// NewGame starts a fresh session. Invalid dimension/mine combinations are
// returned as configuration errors.
func (s *Service) NewGame(dimension, mineCount int) (*domain.GameSession, []Event, error) {
	session, err := domain.NewSession(dimension, mineCount, s.rng)
	if err != nil {
		return nil, nil, err
	}
	return session, []Event{
		{
			Kind:    EventGameStarted,
			Payload: GameStartedPayload{View: session.Snapshot()},
		},
	}, nil
}

// PrimaryActivate reveals (row, col). Ignored moves produce no events.
func (s *Service) PrimaryActivate(session *domain.GameSession, row, col int) ([]Event, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if !session.Reveal(row, col) {
		return nil, nil
	}
	return s.afterMove(session), nil
}

// SecondaryActivate toggles the flag on (row, col). Ignored moves produce no events.
func (s *Service) SecondaryActivate(session *domain.GameSession, row, col int) ([]Event, error) {
	if session == nil {
		return nil, ErrNoSession
	}
	if !session.ToggleFlag(row, col) {
		return nil, nil
	}
	return s.afterMove(session), nil
}

func (s *Service) afterMove(session *domain.GameSession) []Event {
	view := session.Snapshot()
	events := []Event{
		{
			Kind:    EventBoardUpdated,
			Payload: BoardUpdatedPayload{View: view},
		},
	}
	if session.Status().Terminal() {
		events = append(events, Event{
			Kind:    EventGameEnded,
			Payload: GameEndedPayload{Status: session.Status(), View: view},
		})
	}
	return events
}
