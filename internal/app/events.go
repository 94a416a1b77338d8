package app

import "mineseeker/internal/domain"

// EventKind identifies emitted game events for Nakama dispatch.
type EventKind string

const (
	EventGameStarted  EventKind = "game_started"
	EventBoardUpdated EventKind = "board_updated"
	EventGameEnded    EventKind = "game_ended"
)

// Event is an app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []string // user IDs; empty means broadcast
}

type GameStartedPayload struct {
	View domain.View
}

type BoardUpdatedPayload struct {
	View domain.View
}

type GameEndedPayload struct {
	Status domain.Status
	View   domain.View
}
