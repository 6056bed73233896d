package entity

type EventType string

const (
	EventStarted         EventType = "started"
	EventTurnChanged     EventType = "turn_changed"
	EventInvalidMoveLoss EventType = "invalid_move_loss"
	EventTimeoutLoss     EventType = "timeout_loss"
	EventWin             EventType = "win"
	EventDraw            EventType = "draw"
	EventReset           EventType = "reset"

	// EventTick is produced by the countdown, not by the engine.
	EventTick EventType = "tick"
)

// Event - notification about a state transition.
type Event struct {
	Type      EventType  `json:"type"`
	State     *GameState `json:"state"`
	Player    Mark       `json:"player,omitempty"`
	Cell      *int       `json:"cell,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
	Warning   bool       `json:"warning,omitempty"`
}

func (that EventType) IsOutcome() bool {
	switch that {
	case EventInvalidMoveLoss, EventTimeoutLoss, EventWin, EventDraw:
		return true
	default:
		return false
	}
}
