package websocket

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/blind-tictactoe/internal/countdown"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
)

const (
	actionConnect     = "connect"
	actionGameStart   = "game:start"
	actionGameMove    = "game:move"
	actionGameReset   = "game:reset"
	actionGameRestart = "game:restart"
	actionGameState   = "game:state"
	actionGameEvent   = "game:event"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type Payload struct {
	SessionID string     `json:"session_id,omitempty"`
	Cell      *int       `json:"cell,omitempty"`
	Game      *GameView  `json:"game,omitempty"`
	Event     *EventView `json:"event,omitempty"`
	Error     string     `json:"error,omitempty"`
}

// GameView - what a client may see of the game, the board stays hidden while the game runs.
type GameView struct {
	Board         entity.Board `json:"board"`
	CurrentPlayer entity.Mark  `json:"current_player"`
	Phase         entity.Phase `json:"phase"`
	WinningLine   *[3]int      `json:"winning_line,omitempty"`
	Winner        entity.Mark  `json:"winner,omitempty"`
	Loser         entity.Mark  `json:"loser,omitempty"`
	InvalidCell   *int         `json:"invalid_cell,omitempty"`
	Status        string       `json:"status"`
	Remaining     int          `json:"remaining"`
	Warning       bool         `json:"warning"`
}

type EventView struct {
	Type      entity.EventType `json:"type"`
	Player    entity.Mark      `json:"player,omitempty"`
	Cell      *int             `json:"cell,omitempty"`
	Remaining *int             `json:"remaining,omitempty"`
	Warning   bool             `json:"warning,omitempty"`
}

func newGameView(game *entity.GameState, remaining int) *GameView {
	if game == nil {
		return nil
	}

	blind := game.Blind()

	view := &GameView{
		Board:         blind.Board,
		CurrentPlayer: blind.CurrentPlayer,
		Phase:         blind.Phase,
		WinningLine:   blind.WinningLine,
		Winner:        blind.Winner,
		Loser:         blind.Loser,
		InvalidCell:   blind.InvalidCell,
		Status:        blind.StatusText(),
	}

	if blind.IsInProgress() {
		view.Remaining = remaining
		view.Warning = remaining > 0 && countdown.IsWarning(remaining)
	}

	return view
}

// newEventView - the placed cell is only revealed once the game is over.
func newEventView(event *entity.Event) *EventView {
	view := &EventView{
		Type:      event.Type,
		Player:    event.Player,
		Remaining: event.Remaining,
		Warning:   event.Warning,
	}

	if event.Type.IsOutcome() {
		view.Cell = event.Cell
	}

	return view
}

// messageError - the client sent something that is not a message, the connection stays usable.
type messageError struct {
	err error
}

func (that *messageError) Error() string {
	return fmt.Sprintf("invalid message: %v", that.err)
}

func (that *messageError) Unwrap() error {
	return that.err
}

func (that *connection) readMessage() (*Message, error) {
	_, data, err := that.conn.ReadMessage()
	if err != nil {
		return nil, err
	}

	var msg Message
	if err = json.Unmarshal(data, &msg); err != nil {
		return nil, &messageError{err: err}
	}

	return &msg, nil
}

// sendMessage - sends a message with the action and payload to the client.
func (that *connection) sendMessage(action string, payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	if err = that.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	if err = that.conn.WriteJSON(Message{Action: action, Payload: data}); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	return nil
}

func isClosed(err error) bool {
	return websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived)
}
