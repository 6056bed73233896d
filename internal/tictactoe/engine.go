package tictactoe

import (
	"fmt"
	"sync"

	"github.com/rocketscienceinc/blind-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
)

// Timer - per-turn countdown driven by the engine. The engine only restarts and stops it,
// scheduling the ticks is up to the implementation.
type Timer interface {
	Restart()
	Stop()
}

type noopTimer struct{}

func (noopTimer) Restart() {}
func (noopTimer) Stop()    {}

// Engine - the blind tic-tac-toe state machine. All public methods are a single critical section.
type Engine struct {
	mu    sync.Mutex
	state *entity.GameState
	timer Timer
}

// NewEngine - creates an engine in the awaiting start phase. A nil timer disables the countdown.
func NewEngine(timer Timer) *Engine {
	if timer == nil {
		timer = noopTimer{}
	}

	return &Engine{
		state: entity.NewGameState(),
		timer: timer,
	}
}

// State - returns a snapshot of the current state.
func (that *Engine) State() *entity.GameState {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.state.Clone()
}

// Start - begins the game with X to move. Returns nil when the game was already started,
// a new game needs Reset first.
func (that *Engine) Start() *entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.state.Phase != entity.PhaseAwaitingStart {
		return nil
	}

	that.state = entity.NewGameState()
	that.state.Phase = entity.PhaseInProgress
	that.timer.Restart()

	return that.event(entity.EventStarted, that.state.CurrentPlayer, nil)
}

// ApplyMove - places the current player's mark. Moves outside a running game are ignored and return nil.
// An occupied cell loses the game for the current player.
func (that *Engine) ApplyMove(cell int) (*entity.Event, error) {
	if !entity.IsValidCell(cell) {
		return nil, fmt.Errorf("%w: cell %d", apperror.ErrInvalidInput, cell)
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.state.IsInProgress() {
		return nil, nil
	}

	player := that.state.CurrentPlayer

	if that.state.Board[cell] != entity.EmptyCell {
		that.timer.Stop()
		that.state.Phase = entity.PhaseLostByInvalidMove
		that.state.Loser = player
		that.state.InvalidCell = &cell

		return that.event(entity.EventInvalidMoveLoss, player, &cell), nil
	}

	that.state.Board[cell] = player

	return that.evaluate(player, cell), nil
}

// ApplyTimeout - the current player ran out of time. Ignored outside a running game.
func (that *Engine) ApplyTimeout() *entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	if !that.state.IsInProgress() {
		return nil
	}

	that.timer.Stop()
	that.state.Phase = entity.PhaseLostByTimeout
	that.state.Loser = that.state.CurrentPlayer

	return that.event(entity.EventTimeoutLoss, that.state.Loser, nil)
}

// Reset - aborts whatever is going on and returns to the awaiting start phase.
func (that *Engine) Reset() *entity.Event {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.timer.Stop()
	that.state = entity.NewGameState()

	return that.event(entity.EventReset, "", nil)
}

// evaluate - checks the board after an accepted move.
func (that *Engine) evaluate(player entity.Mark, cell int) *entity.Event {
	if line, winner, ok := that.state.Board.WinningLine(); ok {
		that.timer.Stop()
		that.state.Phase = entity.PhaseWon
		that.state.Winner = winner
		that.state.WinningLine = &line

		return that.event(entity.EventWin, winner, &cell)
	}

	if that.state.Board.IsFull() {
		that.timer.Stop()
		that.state.Phase = entity.PhaseDraw

		return that.event(entity.EventDraw, player, &cell)
	}

	that.state.CurrentPlayer = player.Opponent()
	that.timer.Restart()

	return that.event(entity.EventTurnChanged, that.state.CurrentPlayer, &cell)
}

func (that *Engine) event(eventType entity.EventType, player entity.Mark, cell *int) *entity.Event {
	return &entity.Event{
		Type:   eventType,
		State:  that.state.Clone(),
		Player: player,
		Cell:   cell,
	}
}
