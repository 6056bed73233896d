package entity

import "fmt"

type Mark string

const (
	EmptyCell Mark = ""
	PlayerX   Mark = "X"
	PlayerO   Mark = "O"
)

type Phase string

const (
	PhaseAwaitingStart     Phase = "awaiting_start"
	PhaseInProgress        Phase = "in_progress"
	PhaseWon               Phase = "won"
	PhaseDraw              Phase = "draw"
	PhaseLostByTimeout     Phase = "lost_by_timeout"
	PhaseLostByInvalidMove Phase = "lost_by_invalid_move"
)

const BoardSize = 9

type Board [BoardSize]Mark

// WinCombos - rows, columns, main diagonal, anti-diagonal. The order decides which line is reported
// when more than one is complete.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{6, 4, 2},
}

// GameState - the whole observable state of one blind game.
type GameState struct {
	Board         Board   `json:"board"`
	CurrentPlayer Mark    `json:"current_player"`
	Phase         Phase   `json:"phase"`
	WinningLine   *[3]int `json:"winning_line,omitempty"`
	Winner        Mark    `json:"winner,omitempty"`
	Loser         Mark    `json:"loser,omitempty"`
	InvalidCell   *int    `json:"invalid_cell,omitempty"`
}

func NewGameState() *GameState {
	return &GameState{
		CurrentPlayer: PlayerX,
		Phase:         PhaseAwaitingStart,
	}
}

func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Phase) IsTerminal() bool {
	switch that {
	case PhaseWon, PhaseDraw, PhaseLostByTimeout, PhaseLostByInvalidMove:
		return true
	default:
		return false
	}
}

func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// WinningLine - returns the first complete line in WinCombos order.
func (that *Board) WinningLine() ([3]int, Mark, bool) {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return combo, a, true
		}
	}

	return [3]int{}, EmptyCell, false
}

func (that *Board) IsFull() bool {
	for _, cell := range that {
		if cell == EmptyCell {
			return false
		}
	}

	return true
}

func (that *GameState) IsInProgress() bool {
	return that.Phase == PhaseInProgress
}

func (that *GameState) IsFinished() bool {
	return that.Phase.IsTerminal()
}

// Clone - returns a deep copy, the pointer fields are not shared.
func (that *GameState) Clone() *GameState {
	clone := *that

	if that.WinningLine != nil {
		line := *that.WinningLine
		clone.WinningLine = &line
	}

	if that.InvalidCell != nil {
		cell := *that.InvalidCell
		clone.InvalidCell = &cell
	}

	return &clone
}

// Blind - hides the marks while the game is still running, the board is revealed once the game is over.
func (that *GameState) Blind() *GameState {
	clone := that.Clone()
	if clone.IsInProgress() {
		clone.Board = Board{}
	}

	return clone
}

// StatusText - status line shown to the players.
func (that *GameState) StatusText() string {
	switch that.Phase {
	case PhaseInProgress:
		return fmt.Sprintf("%s's turn!", that.CurrentPlayer)
	case PhaseLostByInvalidMove:
		return fmt.Sprintf("Invalid move! %s LOST!!", that.Loser)
	case PhaseLostByTimeout:
		return fmt.Sprintf("Time's up! %s LOST!!", that.Loser)
	case PhaseWon:
		return fmt.Sprintf("%s WON!!", that.Winner)
	case PhaseDraw:
		return "DRAW!!"
	default:
		return ""
	}
}
