package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_IsTerminal(t *testing.T) {
	t.Run("Terminal phases", func(t *testing.T) {
		for _, phase := range []Phase{PhaseWon, PhaseDraw, PhaseLostByTimeout, PhaseLostByInvalidMove} {
			assert.True(t, phase.IsTerminal(), phase)
		}
	})

	t.Run("Non-terminal phases", func(t *testing.T) {
		assert.False(t, PhaseAwaitingStart.IsTerminal())
		assert.False(t, PhaseInProgress.IsTerminal())
	})
}

func TestBoard_WinningLine(t *testing.T) {
	t.Run("Returns the row won by X", func(t *testing.T) {
		// Given: a board where X completed the top row
		board := Board{
			PlayerX, PlayerX, PlayerX,
			PlayerO, PlayerO, EmptyCell,
			EmptyCell, EmptyCell, EmptyCell,
		}

		// When: looking for a winning line
		line, mark, ok := board.WinningLine()

		// Then: the top row is reported for X
		require.True(t, ok)
		assert.Equal(t, [3]int{0, 1, 2}, line)
		assert.Equal(t, PlayerX, mark)
	})

	t.Run("Returns the anti-diagonal won by O", func(t *testing.T) {
		// Given: a board where O completed the anti-diagonal
		board := Board{
			PlayerX, PlayerX, PlayerO,
			EmptyCell, PlayerO, EmptyCell,
			PlayerO, EmptyCell, PlayerX,
		}

		// When: looking for a winning line
		line, mark, ok := board.WinningLine()

		// Then: the anti-diagonal is reported for O
		require.True(t, ok)
		assert.Equal(t, [3]int{6, 4, 2}, line)
		assert.Equal(t, PlayerO, mark)
	})

	t.Run("Returns the first line in fixed order when several are complete", func(t *testing.T) {
		// Given: a board where the first column and the middle row are both complete
		board := Board{
			PlayerX, EmptyCell, EmptyCell,
			PlayerX, PlayerX, PlayerX,
			PlayerX, EmptyCell, EmptyCell,
		}

		// When: looking for a winning line
		line, _, ok := board.WinningLine()

		// Then: the row comes before the column
		require.True(t, ok)
		assert.Equal(t, [3]int{3, 4, 5}, line)
	})

	t.Run("Returns false when no line is complete", func(t *testing.T) {
		// Given: a board without a complete line
		board := Board{
			PlayerX, PlayerO, EmptyCell,
			EmptyCell, PlayerX, EmptyCell,
			EmptyCell, EmptyCell, PlayerO,
		}

		// When: looking for a winning line
		_, _, ok := board.WinningLine()

		// Then: nothing is found
		assert.False(t, ok)
	})
}

func TestBoard_IsFull(t *testing.T) {
	full := Board{
		PlayerX, PlayerO, PlayerX,
		PlayerO, PlayerX, PlayerO,
		PlayerO, PlayerX, PlayerO,
	}
	assert.True(t, full.IsFull())

	notFull := full
	notFull[4] = EmptyCell
	assert.False(t, notFull.IsFull())
}

func TestGameState_Clone(t *testing.T) {
	// Given: a won game
	line := [3]int{0, 1, 2}
	state := &GameState{
		Board:       Board{PlayerX, PlayerX, PlayerX},
		Phase:       PhaseWon,
		Winner:      PlayerX,
		WinningLine: &line,
	}

	// When: the state is cloned and the clone is modified
	clone := state.Clone()
	clone.WinningLine[0] = 8
	clone.Board[0] = PlayerO

	// Then: the original stays untouched
	assert.Equal(t, [3]int{0, 1, 2}, *state.WinningLine)
	assert.Equal(t, PlayerX, state.Board[0])
}

func TestGameState_Blind(t *testing.T) {
	t.Run("Hides the board while the game is in progress", func(t *testing.T) {
		// Given: a running game with two marks
		state := &GameState{
			Board:         Board{PlayerX, PlayerO},
			CurrentPlayer: PlayerX,
			Phase:         PhaseInProgress,
		}

		// When: the blind view is taken
		blind := state.Blind()

		// Then: no marks are visible, but the original keeps them
		assert.Equal(t, Board{}, blind.Board)
		assert.Equal(t, PlayerX, blind.CurrentPlayer)
		assert.Equal(t, PlayerO, state.Board[1])
	})

	t.Run("Reveals the board when the game is over", func(t *testing.T) {
		// Given: a game lost by timeout
		state := &GameState{
			Board: Board{PlayerX, PlayerO},
			Phase: PhaseLostByTimeout,
			Loser: PlayerX,
		}

		// When: the blind view is taken
		blind := state.Blind()

		// Then: the board is revealed
		assert.Equal(t, state.Board, blind.Board)
	})
}

func TestGameState_StatusText(t *testing.T) {
	cell := 0
	tests := []struct {
		name  string
		state GameState
		want  string
	}{
		{"Awaiting start", GameState{Phase: PhaseAwaitingStart, CurrentPlayer: PlayerX}, ""},
		{"Turn", GameState{Phase: PhaseInProgress, CurrentPlayer: PlayerO}, "O's turn!"},
		{"Invalid move", GameState{Phase: PhaseLostByInvalidMove, Loser: PlayerO, InvalidCell: &cell}, "Invalid move! O LOST!!"},
		{"Timeout", GameState{Phase: PhaseLostByTimeout, Loser: PlayerX}, "Time's up! X LOST!!"},
		{"Win", GameState{Phase: PhaseWon, Winner: PlayerX}, "X WON!!"},
		{"Draw", GameState{Phase: PhaseDraw}, "DRAW!!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.StatusText())
		})
	}
}

func TestMark_Opponent(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
}

func TestIsValidCell(t *testing.T) {
	assert.True(t, IsValidCell(0))
	assert.True(t, IsValidCell(8))
	assert.False(t, IsValidCell(-1))
	assert.False(t, IsValidCell(9))
}
