package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rocketscienceinc/blind-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blind-tictactoe/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGames struct {
	games map[string]*entity.GameState
	err   error
}

func (that *stubGames) GetSnapshot(_ context.Context, sessionID string) (*entity.GameState, error) {
	if sessionID == "" {
		return nil, apperror.ErrSessionRequired
	}

	if that.err != nil {
		return nil, that.err
	}

	game, ok := that.games[sessionID]
	if !ok {
		return nil, fmt.Errorf("failed to get game: %w", repository.ErrGameNotFound)
	}

	return game, nil
}

func newServer(games *stubGames) http.Handler {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)), games, []string{"*"}).Handler()
}

func TestServer_Ping(t *testing.T) {
	rec := httptest.NewRecorder()

	newServer(&stubGames{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestServer_Game(t *testing.T) {
	running := entity.NewGameState()
	running.Phase = entity.PhaseInProgress
	running.Board[4] = entity.PlayerX
	running.CurrentPlayer = entity.PlayerO

	won := &entity.GameState{
		Board:         entity.Board{entity.PlayerX, entity.PlayerX, entity.PlayerX, entity.PlayerO, entity.PlayerO},
		CurrentPlayer: entity.PlayerX,
		Phase:         entity.PhaseWon,
		WinningLine:   &[3]int{0, 1, 2},
		Winner:        entity.PlayerX,
	}

	games := &stubGames{games: map[string]*entity.GameState{"running": running, "won": won}}

	get := func(t *testing.T, handler http.Handler, query string) (*httptest.ResponseRecorder, gameResponse) {
		t.Helper()

		req := httptest.NewRequest(http.MethodGet, "/game"+query, nil)
		req.Header.Set("Origin", "http://example.com")

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		var body gameResponse
		if rec.Code == http.StatusOK {
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		}

		return rec, body
	}

	t.Run("Running game is hidden", func(t *testing.T) {
		// Given: a running game with a mark on the board
		// When: the snapshot is requested
		rec, body := get(t, newServer(games), "?session=running")

		// Then: the board is empty and the status names the next player
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "running", body.SessionID)
		assert.Equal(t, "O's turn!", body.Status)
		assert.Equal(t, entity.Board{}, body.Game.Board)
	})

	t.Run("Finished game is revealed", func(t *testing.T) {
		rec, body := get(t, newServer(games), "?session=won")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "X WON!!", body.Status)
		assert.Equal(t, won.Board, body.Game.Board)
	})

	t.Run("Unknown session", func(t *testing.T) {
		rec, _ := get(t, newServer(games), "?session=missing")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Missing session", func(t *testing.T) {
		rec, _ := get(t, newServer(games), "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Storage failure", func(t *testing.T) {
		rec, _ := get(t, newServer(&stubGames{err: errors.New("redis down")}), "?session=won")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
