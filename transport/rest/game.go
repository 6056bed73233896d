package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rocketscienceinc/blind-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blind-tictactoe/internal/repository"
)

type gameResponse struct {
	SessionID string            `json:"session_id"`
	Status    string            `json:"status"`
	Game      *entity.GameState `json:"game"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// gameHandler - the stored game of a session, marks stay hidden while the game runs.
func (that *Server) gameHandler(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "gameHandler")

	sessionID := r.URL.Query().Get("session")

	game, err := that.gameUseCase.GetSnapshot(r.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrSessionRequired):
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, repository.ErrGameNotFound):
			that.writeJSON(w, http.StatusNotFound, errorResponse{Error: "game not found"})
		default:
			log.Error("failed to get game", "session", sessionID, "error", err)
			that.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal Server Error"})
		}

		return
	}

	blind := game.Blind()

	that.writeJSON(w, http.StatusOK, gameResponse{
		SessionID: sessionID,
		Status:    blind.StatusText(),
		Game:      blind,
	})
}

func (that *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
