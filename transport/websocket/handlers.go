package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rocketscienceinc/blind-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
)

type gameAction func(ctx context.Context, sessionID string) (*entity.GameState, error)

// handleConnect - reports the session of the connection, a client can take over an older session by id.
func (that *Server) handleConnect(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleConnect")

	var payloadReq Payload

	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
			return that.sendErrorResponse(conn, msg.Action, "invalid payload")
		}
	}

	if payloadReq.SessionID != "" && payloadReq.SessionID != conn.sessionID {
		that.rebind(ctx, conn, payloadReq.SessionID)
		log.Info("connection rebound", "session", conn.sessionID)
	}

	game, err := that.gameUseCase.GetState(ctx, conn.sessionID)
	if err != nil {
		log.Error("failed to get game", "error", err)
		return that.sendErrorResponse(conn, msg.Action, "failed to get the game")
	}

	payloadResp := Payload{
		SessionID: conn.sessionID,
		Game:      newGameView(game, that.gameUseCase.RemainingTicks(conn.sessionID)),
	}

	if err = conn.sendMessage(msg.Action, payloadResp); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	log.Info("successfully connected", "session", conn.sessionID)

	return nil
}

func (that *Server) handleGameStart(ctx context.Context, conn *connection, msg *Message) error {
	return that.handleGameAction(ctx, conn, msg, that.gameUseCase.StartGame)
}

func (that *Server) handleGameReset(ctx context.Context, conn *connection, msg *Message) error {
	return that.handleGameAction(ctx, conn, msg, that.gameUseCase.ResetGame)
}

func (that *Server) handleGameRestart(ctx context.Context, conn *connection, msg *Message) error {
	return that.handleGameAction(ctx, conn, msg, that.gameUseCase.RestartGame)
}

func (that *Server) handleGameState(ctx context.Context, conn *connection, msg *Message) error {
	return that.handleGameAction(ctx, conn, msg, that.gameUseCase.GetState)
}

// handleGameMove - places the mark of the current player on the cell from the payload.
func (that *Server) handleGameMove(ctx context.Context, conn *connection, msg *Message) error {
	log := that.logger.With("method", "handleGameMove", "session", conn.sessionID)

	var payloadReq Payload

	if err := json.Unmarshal(msg.Payload, &payloadReq); err != nil {
		return that.sendErrorResponse(conn, msg.Action, "invalid payload")
	}

	if payloadReq.Cell == nil {
		log.Error("cell is missing in payload")
		return that.sendErrorResponse(conn, msg.Action, "cell is required")
	}

	game, err := that.gameUseCase.MakeMove(ctx, conn.sessionID, *payloadReq.Cell)
	if err != nil {
		if errors.Is(err, apperror.ErrInvalidInput) {
			return that.sendErrorResponse(conn, msg.Action, apperror.ErrInvalidInput.Error())
		}

		log.Error("failed to make move", "error", err)

		return that.sendErrorResponse(conn, msg.Action, "failed to make move")
	}

	return that.sendGame(conn, msg.Action, game)
}

func (that *Server) handleGameAction(ctx context.Context, conn *connection, msg *Message, action gameAction) error {
	log := that.logger.With("method", "handleGameAction", "action", msg.Action, "session", conn.sessionID)

	game, err := action(ctx, conn.sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrGameAlreadyStarted) {
			return that.sendErrorResponse(conn, msg.Action, err.Error())
		}

		log.Error("failed to process game action", "error", err)

		return that.sendErrorResponse(conn, msg.Action, "failed to process the game")
	}

	return that.sendGame(conn, msg.Action, game)
}

func (that *Server) sendGame(conn *connection, action string, game *entity.GameState) error {
	payload := Payload{
		SessionID: conn.sessionID,
		Game:      newGameView(game, that.gameUseCase.RemainingTicks(conn.sessionID)),
	}

	if err := conn.sendMessage(action, payload); err != nil {
		return fmt.Errorf("failed to send response: %w", err)
	}

	return nil
}

// sendErrorResponse - sends an error message to the client.
func (that *Server) sendErrorResponse(conn *connection, action, errorMsg string) error {
	if err := conn.sendMessage(action, Payload{Error: errorMsg}); err != nil {
		return fmt.Errorf("failed to send error response: %w", err)
	}

	return nil
}
