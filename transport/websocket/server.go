package websocket

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
)

const (
	sessionCookieName = "user_session"
	sessionLifetime   = 24 * time.Hour

	writeTimeout   = 10 * time.Second
	maxMessageSize = 4096
)

type gameUseCase interface {
	StartGame(ctx context.Context, sessionID string) (*entity.GameState, error)
	MakeMove(ctx context.Context, sessionID string, cell int) (*entity.GameState, error)
	ResetGame(ctx context.Context, sessionID string) (*entity.GameState, error)
	RestartGame(ctx context.Context, sessionID string) (*entity.GameState, error)
	GetState(ctx context.Context, sessionID string) (*entity.GameState, error)
	RemainingTicks(sessionID string) int
	CloseSession(ctx context.Context, sessionID string)
}

type handlerFunc func(ctx context.Context, conn *connection, msg *Message) error

// connection - gorilla connections allow only one writer at a time.
type connection struct {
	sessionID string
	conn      *websocket.Conn
	writeMu   sync.Mutex
}

type Server struct {
	logger      *slog.Logger
	gameUseCase gameUseCase
	upgrader    websocket.Upgrader

	connectionsMutex sync.RWMutex
	connections      map[string]*connection

	handlers map[string]handlerFunc
}

func New(logger *slog.Logger, gameUseCase gameUseCase) *Server {
	server := &Server{
		logger:      logger.With("component", "websocket"),
		gameUseCase: gameUseCase,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},

		connections: make(map[string]*connection),
	}

	server.handlers = map[string]handlerFunc{
		actionConnect:     server.handleConnect,
		actionGameStart:   server.handleGameStart,
		actionGameMove:    server.handleGameMove,
		actionGameReset:   server.handleGameReset,
		actionGameRestart: server.handleGameRestart,
		actionGameState:   server.handleGameState,
	}

	return server
}

// Start - starts WebSocket server, it stops when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/ws", that.Handler(ctx))

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			that.logger.Error("failed to shutdown server", "error", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Handler - the /ws endpoint.
func (that *Server) Handler(ctx context.Context) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		that.upgradeToWebSocket(ctx, w, r)
	})
}

// upgradeToWebSocket - upgrades the connection to WebSocket and binds it to the session from the cookie.
func (that *Server) upgradeToWebSocket(ctx context.Context, writer http.ResponseWriter, req *http.Request) {
	log := that.logger.With("method", "upgradeToWebSocket")

	sessionID, header := that.sessionFromCookie(req)

	wsConn, err := that.upgrader.Upgrade(writer, req, header)
	if err != nil {
		log.Error("failed to upgrade connection", "error", err)
		return
	}

	conn := &connection{
		sessionID: sessionID,
		conn:      wsConn,
	}

	that.register(conn)
	defer that.handleDisconnect(ctx, conn)

	log.Info("WebSocket connection established", "session", sessionID)

	if err = that.handleMessages(ctx, conn); err != nil {
		log.Error("error handling messages", "error", err)
	}
}

// handleMessages - processes messages from the client until the connection is closed.
func (that *Server) handleMessages(ctx context.Context, conn *connection) error {
	log := that.logger.With("method", "handleMessages")

	conn.conn.SetReadLimit(maxMessageSize)

	for {
		message, err := conn.readMessage()
		if err != nil {
			if isClosed(err) {
				return nil
			}

			var syntaxErr *messageError
			if errors.As(err, &syntaxErr) {
				log.Error("failed to unmarshal message", "error", err)
				continue
			}

			return fmt.Errorf("error reading message: %w", err)
		}

		handler, ok := that.handlers[message.Action]
		if !ok {
			log.Error("unknown action", "action", message.Action)

			if err = that.sendErrorResponse(conn, message.Action, "unknown action"); err != nil {
				return err
			}

			continue
		}

		if err = handler(ctx, conn, message); err != nil {
			log.Error("error processing message", "action", message.Action, "error", err)
		}
	}
}

// sessionFromCookie - returns the session id and the header that sets a new cookie when there was none.
func (that *Server) sessionFromCookie(req *http.Request) (string, http.Header) {
	log := that.logger.With("method", "sessionFromCookie")

	cookie, err := req.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		log.Debug("session cookie found", "cookie", cookie.Value)
		return cookie.Value, nil
	}

	cookie = &http.Cookie{
		Name:     sessionCookieName,
		Value:    uuid.NewString(),
		Expires:  time.Now().Add(sessionLifetime),
		Path:     "/ws",
		HttpOnly: true,
	}

	log.Info("session cookie not found, new one created", "cookie", cookie.Value)

	return cookie.Value, http.Header{"Set-Cookie": []string{cookie.String()}}
}

// register - binds the connection to its session, an older connection of the same session is closed.
func (that *Server) register(conn *connection) {
	that.connectionsMutex.Lock()
	previous, ok := that.connections[conn.sessionID]
	that.connections[conn.sessionID] = conn
	that.connectionsMutex.Unlock()

	if ok && previous != conn {
		_ = previous.conn.Close()
	}
}

// rebind - moves the connection to another session, the game of the session it owned is abandoned.
func (that *Server) rebind(ctx context.Context, conn *connection, sessionID string) {
	that.connectionsMutex.Lock()
	previousID := conn.sessionID
	current, ok := that.connections[previousID]
	owned := ok && current == conn
	if owned {
		delete(that.connections, previousID)
	}
	conn.sessionID = sessionID
	that.connectionsMutex.Unlock()

	if owned {
		that.gameUseCase.CloseSession(ctx, previousID)
	}

	that.register(conn)
}

// handleDisconnect - the game of a closed connection is abandoned unless another connection took the session over.
func (that *Server) handleDisconnect(ctx context.Context, conn *connection) {
	_ = conn.conn.Close()

	that.connectionsMutex.Lock()
	current, ok := that.connections[conn.sessionID]
	owned := ok && current == conn
	if owned {
		delete(that.connections, conn.sessionID)
	}
	that.connectionsMutex.Unlock()

	if owned {
		that.gameUseCase.CloseSession(ctx, conn.sessionID)
	}

	that.logger.Info("WebSocket connection closed", "session", conn.sessionID)
}

// Notify - pushes a game event to the connection of the session.
func (that *Server) Notify(_ context.Context, sessionID string, event *entity.Event) {
	that.connectionsMutex.RLock()
	conn, ok := that.connections[sessionID]
	that.connectionsMutex.RUnlock()

	if !ok {
		return
	}

	payload := Payload{
		Event: newEventView(event),
		Game:  newGameView(event.State, that.remainingOf(sessionID, event)),
	}

	if err := conn.sendMessage(actionGameEvent, payload); err != nil {
		that.logger.Error("failed to send game event", "session", sessionID, "error", err)
	}
}

func (that *Server) remainingOf(sessionID string, event *entity.Event) int {
	if event.Remaining != nil {
		return *event.Remaining
	}

	return that.gameUseCase.RemainingTicks(sessionID)
}
