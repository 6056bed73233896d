package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
	"github.com/rs/cors"
)

type gameUseCase interface {
	GetSnapshot(ctx context.Context, sessionID string) (*entity.GameState, error)
}

type Server struct {
	logger         *slog.Logger
	gameUseCase    gameUseCase
	allowedOrigins []string
}

func New(logger *slog.Logger, gameUseCase gameUseCase, allowedOrigins []string) *Server {
	return &Server{
		logger:         logger.With("component", "rest"),
		gameUseCase:    gameUseCase,
		allowedOrigins: allowedOrigins,
	}
}

// Handler - routes wrapped with CORS.
func (that *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ping", that.pingHandler)
	mux.HandleFunc("GET /game", that.gameHandler)

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedOrigins: that.allowedOrigins,
		AllowedHeaders: []string{"*"},
	}).Handler(mux)
}

// Start - starts HTTP server, it stops when ctx is done.
func (that *Server) Start(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      that.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  30 * time.Second,
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
