package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/rocketscienceinc/blind-tictactoe/internal/config"
	"github.com/rocketscienceinc/blind-tictactoe/internal/repository"
	"github.com/rocketscienceinc/blind-tictactoe/internal/repository/storage"
	"github.com/rocketscienceinc/blind-tictactoe/internal/usecase"
	"github.com/rocketscienceinc/blind-tictactoe/transport/nats"
	"github.com/rocketscienceinc/blind-tictactoe/transport/rest"
	"github.com/rocketscienceinc/blind-tictactoe/transport/websocket"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	redisAddrString := conf.Redis.GetRedisAddr()
	if redisAddrString == "" {
		return ErrAddrNotFound
	}

	redisStorage, err := storage.New(ctx, redisAddrString)
	if err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err = redisStorage.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	gameRepo := repository.NewGameRepository(redisStorage, conf.Redis.TTL)
	gameUseCase := usecase.NewGameManager(logger, gameRepo, clockwork.NewRealClock(), usecase.CountdownSettings{
		Enabled:  conf.Countdown.Enabled(),
		Ticks:    conf.Countdown.Ticks,
		Interval: conf.Countdown.TickInterval,
	})
	defer gameUseCase.Close()

	if conf.NATS.URL != "" {
		publisher, natsErr := nats.Connect(logger, conf.NATS.URL, conf.NATS.SubjectPrefix)
		if natsErr != nil {
			return fmt.Errorf("could not connect to NATS: %w", natsErr)
		}

		defer func() {
			if closeErr := publisher.Close(); closeErr != nil {
				log.Error("could not close NATS publisher", "error", closeErr)
			}
		}()

		gameUseCase.AddNotifier(publisher)
		log.Info("Publishing game events to NATS", "url", conf.NATS.URL)
	}

	wsServer := websocket.New(logger, gameUseCase)
	gameUseCase.AddNotifier(wsServer)

	restServer := rest.New(logger, gameUseCase, conf.CORS.AllowedOrigins)

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if httpErr := restServer.Start(ctx, conf.HTTPPort); httpErr != nil {
			log.Error("HTTP server error", "error", httpErr)
			httpErrCh <- httpErr
		}
	}()

	// run Websocket server
	wsErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting WebSocket server", "port", conf.SocketPort)
		if wsErr := wsServer.Start(ctx, conf.SocketPort); wsErr != nil {
			log.Error("WebSocket server error", "error", wsErr)
			wsErrCh <- wsErr
		}
	}()

	select {
	case err = <-httpErrCh:
		return fmt.Errorf("HTTP server error: %w", err)
	case err = <-wsErrCh:
		return fmt.Errorf("WebSocket server error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
		return nil
	}
}
