package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
)

const (
	maxReconnects = 10
	reconnectWait = 2 * time.Second
)

type conn interface {
	Publish(subject string, data []byte) error
	Drain() error
}

// Message - what subscribers receive for every game event.
type Message struct {
	SessionID string            `json:"session_id"`
	Type      entity.EventType  `json:"type"`
	Player    entity.Mark       `json:"player,omitempty"`
	Cell      *int              `json:"cell,omitempty"`
	Status    string            `json:"status"`
	State     *entity.GameState `json:"state"`
}

// Publisher - publishes game events on <prefix>.<session>.<type>, ticks are not published.
type Publisher struct {
	logger *slog.Logger
	conn   conn
	prefix string
}

func New(logger *slog.Logger, conn conn, prefix string) *Publisher {
	return &Publisher{
		logger: logger.With("component", "nats_publisher"),
		conn:   conn,
		prefix: prefix,
	}
}

// Connect - connects to the NATS server at url.
func Connect(logger *slog.Logger, url, prefix string) (*Publisher, error) {
	log := logger.With("component", "nats")

	nc, err := nats.Connect(url,
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Error("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return New(logger, nc, prefix), nil
}

func (that *Publisher) Subject(sessionID string, eventType entity.EventType) string {
	return fmt.Sprintf("%s.%s.%s", that.prefix, sessionID, eventType)
}

func (that *Publisher) Notify(_ context.Context, sessionID string, event *entity.Event) {
	if event.Type == entity.EventTick {
		return
	}

	log := that.logger.With("method", "Notify", "session", sessionID)

	data, err := json.Marshal(Message{
		SessionID: sessionID,
		Type:      event.Type,
		Player:    event.Player,
		Cell:      event.Cell,
		Status:    event.State.StatusText(),
		State:     event.State,
	})
	if err != nil {
		log.Error("failed to marshal event", "error", err)
		return
	}

	if err = that.conn.Publish(that.Subject(sessionID, event.Type), data); err != nil {
		log.Error("failed to publish event", "error", err)
	}
}

// Close - flushes pending messages and closes the connection.
func (that *Publisher) Close() error {
	if err := that.conn.Drain(); err != nil {
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}

	return nil
}
