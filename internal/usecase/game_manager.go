package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rocketscienceinc/blind-tictactoe/internal/apperror"
	"github.com/rocketscienceinc/blind-tictactoe/internal/countdown"
	"github.com/rocketscienceinc/blind-tictactoe/internal/entity"
	"github.com/rocketscienceinc/blind-tictactoe/internal/repository"
	"github.com/rocketscienceinc/blind-tictactoe/internal/tictactoe"
)

type gameRepo interface {
	CreateOrUpdate(ctx context.Context, sessionID string, game *entity.GameState) error
	GetBySessionID(ctx context.Context, sessionID string) (*entity.GameState, error)
	DeleteBySessionID(ctx context.Context, sessionID string) error
}

// Notifier receives every event of every session, ticks included.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, event *entity.Event)
}

type CountdownSettings struct {
	Enabled  bool
	Ticks    int
	Interval time.Duration
}

// session - one blind game. The mutex serializes moves, resets and timeouts of the game.
type session struct {
	mu        sync.Mutex
	id        string
	engine    *tictactoe.Engine
	countdown *countdown.Countdown
}

type GameManager struct {
	logger   *slog.Logger
	gameRepo gameRepo
	clock    clockwork.Clock
	settings CountdownSettings

	sessionsMutex sync.Mutex
	sessions      map[string]*session

	notifiersMutex sync.RWMutex
	notifiers      []Notifier
}

func NewGameManager(logger *slog.Logger, gameRepo gameRepo, clock clockwork.Clock, settings CountdownSettings) *GameManager {
	return &GameManager{
		logger:   logger.With("component", "game_manager"),
		gameRepo: gameRepo,
		clock:    clock,
		settings: settings,

		sessions: make(map[string]*session),
	}
}

// AddNotifier - registers a receiver of game events.
func (that *GameManager) AddNotifier(notifier Notifier) {
	that.notifiersMutex.Lock()
	defer that.notifiersMutex.Unlock()

	that.notifiers = append(that.notifiers, notifier)
}

func (that *GameManager) StartGame(ctx context.Context, sessionID string) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	event := sess.engine.Start()
	if event == nil {
		return sess.engine.State(), apperror.ErrGameAlreadyStarted
	}

	that.publish(ctx, sessionID, event)

	return event.State, nil
}

// MakeMove - moves on a game that is not running are ignored and return the unchanged state.
func (that *GameManager) MakeMove(ctx context.Context, sessionID string, cell int) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	event, err := sess.engine.ApplyMove(cell)
	if err != nil {
		return nil, fmt.Errorf("failed make move: %w", err)
	}

	if event == nil {
		return sess.engine.State(), nil
	}

	that.publish(ctx, sessionID, event)

	return event.State, nil
}

// Timeout - ends the running game as lost by the current player.
func (that *GameManager) Timeout(ctx context.Context, sessionID string) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if event := sess.engine.ApplyTimeout(); event != nil {
		that.publish(ctx, sessionID, event)
		return event.State, nil
	}

	return sess.engine.State(), nil
}

func (that *GameManager) ResetGame(ctx context.Context, sessionID string) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	event := sess.engine.Reset()
	that.publish(ctx, sessionID, event)

	return event.State, nil
}

// RestartGame - resets the game and starts a new one right away.
func (that *GameManager) RestartGame(ctx context.Context, sessionID string) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	that.publish(ctx, sessionID, sess.engine.Reset())

	event := sess.engine.Start()
	that.publish(ctx, sessionID, event)

	return event.State, nil
}

func (that *GameManager) GetState(_ context.Context, sessionID string) (*entity.GameState, error) {
	sess, err := that.getOrCreateSession(sessionID)
	if err != nil {
		return nil, err
	}

	return sess.engine.State(), nil
}

// GetSnapshot - the last stored state of a session, it also works for sessions of other instances.
func (that *GameManager) GetSnapshot(ctx context.Context, sessionID string) (*entity.GameState, error) {
	if sessionID == "" {
		return nil, apperror.ErrSessionRequired
	}

	game, err := that.gameRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// RemainingTicks - ticks left for the current turn, 0 when the countdown is not running.
func (that *GameManager) RemainingTicks(sessionID string) int {
	that.sessionsMutex.Lock()
	sess, ok := that.sessions[sessionID]
	that.sessionsMutex.Unlock()

	if !ok || sess.countdown == nil {
		return 0
	}

	return sess.countdown.Remaining()
}

// CloseSession - stops the countdown and forgets the game.
func (that *GameManager) CloseSession(ctx context.Context, sessionID string) {
	log := that.logger.With("method", "CloseSession", "session", sessionID)

	that.sessionsMutex.Lock()
	sess, ok := that.sessions[sessionID]
	delete(that.sessions, sessionID)
	that.sessionsMutex.Unlock()

	if !ok {
		return
	}

	that.stopSession(sess)

	if err := that.gameRepo.DeleteBySessionID(ctx, sessionID); err != nil && !errors.Is(err, repository.ErrGameNotFound) {
		log.Error("failed to delete game", "error", err)
	}

	log.Info("session closed")
}

// Close - stops the countdowns of all sessions.
func (that *GameManager) Close() {
	that.sessionsMutex.Lock()
	sessions := that.sessions
	that.sessions = make(map[string]*session)
	that.sessionsMutex.Unlock()

	for _, sess := range sessions {
		that.stopSession(sess)
	}
}

func (that *GameManager) stopSession(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.countdown != nil {
		sess.countdown.Stop()
	}
}

func (that *GameManager) getOrCreateSession(sessionID string) (*session, error) {
	if sessionID == "" {
		return nil, apperror.ErrSessionRequired
	}

	that.sessionsMutex.Lock()
	defer that.sessionsMutex.Unlock()

	if sess, ok := that.sessions[sessionID]; ok {
		return sess, nil
	}

	sess := &session{id: sessionID}

	if that.settings.Enabled {
		sess.countdown = countdown.New(that.clock, that.settings.Ticks, that.settings.Interval,
			func(round uint64, remaining int) {
				that.handleTick(sess, round, remaining)
			},
			func(round uint64) {
				that.handleExpire(sess, round)
			},
		)
		sess.engine = tictactoe.NewEngine(sess.countdown)
	} else {
		sess.engine = tictactoe.NewEngine(nil)
	}

	that.sessions[sessionID] = sess

	return sess, nil
}

// handleTick - runs under the session lock, ticks of a replaced round are dropped.
func (that *GameManager) handleTick(sess *session, round uint64, remaining int) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.countdown.IsCurrent(round) {
		return
	}

	state := sess.engine.State()

	that.notify(context.Background(), sess.id, &entity.Event{
		Type:      entity.EventTick,
		State:     state,
		Player:    state.CurrentPlayer,
		Remaining: &remaining,
		Warning:   countdown.IsWarning(remaining),
	})
}

// handleExpire - a round that was restarted or stopped in the meantime is stale and must not end the game.
func (that *GameManager) handleExpire(sess *session, round uint64) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.countdown.IsCurrent(round) {
		return
	}

	if event := sess.engine.ApplyTimeout(); event != nil {
		that.publish(context.Background(), sess.id, event)
	}
}

// publish - stores the new state and notifies everyone, failures are only logged.
func (that *GameManager) publish(ctx context.Context, sessionID string, event *entity.Event) {
	log := that.logger.With("method", "publish", "session", sessionID)

	if err := that.gameRepo.CreateOrUpdate(ctx, sessionID, event.State); err != nil {
		log.Error("failed to save game", "error", err)
	}

	log.Debug("game event", "type", event.Type, "phase", event.State.Phase)

	that.notify(ctx, sessionID, event)
}

func (that *GameManager) notify(ctx context.Context, sessionID string, event *entity.Event) {
	that.notifiersMutex.RLock()
	defer that.notifiersMutex.RUnlock()

	for _, notifier := range that.notifiers {
		notifier.Notify(ctx, sessionID, event)
	}
}
