package game

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arcanarena/arena-server-go/internal/cards"
)

// gameSlot serializes all access to one game's state. The engine is the
// sole mutator of GameState; collaborators only ever see projections.
type gameSlot struct {
	mu    sync.Mutex
	state *State
}

// Engine hosts running games and is the submission boundary for actions.
type Engine struct {
	logger *zap.Logger
	db     *cards.DB

	mu    sync.RWMutex
	games map[string]*gameSlot
}

// NewEngine creates an engine serving games over the given card database.
func NewEngine(logger *zap.Logger, db *cards.DB) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger,
		db:     db,
		games:  make(map[string]*gameSlot),
	}
}

// CreateGame starts a new game between two players and returns its id. The
// first setup entry takes the first turn.
func (e *Engine) CreateGame(seed int64, setups [2]PlayerSetup) (string, error) {
	state, err := NewState(e.db, seed, setups)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	e.games[state.ID] = &gameSlot{state: state}
	e.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", state.ID),
		zap.String("player_one", setups[0].ID),
		zap.String("player_two", setups[1].ID),
	)
	return state.ID, nil
}

func (e *Engine) slot(gameID string) (*gameSlot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	slot, ok := e.games[gameID]
	if !ok {
		return nil, fmt.Errorf("unknown game %s", gameID)
	}
	return slot, nil
}

// Submit validates and resolves one action. A panic during resolution is
// recovered into an ERROR result; the engine makes no rollback guarantee
// for partial mutation in that case.
func (e *Engine) Submit(gameID string, action Action) (result ResolutionResult) {
	slot, err := e.slot(gameID)
	if err != nil {
		return ResolutionResult{Status: StatusError, Message: err.Error()}
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("action resolution panicked",
				zap.String("game_id", gameID),
				zap.String("action", string(action.Type)),
				zap.String("actor", action.ActorID),
				zap.Any("panic", r),
			)
			result = ResolutionResult{
				Status:  StatusError,
				Message: fmt.Sprintf("internal error resolving %s", action.Type),
			}
		}
	}()

	result = slot.state.Apply(action)
	e.logger.Debug("action submitted",
		zap.String("game_id", gameID),
		zap.String("action", string(action.Type)),
		zap.String("actor", action.ActorID),
		zap.String("status", string(result.Status)),
	)
	return result
}

// View returns the player-scoped projection of a game.
func (e *Engine) View(gameID, playerID string) (*VisibleState, error) {
	slot, err := e.slot(gameID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	if _, ok := slot.state.Players[playerID]; !ok {
		return nil, fmt.Errorf("unknown player %s", playerID)
	}
	return slot.state.View(playerID), nil
}

// LegalActionsFor enumerates the player's legal actions in a game.
func (e *Engine) LegalActionsFor(gameID, playerID string) ([]Action, error) {
	slot, err := e.slot(gameID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.state.LegalActions(playerID), nil
}

// SchemaFor builds the structured legality schema for a player in a game.
func (e *Engine) SchemaFor(gameID, playerID string) (*Schema, error) {
	slot, err := e.slot(gameID)
	if err != nil {
		return nil, err
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.state.BuildSchema(playerID), nil
}
