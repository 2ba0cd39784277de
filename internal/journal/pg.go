package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/arcanarena/arena-server-go/internal/game"
)

const schemaDDL = `
CREATE TABLE IF NOT EXISTS game_journal (
	game_id   TEXT        NOT NULL,
	sequence  BIGINT      NOT NULL,
	actor_id  TEXT        NOT NULL,
	action    JSONB       NOT NULL,
	before    JSONB,
	status    TEXT        NOT NULL,
	message   TEXT        NOT NULL DEFAULT '',
	at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, sequence)
)`

// PGStore persists the journal to PostgreSQL through a pgx pool.
type PGStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPGStore connects to the database, verifies the connection and ensures
// the journal table exists.
func NewPGStore(ctx context.Context, databaseURL string, logger *zap.Logger) (*PGStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect journal database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping journal database: %w", err)
	}
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure journal schema: %w", err)
	}
	logger.Info("journal store connected")
	return &PGStore{pool: pool, logger: logger}, nil
}

// Record inserts one journal entry. The sequence is allocated from the
// current row count of the game so concurrent writers of different games do
// not contend.
func (p *PGStore) Record(ctx context.Context, entry Entry) error {
	actionJSON, err := json.Marshal(entry.Action)
	if err != nil {
		return fmt.Errorf("marshal action: %w", err)
	}
	var beforeJSON []byte
	if entry.Before != nil {
		if beforeJSON, err = json.Marshal(entry.Before); err != nil {
			return fmt.Errorf("marshal view: %w", err)
		}
	}
	at := entry.At
	if at.IsZero() {
		at = time.Now()
	}

	_, err = p.pool.Exec(ctx, `
		INSERT INTO game_journal (game_id, sequence, actor_id, action, before, status, message, at)
		VALUES ($1,
			(SELECT COALESCE(MAX(sequence) + 1, 0) FROM game_journal WHERE game_id = $1),
			$2, $3, $4, $5, $6, $7)`,
		entry.GameID, entry.ActorID, actionJSON, beforeJSON,
		string(entry.Result.Status), entry.Result.Message, at,
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// Entries loads a game's journal in sequence order.
func (p *PGStore) Entries(ctx context.Context, gameID string) ([]Entry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT sequence, actor_id, action, before, status, message, at
		FROM game_journal WHERE game_id = $1 ORDER BY sequence`, gameID)
	if err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			actionJSON []byte
			beforeJSON []byte
			status     string
		)
		entry.GameID = gameID
		if err := rows.Scan(&entry.Sequence, &entry.ActorID, &actionJSON, &beforeJSON, &status, &entry.Result.Message, &entry.At); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		if err := json.Unmarshal(actionJSON, &entry.Action); err != nil {
			return nil, fmt.Errorf("unmarshal action: %w", err)
		}
		if len(beforeJSON) > 0 {
			entry.Before = &game.VisibleState{}
			if err := json.Unmarshal(beforeJSON, entry.Before); err != nil {
				return nil, fmt.Errorf("unmarshal view: %w", err)
			}
		}
		entry.Result.Status = game.Status(status)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Close releases the connection pool.
func (p *PGStore) Close() {
	p.pool.Close()
}
