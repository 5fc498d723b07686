// Package store persists the frame builder's ordered block list in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"sigmair/internal/logging"
	"sigmair/internal/sigma"
)

var (
	// ErrNotFound is returned when no block has the given id.
	ErrNotFound = errors.New("block not found")
	// ErrEmptyInput is returned by Add for blank input.
	ErrEmptyInput = errors.New("input required")
	// ErrAmbiguousID is returned by Resolve when a prefix matches several blocks.
	ErrAmbiguousID = errors.New("ambiguous block id")
)

// Block is one entry of the list: the user's input and its serialized
// translation.
type Block struct {
	ID        string    `json:"id"`
	Position  int       `json:"position"`
	Input     string    `json:"input"`
	Output    string    `json:"output"`
	IsError   bool      `json:"is_error"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockStore is an ordered block list backed by SQLite.
type BlockStore struct {
	db         *sql.DB
	mu         sync.Mutex
	dbPath     string
	translator *sigma.Translator
	now        func() time.Time
}

// NewBlockStore opens (creating if needed) the database at path. A nil
// translator uses the built-in lexicon.
func NewBlockStore(path string, translator *sigma.Translator) (*BlockStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if translator == nil {
		translator = sigma.NewTranslator(sigma.DefaultLexicon())
	}
	s := &BlockStore{db: db, dbPath: path, translator: translator, now: time.Now}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Block store opened at %s", path)
	return s, nil
}

func (s *BlockStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS blocks (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		input TEXT NOT NULL,
		output TEXT NOT NULL,
		is_error INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_blocks_position ON blocks(position);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return RunMigrations(s.db)
}

// Close closes the database connection.
func (s *BlockStore) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *BlockStore) Path() string {
	return s.dbPath
}

// Add translates input and appends the result to the end of the list.
func (s *BlockStore) Add(ctx context.Context, input string) (Block, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Block{}, ErrEmptyInput
	}

	res := s.translator.Translate(input)
	b := Block{
		ID:        uuid.NewString(),
		Input:     input,
		Output:    res.Output,
		IsError:   !res.Success,
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Block{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(position), -1) + 1 FROM blocks").Scan(&b.Position); err != nil {
		return Block{}, fmt.Errorf("failed to read position: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO blocks (id, position, input, output, is_error, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		b.ID, b.Position, b.Input, b.Output, b.IsError, b.CreatedAt.UnixMilli(),
	)
	if err != nil {
		logging.StoreError("Failed to insert block: %v", err)
		return Block{}, fmt.Errorf("failed to insert block: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Block{}, fmt.Errorf("failed to commit block: %w", err)
	}

	logging.StoreDebug("Added block %s at position %d: %s", b.ID, b.Position, b.Output)
	logging.Audit(logging.CategoryStore).BlockEvent(logging.AuditBlockAdd, b.ID, nil)
	return b, nil
}

// List returns every block in list order.
func (s *BlockStore) List(ctx context.Context) ([]Block, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, position, input, output, is_error, created_at FROM blocks ORDER BY position",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query blocks: %w", err)
	}
	defer rows.Close()

	var blocks []Block
	for rows.Next() {
		var b Block
		var created int64
		if err := rows.Scan(&b.ID, &b.Position, &b.Input, &b.Output, &b.IsError, &created); err != nil {
			return nil, fmt.Errorf("failed to scan block: %w", err)
		}
		b.CreatedAt = time.UnixMilli(created).UTC()
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}
	return blocks, nil
}

// Outputs returns the serialized blocks in list order, ready for
// sigma.BuildFrame or sigma.PreviewFrameOrder.
func (s *BlockStore) Outputs(ctx context.Context) ([]string, error) {
	blocks, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	outputs := make([]string, len(blocks))
	for i, b := range blocks {
		outputs[i] = b.Output
	}
	return outputs, nil
}

// Get returns the block with id.
func (s *BlockStore) Get(ctx context.Context, id string) (Block, error) {
	var b Block
	var created int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id, position, input, output, is_error, created_at FROM blocks WHERE id = ?", id,
	).Scan(&b.ID, &b.Position, &b.Input, &b.Output, &b.IsError, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Block{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Block{}, fmt.Errorf("failed to get block: %w", err)
	}
	b.CreatedAt = time.UnixMilli(created).UTC()
	return b, nil
}

// likeEscaper makes a user prefix match literally inside LIKE.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Resolve expands a unique id prefix to a full block id. The prefix is
// matched literally; % and _ are not wildcards.
func (s *BlockStore) Resolve(ctx context.Context, prefix string) (string, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM blocks WHERE id LIKE ? || '%' ESCAPE '\' LIMIT 2`, likeEscaper.Replace(prefix))
	if err != nil {
		return "", fmt.Errorf("failed to resolve id: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", fmt.Errorf("failed to scan id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("failed to resolve id: %w", err)
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Remove deletes the block with id.
func (s *BlockStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM blocks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete block: %w", err)
	}
	if n == 0 {
		err := fmt.Errorf("%w: %s", ErrNotFound, id)
		logging.Audit(logging.CategoryStore).BlockEvent(logging.AuditBlockRemove, id, err)
		return err
	}

	logging.Audit(logging.CategoryStore).BlockEvent(logging.AuditBlockRemove, id, nil)
	return nil
}

// MoveUp swaps the block with its predecessor. The first block stays put.
func (s *BlockStore) MoveUp(ctx context.Context, id string) error {
	return s.swap(ctx, id,
		"SELECT id, position FROM blocks WHERE position < ? ORDER BY position DESC LIMIT 1")
}

// MoveDown swaps the block with its successor. The last block stays put.
func (s *BlockStore) MoveDown(ctx context.Context, id string) error {
	return s.swap(ctx, id,
		"SELECT id, position FROM blocks WHERE position > ? ORDER BY position ASC LIMIT 1")
}

func (s *BlockStore) swap(ctx context.Context, id, neighborQuery string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var pos int
	err = tx.QueryRowContext(ctx, "SELECT position FROM blocks WHERE id = ?", id).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to read block: %w", err)
	}

	var otherID string
	var otherPos int
	err = tx.QueryRowContext(ctx, neighborQuery, pos).Scan(&otherID, &otherPos)
	if errors.Is(err, sql.ErrNoRows) {
		logging.StoreDebug("Block %s already at the edge", id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read neighbor: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "UPDATE blocks SET position = ? WHERE id = ?", otherPos, id); err != nil {
		return fmt.Errorf("failed to move block: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE blocks SET position = ? WHERE id = ?", pos, otherID); err != nil {
		return fmt.Errorf("failed to move block: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	logging.Audit(logging.CategoryStore).BlockEvent(logging.AuditBlockMove, id, nil)
	return nil
}

// Clear deletes every block and returns how many were removed.
func (s *BlockStore) Clear(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM blocks")
	if err != nil {
		return 0, fmt.Errorf("failed to clear blocks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to clear blocks: %w", err)
	}

	logging.Audit(logging.CategoryStore).Log(logging.AuditEvent{
		EventType: logging.AuditBlockClear,
		Success:   true,
		Fields:    map[string]interface{}{"removed": n},
	})
	return int(n), nil
}
