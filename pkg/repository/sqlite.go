package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mcortez-ml/nutria/pkg/model"

	_ "modernc.org/sqlite"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLite opens (or creates) a SQLite-backed conversation store.
func NewSQLite(path string) (Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	repo := &sqliteRepository{db: db}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *sqliteRepository) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS conversations (
        id TEXT PRIMARY KEY,
        title TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS turns (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        conversation_id TEXT NOT NULL,
        seq INTEGER NOT NULL,
        user_text TEXT NOT NULL,
        assistant_text TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, seq);
    `

	if _, err := r.db.Exec(schema); err != nil {
		return goerr.Wrap(err, "failed to create schema")
	}

	return nil
}

func (r *sqliteRepository) Close() error {
	return r.db.Close()
}

func (r *sqliteRepository) PutConversation(ctx context.Context, conv *model.Conversation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO conversations (id, title, created_at, updated_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at
    `, string(conv.ID), conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return goerr.Wrap(err, "failed to upsert conversation")
	}

	// Turns are append-only; rewriting them keeps Put idempotent.
	if _, err := tx.ExecContext(ctx, `DELETE FROM turns WHERE conversation_id = ?`, string(conv.ID)); err != nil {
		return goerr.Wrap(err, "failed to clear turns")
	}

	for i, t := range conv.Turns {
		_, err := tx.ExecContext(ctx, `
            INSERT INTO turns (conversation_id, seq, user_text, assistant_text, created_at)
            VALUES (?, ?, ?, ?, ?)
        `, string(conv.ID), i, t.User, t.Assistant, t.CreatedAt)
		if err != nil {
			return goerr.Wrap(err, "failed to insert turn", goerr.V("seq", i))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit conversation")
	}
	return nil
}

func (r *sqliteRepository) GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}

	row := r.db.QueryRowContext(ctx, `
        SELECT title, created_at, updated_at FROM conversations WHERE id = ?
    `, string(id))
	if err := row.Scan(&conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
		return nil, goerr.Wrap(err, "failed to get conversation", goerr.V("id", id))
	}

	turns, err := r.loadTurns(ctx, id)
	if err != nil {
		return nil, err
	}
	conv.Turns = turns

	return conv, nil
}

func (r *sqliteRepository) ListConversations(ctx context.Context, offset, limit int) ([]*model.Conversation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
        SELECT id, title, created_at, updated_at
        FROM conversations
        ORDER BY updated_at DESC
        LIMIT ? OFFSET ?
    `, limit, offset)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list conversations")
	}
	defer rows.Close()

	var convs []*model.Conversation
	for rows.Next() {
		conv := &model.Conversation{}
		var id string
		if err := rows.Scan(&id, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan conversation")
		}
		conv.ID = model.ConversationID(id)
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate conversations")
	}

	for _, conv := range convs {
		turns, err := r.loadTurns(ctx, conv.ID)
		if err != nil {
			return nil, err
		}
		conv.Turns = turns
	}

	return convs, nil
}

func (r *sqliteRepository) loadTurns(ctx context.Context, id model.ConversationID) ([]model.Turn, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT user_text, assistant_text, created_at
        FROM turns
        WHERE conversation_id = ?
        ORDER BY seq
    `, string(id))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load turns", goerr.V("id", id))
	}
	defer rows.Close()

	var turns []model.Turn
	for rows.Next() {
		var t model.Turn
		var createdAt time.Time
		if err := rows.Scan(&t.User, &t.Assistant, &createdAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan turn")
		}
		t.CreatedAt = createdAt
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate turns")
	}

	return turns, nil
}
