package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Jaydeep9963/M32-BIZ-PILOT/internal/model"
)

type sqliteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository returns the durable SQL backend. The schema is created by
// database.InitDB.
func NewSQLiteRepository(db *sql.DB) Store {
	return &sqliteRepository{db: db}
}

func (r *sqliteRepository) Name() string { return "sqlite" }

// --- Conversation Operations ---

func (r *sqliteRepository) LoadOrCreate(ctx context.Context, ownerID, conversationID, seedTitle string) (*model.Conversation, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if conversationID != "" {
		conv, err := r.Get(ctx, ownerID, conversationID)
		if err == nil {
			return conv, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	conv := newConversation(ownerID, seedTitle)
	query := "INSERT INTO conversations (id, owner_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, query, conv.ID, conv.OwnerID, conv.Title, conv.CreatedAt.UnixMilli(), conv.UpdatedAt.UnixMilli()); err != nil {
		return nil, fmt.Errorf("could not insert conversation: %w", err)
	}
	return conv, nil
}

// Append inserts the entries and bumps updated_at in one transaction.
func (r *sqliteRepository) Append(ctx context.Context, conv *model.Conversation, entries ...model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	// Ensure transaction is rolled back on error
	defer func() { _ = tx.Rollback() }()

	now := model.Now()
	res, err := tx.ExecContext(ctx, "UPDATE conversations SET updated_at = ? WHERE id = ? AND owner_id = ?", now.UnixMilli(), conv.ID, conv.OwnerID)
	if err != nil {
		return fmt.Errorf("could not update conversation timestamp: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	} else if n == 0 {
		return ErrNotFound
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO entries (conversation_id, role, content, tool_name, created_at) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("could not prepare entry insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range entries {
		toolName := sql.NullString{String: e.ToolName, Valid: e.ToolName != ""}
		if _, err := stmt.ExecContext(ctx, conv.ID, string(e.Role), e.Content, toolName, e.CreatedAt.UnixMilli()); err != nil {
			return fmt.Errorf("could not insert entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("could not commit entries: %w", err)
	}
	mirror(conv, entries, now)
	return nil
}

func (r *sqliteRepository) List(ctx context.Context, ownerID string) ([]model.ConversationSummary, error) {
	query := "SELECT id, title, updated_at FROM conversations WHERE owner_id = ? ORDER BY updated_at DESC, id ASC"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("could not list conversations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []model.ConversationSummary{}
	for rows.Next() {
		var s model.ConversationSummary
		var updatedAt int64
		if err := rows.Scan(&s.ID, &s.Title, &updatedAt); err != nil {
			return nil, err
		}
		s.UpdatedAt = fromMillis(updatedAt)
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

func (r *sqliteRepository) Get(ctx context.Context, ownerID, conversationID string) (*model.Conversation, error) {
	query := "SELECT id, owner_id, title, created_at, updated_at FROM conversations WHERE id = ? AND owner_id = ?"
	var conv model.Conversation
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx, query, conversationID, ownerID).
		Scan(&conv.ID, &conv.OwnerID, &conv.Title, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("could not get conversation: %w", err)
	}
	conv.CreatedAt = fromMillis(createdAt)
	conv.UpdatedAt = fromMillis(updatedAt)

	conv.Messages, err = r.entries(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *sqliteRepository) entries(ctx context.Context, conversationID string) ([]model.Entry, error) {
	query := "SELECT role, content, tool_name, created_at FROM entries WHERE conversation_id = ? ORDER BY seq ASC"
	rows, err := r.db.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []model.Entry{}
	for rows.Next() {
		var e model.Entry
		var role string
		var toolName sql.NullString
		var createdAt int64
		if err := rows.Scan(&role, &e.Content, &toolName, &createdAt); err != nil {
			return nil, err
		}
		e.Role = model.Role(role)
		e.ToolName = toolName.String
		e.CreatedAt = fromMillis(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *sqliteRepository) Rename(ctx context.Context, ownerID, conversationID, title string) error {
	query := "UPDATE conversations SET title = ?, updated_at = ? WHERE id = ? AND owner_id = ?"
	res, err := r.db.ExecContext(ctx, query, title, model.Now().UnixMilli(), conversationID, ownerID)
	if err != nil {
		return fmt.Errorf("could not rename conversation: %w", err)
	}
	return requireAffected(res)
}

func (r *sqliteRepository) Delete(ctx context.Context, ownerID, conversationID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ? AND owner_id = ?", conversationID, ownerID)
	if err != nil {
		return fmt.Errorf("could not delete conversation: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entries WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("could not delete entries: %w", err)
	}
	return tx.Commit()
}

// --- Task Operations ---

func (r *sqliteRepository) CreateTask(ctx context.Context, task *model.Task) error {
	if err := prepareTask(task); err != nil {
		return err
	}
	query := "INSERT INTO tasks (id, owner_id, title, description, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)"
	description := sql.NullString{String: task.Description, Valid: task.Description != ""}
	_, err := r.db.ExecContext(ctx, query, task.ID, task.OwnerID, task.Title, description, string(task.Status),
		task.CreatedAt.UnixMilli(), task.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("could not insert task: %w", err)
	}
	return nil
}

func (r *sqliteRepository) ListTasks(ctx context.Context, ownerID string) ([]model.Task, error) {
	query := `
		SELECT id, owner_id, title, description, status, created_at, updated_at
		FROM tasks
		WHERE owner_id = ?
		ORDER BY created_at DESC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("could not list tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		var description sql.NullString
		var status string
		var createdAt, updatedAt int64
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &description, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		t.Description = description.String
		t.Status = model.TaskStatus(status)
		t.CreatedAt = fromMillis(createdAt)
		t.UpdatedAt = fromMillis(updatedAt)
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("could not read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
