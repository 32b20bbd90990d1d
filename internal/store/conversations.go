package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/studyhall-ai/tutord/internal/assistants"
)

// Message is one normalized conversation message as persisted and as
// returned to chat callers.
type Message struct {
	ID        string `json:"id"`
	CreatedAt int64  `json:"createdAt"`
	Role      string `json:"role"`
	Content   string `json:"content"`
}

// Conversation is the per-thread record. UsageHistory maps run id to that
// run's usage and only ever grows.
type Conversation struct {
	ThreadID      string                      `json:"thread_id"`
	Title         string                      `json:"title"`
	Messages      []Message                   `json:"messages"`
	UsageHistory  map[string]assistants.Usage `json:"usage_history"`
	AssistantName string                      `json:"assistant_name"`
	UserID        string                      `json:"user_id"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// Get fetches the conversation for a thread id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, threadID string) (Conversation, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT thread_id, title, messages, usage_history, assistant_name, user_id, created_at
		FROM conversations WHERE thread_id = $1`, threadID)

	conv, err := scanConversation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Conversation{}, fmt.Errorf("get %q: %w", threadID, ErrNotFound)
	}
	if err != nil {
		return Conversation{}, fmt.Errorf("get conversation: %w", err)
	}
	return conv, nil
}

// Upsert writes the conversation record keyed by thread id.
func (s *Store) Upsert(ctx context.Context, conv Conversation) error {
	messages, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("marshal messages: %w", err)
	}
	usage, err := json.Marshal(conv.UsageHistory)
	if err != nil {
		return fmt.Errorf("marshal usage history: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO conversations (thread_id, title, messages, usage_history, assistant_name, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (thread_id) DO UPDATE SET
			title = EXCLUDED.title,
			messages = EXCLUDED.messages,
			usage_history = EXCLUDED.usage_history,
			assistant_name = EXCLUDED.assistant_name,
			user_id = EXCLUDED.user_id`,
		conv.ThreadID, conv.Title, messages, usage, conv.AssistantName, conv.UserID, conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

// Query describes a filtered, sorted, paginated conversation listing.
// Filters are equality-only. Page is 1-based.
type Query struct {
	Filters    map[string]any
	SortColumn string
	SortDesc   bool
	Page       int
	Limit      int
}

var allowedColumns = map[string]bool{
	"thread_id":      true,
	"title":          true,
	"assistant_name": true,
	"user_id":        true,
	"created_at":     true,
}

// List returns conversations matching the query.
func (s *Store) List(ctx context.Context, q Query) ([]Conversation, error) {
	var (
		where []string
		args  []any
	)
	for col, val := range q.Filters {
		if !allowedColumns[col] {
			return nil, fmt.Errorf("list conversations: filter column %q not allowed", col)
		}
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	sql := `SELECT thread_id, title, messages, usage_history, assistant_name, user_id, created_at FROM conversations`
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	if q.SortColumn != "" {
		if !allowedColumns[q.SortColumn] {
			return nil, fmt.Errorf("list conversations: sort column %q not allowed", q.SortColumn)
		}
		sql += " ORDER BY " + q.SortColumn
		if q.SortDesc {
			sql += " DESC"
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 10
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	args = append(args, limit)
	sql += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, (page-1)*limit)
	sql += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("list conversations: %w", err)
		}
		convs = append(convs, conv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	return convs, nil
}

func scanConversation(row pgx.Row) (Conversation, error) {
	var (
		conv     Conversation
		messages []byte
		usage    []byte
	)
	err := row.Scan(&conv.ThreadID, &conv.Title, &messages, &usage,
		&conv.AssistantName, &conv.UserID, &conv.CreatedAt)
	if err != nil {
		return Conversation{}, err
	}
	if err := json.Unmarshal(messages, &conv.Messages); err != nil {
		return Conversation{}, fmt.Errorf("parse messages: %w", err)
	}
	if err := json.Unmarshal(usage, &conv.UsageHistory); err != nil {
		return Conversation{}, fmt.Errorf("parse usage history: %w", err)
	}
	return conv, nil
}
