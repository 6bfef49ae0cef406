// Package postgres provides pgx-backed implementations of the store
// interfaces. Messages and place ID lists are stored as JSONB.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	placechat "github.com/wayfare-labs/place-chat-sdk"
)

// ConversationStore implements store.ConversationStore with PostgreSQL.
type ConversationStore struct {
	pool      *pgxpool.Pool
	tableName string
}

// Option configures a store.
type Option func(*options)

type options struct {
	tableName string
}

// WithTableName sets a custom table name.
func WithTableName(name string) Option {
	return func(o *options) {
		o.tableName = name
	}
}

// NewConversationStore creates a PostgreSQL conversation store.
func NewConversationStore(pool *pgxpool.Pool, opts ...Option) *ConversationStore {
	o := options{tableName: "conversations"}
	for _, opt := range opts {
		opt(&o)
	}
	return &ConversationStore{pool: pool, tableName: o.tableName}
}

// Get returns the conversation or nil when it does not exist.
func (s *ConversationStore) Get(ctx context.Context, id string) (*placechat.RawConversation, error) {
	query := fmt.Sprintf(`
		SELECT id, title, owner_id, messages, created_at
		FROM %s
		WHERE id = $1
	`, s.tableName)

	row := s.pool.QueryRow(ctx, query, id)

	var conv placechat.RawConversation
	var messagesJSON []byte

	err := row.Scan(&conv.ID, &conv.Title, &conv.OwnerID, &messagesJSON, &conv.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning conversation: %w", err)
	}

	if err := json.Unmarshal(messagesJSON, &conv.Messages); err != nil {
		return nil, fmt.Errorf("unmarshaling messages: %w", err)
	}

	return &conv, nil
}

// Save inserts or replaces a conversation.
func (s *ConversationStore) Save(ctx context.Context, conv *placechat.RawConversation) error {
	messagesJSON, err := json.Marshal(conv.Messages)
	if err != nil {
		return fmt.Errorf("marshaling messages: %w", err)
	}

	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, title, owner_id, messages, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			messages = EXCLUDED.messages
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		conv.ID, conv.Title, conv.OwnerID, messagesJSON, conv.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving conversation: %w", err)
	}

	return nil
}

// Delete removes a conversation.
func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	_, err := s.pool.Exec(ctx, query, id)
	return err
}

// ListByOwner returns one page of the owner's conversations, newest first.
func (s *ConversationStore) ListByOwner(ctx context.Context, ownerID string, page, size int) ([]*placechat.RawConversation, int, error) {
	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE owner_id = $1`, s.tableName)
	if err := s.pool.QueryRow(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting conversations: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, owner_id, messages, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, ownerID, size, page*size)
	if err != nil {
		return nil, 0, fmt.Errorf("querying conversations: %w", err)
	}
	defer rows.Close()

	var conversations []*placechat.RawConversation
	for rows.Next() {
		var conv placechat.RawConversation
		var messagesJSON []byte

		if err := rows.Scan(&conv.ID, &conv.Title, &conv.OwnerID, &messagesJSON, &conv.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal(messagesJSON, &conv.Messages); err != nil {
			return nil, 0, fmt.Errorf("unmarshaling messages: %w", err)
		}

		conversations = append(conversations, &conv)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating rows: %w", err)
	}

	return conversations, total, nil
}

// ConversationMigration returns the SQL to create the conversations table.
func ConversationMigration(tableName string) string {
	if tableName == "" {
		tableName = "conversations"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			messages JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_%s_owner_id ON %s (owner_id, created_at DESC);
	`, tableName, tableName, tableName)
}

// CollectionStore implements store.CollectionStore with PostgreSQL.
type CollectionStore struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewCollectionStore creates a PostgreSQL collection store.
func NewCollectionStore(pool *pgxpool.Pool, opts ...Option) *CollectionStore {
	o := options{tableName: "collections"}
	for _, opt := range opts {
		opt(&o)
	}
	return &CollectionStore{pool: pool, tableName: o.tableName}
}

// ListByOwner returns all collections owned by the user.
func (s *CollectionStore) ListByOwner(ctx context.Context, ownerID string) ([]placechat.Collection, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, places_ids, created_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY created_at ASC
	`, s.tableName)

	rows, err := s.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("querying collections: %w", err)
	}
	defer rows.Close()

	var collections []placechat.Collection
	for rows.Next() {
		var c placechat.Collection
		var placesJSON []byte

		if err := rows.Scan(&c.ID, &c.Name, &c.OwnerID, &placesJSON, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		if err := json.Unmarshal(placesJSON, &c.PlacesIDs); err != nil {
			return nil, fmt.Errorf("unmarshaling places: %w", err)
		}

		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}

	return collections, nil
}

// Save inserts or replaces a collection.
func (s *CollectionStore) Save(ctx context.Context, collection *placechat.Collection) error {
	placesJSON, err := json.Marshal(collection.PlacesIDs)
	if err != nil {
		return fmt.Errorf("marshaling places: %w", err)
	}

	if collection.CreatedAt.IsZero() {
		collection.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, owner_id, places_ids, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			places_ids = EXCLUDED.places_ids
	`, s.tableName)

	_, err = s.pool.Exec(ctx, query,
		collection.ID, collection.Name, collection.OwnerID, placesJSON, collection.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving collection: %w", err)
	}

	return nil
}

// CollectionMigration returns the SQL to create the collections table.
func CollectionMigration(tableName string) string {
	if tableName == "" {
		tableName = "collections"
	}
	return fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			places_ids JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_%s_owner_id ON %s (owner_id);
	`, tableName, tableName, tableName)
}
