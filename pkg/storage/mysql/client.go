// Package mysql provides the MySQL implementation of the storage.Store
// interface.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/amnesia-labs/amnesia-go/pkg/storage"
)

// Client implements storage.Store using MySQL as the backend.
type Client struct {
	db *sql.DB
}

// Config contains MySQL configuration.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// NewClient creates a new MySQL store client.
func NewClient(cfg *Config) (*Client, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	client := &Client{db: db}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id BIGINT PRIMARY KEY,
			persona_id BIGINT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			fact_key VARCHAR(255) NOT NULL,
			fact_value TEXT NOT NULL,
			emotion_score DOUBLE NOT NULL DEFAULT 0,
			weight DOUBLE NOT NULL DEFAULT 0,
			confidence DOUBLE NOT NULL DEFAULT 1,
			layer VARCHAR(8) NOT NULL DEFAULT 'STM',
			decay_rate DOUBLE NOT NULL DEFAULT 0,
			last_accessed DATETIME(6) NOT NULL,
			last_reinforced DATETIME(6) NOT NULL,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_memories_owner (persona_id, user_id),
			INDEX idx_memories_owner_key (persona_id, user_id, fact_key)
		)`,
		`CREATE TABLE IF NOT EXISTS chat_messages (
			id BIGINT PRIMARY KEY AUTO_INCREMENT,
			persona_id BIGINT NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			role VARCHAR(16) NOT NULL,
			content TEXT NOT NULL,
			audio_url TEXT NOT NULL,
			is_pratfall BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME(6) NOT NULL,
			INDEX idx_chat_messages_owner (persona_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS personas (
			id BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			description TEXT NOT NULL,
			personality_prompt TEXT NOT NULL,
			voice_ref VARCHAR(255) NOT NULL DEFAULT '',
			pratfall_probability DOUBLE NOT NULL DEFAULT 0.15,
			memory_decay_rate DOUBLE NOT NULL DEFAULT 0.25,
			recall_depth INT NOT NULL DEFAULT 6,
			emotion_weight DOUBLE NOT NULL DEFAULT 1.5,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL
		)`,
	}

	for _, query := range queries {
		if _, err := c.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("initTables: %w", err)
		}
	}
	return nil
}

// InsertRecord inserts a new memory record.
func (c *Client) InsertRecord(ctx context.Context, rec *storage.MemoryRecord) error {
	query := `
		INSERT INTO memories
		(id, persona_id, user_id, fact_key, fact_value, emotion_score, weight,
		 confidence, layer, decay_rate, last_accessed, last_reinforced, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := c.db.ExecContext(ctx, query,
		rec.ID,
		rec.PersonaID,
		rec.UserID,
		rec.Key,
		rec.Value,
		rec.EmotionScore,
		rec.Weight,
		rec.Confidence,
		string(rec.Layer),
		rec.DecayRate,
		rec.LastAccessed,
		rec.LastReinforced,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertRecord: %w", err)
	}
	return nil
}

// FindByKey returns all records matching (owner, key), oldest first.
func (c *Client) FindByKey(ctx context.Context, owner storage.Owner, key string) ([]*storage.MemoryRecord, error) {
	query := `
		SELECT id, persona_id, user_id, fact_key, fact_value, emotion_score, weight,
		       confidence, layer, decay_rate, last_accessed, last_reinforced, created_at
		FROM memories
		WHERE persona_id = ? AND user_id = ? AND fact_key = ?
		ORDER BY created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, query, owner.PersonaID, owner.UserID, key)
	if err != nil {
		return nil, fmt.Errorf("FindByKey: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows, "FindByKey")
}

// ListByOwner returns all records in the owner scope, heaviest first.
func (c *Client) ListByOwner(ctx context.Context, owner storage.Owner) ([]*storage.MemoryRecord, error) {
	query := `
		SELECT id, persona_id, user_id, fact_key, fact_value, emotion_score, weight,
		       confidence, layer, decay_rate, last_accessed, last_reinforced, created_at
		FROM memories
		WHERE persona_id = ? AND user_id = ?
		ORDER BY weight DESC, created_at ASC
	`
	rows, err := c.db.QueryContext(ctx, query, owner.PersonaID, owner.UserID)
	if err != nil {
		return nil, fmt.Errorf("ListByOwner: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanRecords(rows, "ListByOwner")
}

// UpdateRecord writes back the mutable fields of a record.
func (c *Client) UpdateRecord(ctx context.Context, rec *storage.MemoryRecord) error {
	query := `
		UPDATE memories
		SET fact_value = ?, emotion_score = ?, weight = ?, confidence = ?,
		    layer = ?, last_accessed = ?, last_reinforced = ?
		WHERE id = ?
	`
	result, err := c.db.ExecContext(ctx, query,
		rec.Value,
		rec.EmotionScore,
		rec.Weight,
		rec.Confidence,
		string(rec.Layer),
		rec.LastAccessed,
		rec.LastReinforced,
		rec.ID,
	)
	if err != nil {
		return fmt.Errorf("UpdateRecord: %w", err)
	}

	// MySQL reports zero affected rows for no-op updates as well; check
	// existence separately so unchanged writes are not mistaken for misses.
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateRecord: %w", err)
	}
	if affected == 0 {
		var exists int
		err := c.db.QueryRowContext(ctx,
			`SELECT 1 FROM memories WHERE id = ?`, rec.ID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return storage.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("UpdateRecord: %w", err)
		}
	}
	return nil
}

// DeleteRecord deletes a record by ID.
func (c *Client) DeleteRecord(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeleteRecord: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteRecord: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// DeleteRecordsByOwner deletes all records in the owner scope.
func (c *Client) DeleteRecordsByOwner(ctx context.Context, owner storage.Owner) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM memories WHERE persona_id = ? AND user_id = ?`,
		owner.PersonaID, owner.UserID)
	if err != nil {
		return fmt.Errorf("DeleteRecordsByOwner: %w", err)
	}
	return nil
}

// InsertMessage stores one conversation turn.
//
// The message ID is assigned by the database and written back into msg.
func (c *Client) InsertMessage(ctx context.Context, msg *storage.ChatMessage) error {
	query := `
		INSERT INTO chat_messages
		(persona_id, user_id, role, content, audio_url, is_pratfall, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := c.db.ExecContext(ctx, query,
		msg.PersonaID,
		msg.UserID,
		msg.Role,
		msg.Content,
		msg.AudioURL,
		msg.IsPratfall,
		msg.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("InsertMessage: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("InsertMessage: %w", err)
	}
	msg.ID = id
	return nil
}

// RecentMessages returns up to limit most-recent messages in chronological order.
func (c *Client) RecentMessages(ctx context.Context, owner storage.Owner, limit int) ([]*storage.ChatMessage, error) {
	query := `
		SELECT id, persona_id, user_id, role, content, audio_url, is_pratfall, created_at
		FROM chat_messages
		WHERE persona_id = ? AND user_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := c.db.QueryContext(ctx, query, owner.PersonaID, owner.UserID, limit)
	if err != nil {
		return nil, fmt.Errorf("RecentMessages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []*storage.ChatMessage
	for rows.Next() {
		msg := &storage.ChatMessage{}
		if err := rows.Scan(
			&msg.ID,
			&msg.PersonaID,
			&msg.UserID,
			&msg.Role,
			&msg.Content,
			&msg.AudioURL,
			&msg.IsPratfall,
			&msg.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("RecentMessages: %w", err)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("RecentMessages: %w", err)
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// DeleteMessagesByOwner clears the conversation history for the owner scope.
func (c *Client) DeleteMessagesByOwner(ctx context.Context, owner storage.Owner) error {
	_, err := c.db.ExecContext(ctx,
		`DELETE FROM chat_messages WHERE persona_id = ? AND user_id = ?`,
		owner.PersonaID, owner.UserID)
	if err != nil {
		return fmt.Errorf("DeleteMessagesByOwner: %w", err)
	}
	return nil
}

// SavePersona inserts a persona, or updates it in place when it already exists.
func (c *Client) SavePersona(ctx context.Context, p *storage.Persona) error {
	query := `
		INSERT INTO personas
		(id, name, description, personality_prompt, voice_ref, pratfall_probability,
		 memory_decay_rate, recall_depth, emotion_weight, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			name = VALUES(name),
			description = VALUES(description),
			personality_prompt = VALUES(personality_prompt),
			voice_ref = VALUES(voice_ref),
			pratfall_probability = VALUES(pratfall_probability),
			memory_decay_rate = VALUES(memory_decay_rate),
			recall_depth = VALUES(recall_depth),
			emotion_weight = VALUES(emotion_weight),
			updated_at = VALUES(updated_at)
	`
	_, err := c.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		p.Description,
		p.PersonalityPrompt,
		p.VoiceRef,
		p.PratfallProbability,
		p.MemoryDecayRate,
		p.RecallDepth,
		p.EmotionWeight,
		p.CreatedAt,
		p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("SavePersona: %w", err)
	}
	return nil
}

// GetPersona returns a persona by ID.
func (c *Client) GetPersona(ctx context.Context, id int64) (*storage.Persona, error) {
	query := `
		SELECT id, name, description, personality_prompt, voice_ref, pratfall_probability,
		       memory_decay_rate, recall_depth, emotion_weight, created_at, updated_at
		FROM personas
		WHERE id = ?
	`
	p := &storage.Persona{}
	err := c.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.PersonalityPrompt,
		&p.VoiceRef,
		&p.PratfallProbability,
		&p.MemoryDecayRate,
		&p.RecallDepth,
		&p.EmotionWeight,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetPersona: %w", err)
	}
	return p, nil
}

// ListPersonas returns all personas, newest first.
func (c *Client) ListPersonas(ctx context.Context) ([]*storage.Persona, error) {
	query := `
		SELECT id, name, description, personality_prompt, voice_ref, pratfall_probability,
		       memory_decay_rate, recall_depth, emotion_weight, created_at, updated_at
		FROM personas
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListPersonas: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var personas []*storage.Persona
	for rows.Next() {
		p := &storage.Persona{}
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.PersonalityPrompt,
			&p.VoiceRef,
			&p.PratfallProbability,
			&p.MemoryDecayRate,
			&p.RecallDepth,
			&p.EmotionWeight,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("ListPersonas: %w", err)
		}
		personas = append(personas, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListPersonas: %w", err)
	}
	return personas, nil
}

// DeletePersona deletes a persona by ID.
func (c *Client) DeletePersona(ctx context.Context, id int64) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("DeletePersona: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeletePersona: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// scanRecords reads memory record rows into a slice.
func scanRecords(rows *sql.Rows, op string) ([]*storage.MemoryRecord, error) {
	var records []*storage.MemoryRecord
	for rows.Next() {
		rec := &storage.MemoryRecord{}
		var layer string
		if err := rows.Scan(
			&rec.ID,
			&rec.PersonaID,
			&rec.UserID,
			&rec.Key,
			&rec.Value,
			&rec.EmotionScore,
			&rec.Weight,
			&rec.Confidence,
			&layer,
			&rec.DecayRate,
			&rec.LastAccessed,
			&rec.LastReinforced,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		rec.Layer = storage.Layer(layer)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return records, nil
}
