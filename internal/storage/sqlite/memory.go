package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/lisbot/internal/core"
	"github.com/sandevgo/lisbot/pkg/log"
)

type MemoryRepo struct {
	db *sql.DB
}

func NewMemoryRepo(db *sql.DB) *MemoryRepo {
	return &MemoryRepo{db: db}
}

func (r *MemoryRepo) GetOrCreate(ctx context.Context, userID string) (*core.UserMemory, error) {
	mem, err := r.Load(ctx, userID)
	if err == nil {
		return mem, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	mem = &core.UserMemory{
		UserID:      userID,
		Topics:      make(map[string]core.TopicRecord),
		LastUpdated: time.Now(),
	}
	if err := r.Save(ctx, mem); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}

	log.FromCtx(ctx).Debug().Str("user_id", userID).Msg("created memory record")
	return mem, nil
}

func (r *MemoryRepo) Load(ctx context.Context, userID string) (*core.UserMemory, error) {
	query := `SELECT profile, topics, history, evolution, conversation_count, last_updated
	          FROM user_memory WHERE user_id = ?`

	var (
		profileJSON, topicsJSON, historyJSON string
		evolutionJSON                        sql.NullString
		mem                                  = core.UserMemory{UserID: userID}
	)

	row := r.db.QueryRowContext(ctx, query, userID)
	err := row.Scan(&profileJSON, &topicsJSON, &historyJSON, &evolutionJSON, &mem.ConversationCount, &mem.LastUpdated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user memory: %w", err)
	}

	if err := json.Unmarshal([]byte(profileJSON), &mem.Profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal([]byte(topicsJSON), &mem.Topics); err != nil {
		return nil, fmt.Errorf("unmarshal topics: %w", err)
	}
	if err := json.Unmarshal([]byte(historyJSON), &mem.History); err != nil {
		return nil, fmt.Errorf("unmarshal history: %w", err)
	}
	if evolutionJSON.Valid && evolutionJSON.String != "" {
		mem.Evolution = &core.TraitState{}
		if err := json.Unmarshal([]byte(evolutionJSON.String), mem.Evolution); err != nil {
			return nil, fmt.Errorf("unmarshal evolution: %w", err)
		}
	}
	if mem.Topics == nil {
		mem.Topics = make(map[string]core.TopicRecord)
	}

	return &mem, nil
}

func (r *MemoryRepo) Save(ctx context.Context, mem *core.UserMemory) error {
	profileJSON, err := json.Marshal(mem.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	topicsJSON, err := json.Marshal(mem.Topics)
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	historyJSON, err := json.Marshal(mem.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if mem.History == nil {
		historyJSON = []byte("[]")
	}

	var evolutionJSON any
	if mem.Evolution != nil {
		data, err := json.Marshal(mem.Evolution)
		if err != nil {
			return fmt.Errorf("marshal evolution: %w", err)
		}
		evolutionJSON = string(data)
	}

	query := `INSERT INTO user_memory (user_id, profile, topics, history, evolution, conversation_count, last_updated)
	          VALUES (?, ?, ?, ?, ?, ?, ?)
	          ON CONFLICT(user_id) DO UPDATE SET
	              profile = excluded.profile,
	              topics = excluded.topics,
	              history = excluded.history,
	              evolution = excluded.evolution,
	              conversation_count = excluded.conversation_count,
	              last_updated = excluded.last_updated`

	_, err = r.db.ExecContext(ctx, query,
		mem.UserID, string(profileJSON), string(topicsJSON), string(historyJSON),
		evolutionJSON, mem.ConversationCount, mem.LastUpdated)
	if err != nil {
		return fmt.Errorf("upsert user memory: %w", err)
	}
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_memory WHERE user_id = ?`, userID)
	if err != nil {
		return false, fmt.Errorf("delete user memory: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		log.FromCtx(ctx).Info().Str("user_id", userID).Msg("memory cleared")
	}
	return affected > 0, nil
}
