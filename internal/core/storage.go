package core

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no memory record exists for a user id.
var ErrNotFound = errors.New("user memory not found")

// Profile holds the recognized personal facts about a user. Scalar fields
// are overwrite-on-conflict, list fields are set-union merged.
type Profile struct {
	Name       string   `json:"name,omitempty"`
	Profession string   `json:"profession,omitempty"`
	Age        string   `json:"age,omitempty"`
	Location   string   `json:"location,omitempty"`
	Interests  []string `json:"interests,omitempty"`
	OtherFacts []string `json:"other_facts,omitempty"`
}

func (p Profile) IsEmpty() bool {
	return p.Name == "" && p.Profession == "" && p.Age == "" && p.Location == "" &&
		len(p.Interests) == 0 && len(p.OtherFacts) == 0
}

// TopicRecord accumulates what the user said about one normalized topic.
// Summary is replace-on-update; positions and points only ever grow.
type TopicRecord struct {
	Summary         string    `json:"summary"`
	KeyPositions    []string  `json:"key_positions"`
	KeyPoints       []string  `json:"key_points"`
	DiscussionCount int       `json:"discussion_count"`
	FirstDiscussed  time.Time `json:"first_discussed"`
	LastDiscussed   time.Time `json:"last_discussed"`
}

type Turn struct {
	Role      string    `json:"role"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// TraitState is the evolving character state. Scalars stay in [0,1],
// Changes keeps the last TraitChangeLogSize entries.
type TraitState struct {
	Empathy      float64   `json:"empathy"`
	Trust        float64   `json:"trust"`
	Openness     float64   `json:"openness"`
	Changes      []string  `json:"changes,omitempty"`
	LastAnalyzed time.Time `json:"last_analyzed"`
}

const TraitChangeLogSize = 10

func DefaultTraits() *TraitState {
	return &TraitState{Empathy: 0.3, Trust: 0.2, Openness: 0.4}
}

// UserMemory is the full per-user record, one per user id.
type UserMemory struct {
	UserID            string                 `json:"user_id"`
	Profile           Profile                `json:"profile"`
	Topics            map[string]TopicRecord `json:"topics"`
	History           []Turn                 `json:"history"`
	Evolution         *TraitState            `json:"evolution,omitempty"`
	ConversationCount int                    `json:"conversation_count"`
	LastUpdated       time.Time              `json:"last_updated"`
}

type MemoryRepository interface {
	// GetOrCreate returns the record for userID, creating an empty one on
	// first call.
	GetOrCreate(ctx context.Context, userID string) (*UserMemory, error)
	// Load returns the record or ErrNotFound.
	Load(ctx context.Context, userID string) (*UserMemory, error)
	// Save persists the whole record. Each memory channel saves
	// independently; there is no cross-channel transaction.
	Save(ctx context.Context, mem *UserMemory) error
	// Delete removes the record, reporting whether it existed.
	Delete(ctx context.Context, userID string) (bool, error)
}
