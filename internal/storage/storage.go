package storage

import (
	"context"
	"errors"
	"time"
)

const (
	CollectionSearches      = "searches"
	CollectionConversations = "conversations"
)

// Sources recorded on search-collection records.
const (
	SourceWeb            = "web"
	SourceSystem         = "system"
	SourceAIConversation = "ai_conversation"
)

// ErrUnavailable reports that a backend cannot be reached or was never configured.
var ErrUnavailable = errors.New("document store unavailable")

// Record is the single record shape shared by every backend. Search records
// fill Query/Result/Source; conversation records fill UserInput/AssistantResponse.
// Records are never mutated after Save.
type Record struct {
	ID                string    `json:"id,omitempty"`
	Query             string    `json:"query,omitempty"`
	Result            string    `json:"result,omitempty"`
	Source            string    `json:"source,omitempty"`
	UserInput         string    `json:"user_input,omitempty"`
	AssistantResponse string    `json:"assistant_response,omitempty"`
	SessionID         string    `json:"session_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
}

// Store abstracts the document collaborator.
// QueryRecent returns records newest first.
// Implementations must be safe for concurrent use.
type Store interface {
	Save(ctx context.Context, collection string, rec Record) error
	QueryRecent(ctx context.Context, collection string, limit int) ([]Record, error)
}

// Pruner is implemented by stores that enforce the retention window themselves.
type Pruner interface {
	Prune(ctx context.Context, before time.Time) (int, error)
}
