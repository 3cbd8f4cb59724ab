package repository

import (
	"context"

	"github.com/mcortez-ml/nutria/pkg/model"
)

// Repository defines the interface for conversation history persistence
type Repository interface {
	// PutConversation saves a conversation and all of its turns
	PutConversation(ctx context.Context, conv *model.Conversation) error

	// GetConversation retrieves a conversation by ID
	GetConversation(ctx context.Context, id model.ConversationID) (*model.Conversation, error)

	// ListConversations retrieves conversations ordered by last update
	ListConversations(ctx context.Context, offset, limit int) ([]*model.Conversation, error)

	// Close releases the underlying storage
	Close() error
}
