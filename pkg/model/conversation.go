package model

import (
	"time"

	"github.com/google/uuid"
)

type ConversationID string

// NewConversationID generates a new unique ConversationID
func NewConversationID() ConversationID {
	return ConversationID(uuid.New().String())
}

// Turn is one completed user/assistant exchange.
type Turn struct {
	User      string
	Assistant string
	CreatedAt time.Time
}

// Conversation is an append-only ordered sequence of turns. The orchestrator
// reads only a bounded recent window; older turns are kept for display and
// persistence.
type Conversation struct {
	ID        ConversationID
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Turns     []Turn
}

func NewConversation() *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        NewConversationID(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append records a completed turn. The first user message becomes the title.
func (c *Conversation) Append(user, assistant string) {
	now := time.Now()
	if c.Title == "" {
		c.Title = truncate(user, 80)
	}
	c.Turns = append(c.Turns, Turn{User: user, Assistant: assistant, CreatedAt: now})
	c.UpdatedAt = now
}

// Window returns the most recent n turns. It returns all turns when n is
// zero or negative, or when fewer than n turns exist.
func (c *Conversation) Window(n int) []Turn {
	if n <= 0 || len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
