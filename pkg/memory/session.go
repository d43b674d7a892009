package memory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Session binds one conversation to the remote memory service, scoped
// by memory id, session id, and actor id. A Session is created fresh
// per invocation and holds no local state.
type Session struct {
	client    *Client
	memoryID  string
	sessionID string
	actorID   string
	logger    zerolog.Logger
}

// contextEventLimit bounds how many past turns are pulled into the
// system prompt.
const contextEventLimit = 20

// NewSession creates a session binding. No network call happens here;
// misconfiguration surfaces on first use.
func NewSession(client *Client, memoryID, sessionID, actorID string, logger zerolog.Logger) *Session {
	return &Session{
		client:    client,
		memoryID:  memoryID,
		sessionID: sessionID,
		actorID:   actorID,
		logger:    logger,
	}
}

// SessionID returns the session identifier this binding is scoped to.
func (s *Session) SessionID() string {
	return s.sessionID
}

// ActorID returns the actor identifier this binding is scoped to.
func (s *Session) ActorID() string {
	return s.actorID
}

// Context retrieves recent conversation turns and renders them as a
// system prompt fragment. An empty string means no prior context.
func (s *Session) Context(ctx context.Context) (string, error) {
	events, err := s.client.ListEvents(ctx, s.memoryID, s.sessionID, s.actorID, contextEventLimit)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("# Conversation so far\n\n")
	for _, event := range events {
		fmt.Fprintf(&b, "%s: %s\n", event.Role, event.Content)
	}
	return b.String(), nil
}

// Append persists a conversation turn under this session's scope.
func (s *Session) Append(ctx context.Context, role, content string) error {
	err := s.client.AppendEvent(ctx, s.memoryID, s.sessionID, Event{
		Role:      role,
		Content:   content,
		ActorID:   s.actorID,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to append %s turn: %w", role, err)
	}

	s.logger.Debug().
		Str("session_id", s.sessionID).
		Str("role", role).
		Msg("Memory event appended")
	return nil
}
