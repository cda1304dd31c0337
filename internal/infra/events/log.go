// Package events records authentication events.
package events

import (
	"context"
	"log/slog"

	"github.com/yanqian/taskhub/internal/domain/auth"
)

// LogPublisher writes auth events to the structured log. It is used when
// Valkey is disabled or unreachable.
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher constructs a LogPublisher.
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "auth.events")}
}

// Publish logs the event at info level.
func (p *LogPublisher) Publish(ctx context.Context, event auth.Event) error {
	p.logger.InfoContext(ctx, "auth event",
		"eventId", event.ID,
		"type", event.Type,
		"userId", event.UserID,
		"tokenId", event.TokenID,
	)
	return nil
}

var _ auth.EventPublisher = (*LogPublisher)(nil)
