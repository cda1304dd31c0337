package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/taskhub/internal/domain/auth"
)

const defaultKey = "taskhub:auth:events"

// ValkeyPublisher appends auth events to a capped Valkey list, newest first.
type ValkeyPublisher struct {
	client valkey.Client
	key    string
	maxLen int64
}

// NewValkeyPublisher constructs a publisher. maxLen <= 0 disables trimming.
func NewValkeyPublisher(client valkey.Client, key string, maxLen int64) *ValkeyPublisher {
	if key == "" {
		key = defaultKey
	}
	return &ValkeyPublisher{client: client, key: key, maxLen: maxLen}
}

// Publish pushes the event onto the list.
func (p *ValkeyPublisher) Publish(ctx context.Context, event auth.Event) error {
	encoded, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode auth event: %w", err)
	}
	cmds := valkey.Commands{p.client.B().Lpush().Key(p.key).Element(string(encoded)).Build()}
	if p.maxLen > 0 {
		cmds = append(cmds, p.client.B().Ltrim().Key(p.key).Start(0).Stop(p.maxLen-1).Build())
	}
	for _, resp := range p.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			return fmt.Errorf("push auth event: %w", err)
		}
	}
	return nil
}

var _ auth.EventPublisher = (*ValkeyPublisher)(nil)
