package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultChannel is the pub/sub channel RedisPublisher writes to.
const DefaultChannel = "eventdesk:notifications"

// RedisPublisher publishes notifications on a Redis channel so a separate
// presentation process can render them.
type RedisPublisher struct {
	rdb     goredis.UniversalClient
	channel string
}

var _ Notifier = (*RedisPublisher)(nil)

// NewRedisPublisher creates a publisher. An empty channel uses
// DefaultChannel.
func NewRedisPublisher(rdb goredis.UniversalClient, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// Channel returns the channel name.
func (p *RedisPublisher) Channel() string { return p.channel }

// wireNotification is the published payload; life is in milliseconds.
type wireNotification struct {
	ID        string    `json:"id"`
	Severity  Severity  `json:"severity"`
	Summary   string    `json:"summary"`
	Detail    string    `json:"detail"`
	Life      int64     `json:"life"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notify implements Notifier.
func (p *RedisPublisher) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(wireNotification{
		ID:        n.ID.String(),
		Severity:  n.Severity,
		Summary:   n.Summary,
		Detail:    n.Detail,
		Life:      n.LifeMillis(),
		CreatedAt: n.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("notify: marshal: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("notify: publish: %w", err)
	}
	return nil
}

// Decode parses a payload published by RedisPublisher.
func Decode(payload []byte) (Notification, error) {
	var w wireNotification
	if err := json.Unmarshal(payload, &w); err != nil {
		return Notification{}, fmt.Errorf("notify: decode: %w", err)
	}
	n := Notification{
		Severity:  w.Severity,
		Summary:   w.Summary,
		Detail:    w.Detail,
		Life:      time.Duration(w.Life) * time.Millisecond,
		CreatedAt: w.CreatedAt,
	}
	if w.ID != "" {
		if err := n.ID.UnmarshalText([]byte(w.ID)); err != nil {
			return Notification{}, fmt.Errorf("notify: decode id: %w", err)
		}
	}
	return n, nil
}
