package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/config"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/timeclock-backend-go/internal/pkg/sse"
	goredis "github.com/redis/go-redis/v9"
)

// EventShiftChanged is the SSE event name of shift change notifications
const EventShiftChanged = "shift.changed"

// LocalBroker delivers shift changes straight to this instance's SSE hub.
type LocalBroker struct {
	hub *sse.Hub
}

func NewLocalBroker(hub *sse.Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) PublishShiftChange(ctx context.Context, event shift.ChangeEvent) {
	deliver(b.hub, event)
}

// RedisBroker publishes shift changes on a redis channel so every API instance
// can forward them to its own SSE subscribers. Run must be started for
// this instance to receive anything.
type RedisBroker struct {
	rdb        *goredis.Client
	channel    string
	hub        *sse.Hub
	newBackOff func() backoff.BackOff
}

// resubscribeBackOff paces resubscription after redis drops or refuses the channel
func resubscribeBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	b.MaxInterval = 30 * time.Second
	return b
}

// NewRedisBroker connects to redis and pings it once.
func NewRedisBroker(ctx context.Context, cfg config.RedisConfig, hub *sse.Hub) (*RedisBroker, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("Redis connected", "addr", cfg.Addr, "channel", cfg.Channel)

	return &RedisBroker{rdb: rdb, channel: cfg.Channel, hub: hub, newBackOff: resubscribeBackOff}, nil
}

// PublishShiftChange never fails the caller: the shift write has already
// committed, so a lost notification is only logged.
func (b *RedisBroker) PublishShiftChange(ctx context.Context, event shift.ChangeEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to encode shift change", "error", err)
		return
	}

	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		slog.Error("Failed to publish shift change", "channel", b.channel, "shift_id", event.ShiftID, "error", err)
	}
}

// Run forwards messages from the redis channel to the local hub until ctx is
// cancelled. A failed or dropped subscription is retried with backoff.
func (b *RedisBroker) Run(ctx context.Context) {
	retry := b.newBackOff()
	for {
		err := b.listen(ctx, retry.Reset)
		if ctx.Err() != nil {
			return
		}

		wait := retry.NextBackOff()
		slog.Error("Redis shift feed interrupted, resubscribing", "channel", b.channel, "retry_in", wait, "error", err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// listen forwards messages until the subscription ends. subscribed runs once
// redis has confirmed the subscription.
func (b *RedisBroker) listen(ctx context.Context, subscribed func()) error {
	pubsub := b.rdb.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}
	subscribed()
	slog.Info("Subscribed to shift changes", "channel", b.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return errors.New("subscription channel closed")
			}
			forward(b.hub, msg.Payload)
		}
	}
}

func (b *RedisBroker) Close() error {
	return b.rdb.Close()
}

func forward(hub *sse.Hub, payload string) {
	var event shift.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		slog.Warn("Dropping malformed shift change message", "error", err)
		return
	}
	deliver(hub, event)
}

func deliver(hub *sse.Hub, event shift.ChangeEvent) {
	n := hub.Publish(sse.Event{
		Topic: sse.TopicShifts,
		Event: EventShiftChanged,
		Data:  event,
	})
	slog.Debug("Shift change delivered", "action", event.Action, "shift_id", event.ShiftID, "subscribers", n)
}
