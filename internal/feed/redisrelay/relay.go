// Package redisrelay fans feed change notifications out across service
// instances through Redis pub/sub, so a write committed by one instance
// reaches subscribers connected to another.
package redisrelay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vbonduro/konsinyasi/internal/domain"
)

const DefaultChannel = "konsinyasi:changes"

type localNotifier interface {
	NotifyLocal(ctx context.Context, c domain.Collection)
}

type message struct {
	Instance   string            `json:"instance"`
	Collection domain.Collection `json:"collection"`
}

type Relay struct {
	client   *redis.Client
	hub      localNotifier
	channel  string
	instance string
}

// Connect dials Redis and verifies the connection. On failure the client is
// closed and nil is returned so callers can run without a relay.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

func New(client *redis.Client, hub localNotifier, channel string) *Relay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Relay{
		client:   client,
		hub:      hub,
		channel:  channel,
		instance: uuid.NewString(),
	}
}

func (r *Relay) Publish(ctx context.Context, c domain.Collection) error {
	payload, err := json.Marshal(message{Instance: r.instance, Collection: c})
	if err != nil {
		return fmt.Errorf("failed to encode change: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish change: %w", err)
	}
	return nil
}

// Run relays changes published by other instances into the local hub until
// ctx is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	defer func() {
		if err := pubsub.Close(); err != nil {
			slog.Error("failed to close redis subscription", "error", err)
		}
	}()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	slog.Info("redis relay subscribed", "channel", r.channel, "instance", r.instance)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return errors.New("redis subscription closed")
			}
			r.handle(ctx, msg.Payload)
		}
	}
}

func (r *Relay) handle(ctx context.Context, payload string) {
	var m message
	if err := json.Unmarshal([]byte(payload), &m); err != nil {
		slog.Warn("ignoring malformed change message", "error", err)
		return
	}
	if m.Instance == r.instance {
		return
	}
	if !m.Collection.Valid() {
		slog.Warn("ignoring change for unknown collection", "collection", m.Collection)
		return
	}
	r.hub.NotifyLocal(ctx, m.Collection)
}
