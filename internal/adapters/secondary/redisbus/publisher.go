// Package redisbus republishes pool events on redis pub/sub so processes other
// than the API server can follow the pool.
package redisbus

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"github.com/lorrc/ticketing-system/internal/core/domain"
	"github.com/lorrc/ticketing-system/internal/core/ports"
)

// Publisher is an EventBroadcaster backed by redis PUBLISH. Events are queued
// and sent by Run; a full queue drops the event.
type Publisher struct {
	rdb *redis.Client

	prefix         string
	queueSize      int
	publishTimeout time.Duration
	logger         *slog.Logger

	queue   chan domain.Event
	dropped atomic.Int64
}

var _ ports.EventBroadcaster = (*Publisher)(nil)

type Option func(*Publisher)

// WithChannelPrefix sets the channel prefix. Events go to "<prefix>:<topic>".
func WithChannelPrefix(prefix string) Option {
	return func(p *Publisher) { p.prefix = strings.Trim(prefix, ":") }
}

func WithQueueSize(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(p *Publisher) { p.publishTimeout = d }
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) { p.logger = logger }
}

func NewPublisher(rdb *redis.Client, opts ...Option) *Publisher {
	p := &Publisher{
		rdb:            rdb,
		prefix:         "ticketing.events",
		queueSize:      256,
		publishTimeout: 2 * time.Second,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.queue = make(chan domain.Event, p.queueSize)
	p.logger = p.logger.With("component", "redis_publisher")
	return p
}

// Channel returns the redis channel used for topic.
func (p *Publisher) Channel(topic string) string {
	if topic == "" {
		return p.prefix
	}
	return p.prefix + ":" + topic
}

// Broadcast queues event without blocking.
func (p *Publisher) Broadcast(event domain.Event) error {
	select {
	case p.queue <- event:
	default:
		if p.dropped.Add(1) == 1 {
			p.logger.Warn("redis publish queue full, dropping events", "event_type", event.Type)
		}
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run publishes queued events until ctx is done.
func (p *Publisher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-p.queue:
			p.publish(ctx, event)
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event domain.Event) {
	data, err := jsoniter.ConfigFastest.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event", "event_type", event.Type, "error", err)
		return
	}

	pubCtx := ctx
	if p.publishTimeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(ctx, p.publishTimeout)
		defer cancel()
	}

	if err := p.rdb.Publish(pubCtx, p.Channel(event.Topic), data).Err(); err != nil {
		p.logger.Warn("failed to publish event",
			"event_type", event.Type,
			"channel", p.Channel(event.Topic),
			"error", err,
		)
	}
}
