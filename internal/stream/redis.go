package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"pokedex/catalog/internal/config"
	"pokedex/catalog/internal/state"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	stateStream = "state"
	bufferSize  = 256
)

// Publisher fans store changes out to a Redis stream for out-of-process views
type Publisher interface {
	Publish(ctx context.Context, change state.Change) (string, error) // Returns message ID
	Run(ctx context.Context) error
	StreamName() string
	Close() error
}

type RedisPublisher struct {
	redisClient  *redis.Client
	streamPrefix string
	maxLen       int64

	mutex       sync.RWMutex
	closed      bool
	changes     chan state.Change
	unsubscribe func()
}

// NewRedisPublisher subscribes to the store. Changes are buffered until Run
// drains them; when the buffer is full the change is dropped with a warning.
func NewRedisPublisher(redisClient *redis.Client, store state.Store, cfg config.RedisConfig) Publisher {
	p := &RedisPublisher{
		redisClient:  redisClient,
		streamPrefix: cfg.StreamPrefix,
		maxLen:       cfg.MaxLen,
		changes:      make(chan state.Change, bufferSize),
	}

	p.unsubscribe = store.Subscribe(p.enqueue)
	return p
}

func (p *RedisPublisher) StreamName() string {
	return p.streamPrefix + stateStream
}

func (p *RedisPublisher) enqueue(change state.Change) {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	if p.closed {
		return
	}

	select {
	case p.changes <- change:
	default:
		log.Warnf("⚠️ State feed buffer full, dropping %s (v%d)", change.Event.EventType(), change.Version)
	}
}

// Publish writes one change to the stream.
// Fields: event_type, version, state
func (p *RedisPublisher) Publish(ctx context.Context, change state.Change) (string, error) {
	streamName := p.StreamName()

	stateValue, err := json.Marshal(change.State)
	if err != nil {
		return "", fmt.Errorf("failed to serialize state: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: streamName,
		Values: map[string]interface{}{
			"event_type": change.Event.EventType(),
			"version":    strconv.FormatUint(change.Version, 10),
			"state":      string(stateValue),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}

	messageID, err := p.redisClient.XAdd(ctx, args).Result()
	if err != nil {
		return "", fmt.Errorf("failed to add change to Redis stream %s: %w", streamName, err)
	}

	log.Debugf("Published %s (v%d) to stream %s with message ID: %s",
		change.Event.EventType(), change.Version, streamName, messageID)
	return messageID, nil
}

// Run publishes buffered changes until ctx is done or the publisher is closed.
// Publish failures are logged and skipped.
func (p *RedisPublisher) Run(ctx context.Context) error {
	log.Infof("📡 Publishing state changes to %s", p.StreamName())

	// Changes buffered before cancellation are still written
	publishCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			p.drain(publishCtx)
			return nil
		case change, ok := <-p.changes:
			if !ok {
				return nil
			}
			if _, err := p.Publish(publishCtx, change); err != nil {
				log.Errorf("❌ %v", err)
			}
		}
	}
}

// drain flushes whatever is still buffered so the feed sees the final state
func (p *RedisPublisher) drain(ctx context.Context) {
	for {
		select {
		case change, ok := <-p.changes:
			if !ok {
				return
			}
			if _, err := p.Publish(ctx, change); err != nil {
				log.Errorf("❌ %v", err)
			}
		default:
			return
		}
	}
}

// Close stops the subscription. It does not close the Redis client.
func (p *RedisPublisher) Close() error {
	p.unsubscribe()

	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.closed {
		p.closed = true
		close(p.changes)
	}
	return nil
}
