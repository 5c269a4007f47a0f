package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Client provides conference-scoped Redis operations for schedule snapshots.
// All keys and channels are namespaced with the conference name.
// The client is thread-safe and can be used concurrently from multiple goroutines.
type Client struct {
	rdb        *redis.Client
	conference string
}

// NewClient creates a new store client for the specified conference.
//
// Returns an error if conference is empty.
func NewClient(redisOpts *redis.Options, conference string) (*Client, error) {
	if conference == "" {
		return nil, fmt.Errorf("conference name cannot be empty")
	}

	return &Client{
		rdb:        redis.NewClient(redisOpts),
		conference: conference,
	}, nil
}

// NewClientFromURL parses a redis:// URL and creates a client for the conference.
func NewClientFromURL(redisURL, conference string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL '%s': %w", redisURL, err)
	}
	return NewClient(opts, conference)
}

// Conference returns the conference name the client is scoped to.
func (c *Client) Conference() string {
	return c.conference
}

// Close closes the Redis connection. Implements io.Closer.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// SaveSnapshot stores a snapshot under a fresh id, makes it current and
// publishes a SnapshotEvent.
//
// The snapshot hash, the current pointer and the history entry are written in
// one MULTI/EXEC transaction, so readers see either the old or the new
// snapshot, never a mix.
func (c *Client) SaveSnapshot(ctx context.Context, snap *schedule.Snapshot) (string, error) {
	info := SnapshotInfo{
		ID:        uuid.New().String(),
		SavedAtMs: time.Now().UnixMilli(),
	}

	hash, err := DataToHash(info, snap.Data())
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	_, err = c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, SnapshotKey(c.conference, info.ID), hash)
		pipe.Set(ctx, CurrentKey(c.conference), info.ID, 0)
		pipe.ZAdd(ctx, HistoryKey(c.conference), redis.Z{Score: float64(info.SavedAtMs), Member: info.ID})
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to write snapshot to Redis: %w", err)
	}

	event, err := json.Marshal(SnapshotEvent{SnapshotID: info.ID, Conference: c.conference, SavedAtMs: info.SavedAtMs})
	if err != nil {
		return "", fmt.Errorf("failed to marshal snapshot event: %w", err)
	}
	if err := c.rdb.Publish(ctx, SnapshotEventsChannel(c.conference), event).Err(); err != nil {
		return "", fmt.Errorf("failed to publish snapshot event: %w", err)
	}

	return info.ID, nil
}

// LoadSnapshot reads the current snapshot.
// Returns redis.Nil if nothing has been saved yet; use IsNotFound to check.
func (c *Client) LoadSnapshot(ctx context.Context) (*schedule.Snapshot, string, error) {
	id, err := c.CurrentID(ctx)
	if err != nil {
		return nil, "", err
	}

	snap, err := c.LoadSnapshotByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return snap, id, nil
}

// CurrentID returns the id of the current snapshot, or redis.Nil if there is none.
func (c *Client) CurrentID(ctx context.Context) (string, error) {
	id, err := c.rdb.Get(ctx, CurrentKey(c.conference)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", redis.Nil
		}
		return "", fmt.Errorf("failed to read current snapshot id: %w", err)
	}
	return id, nil
}

// LoadSnapshotByID reads one stored snapshot. Stored snapshots are never
// modified, so any snapshot read this way is internally consistent.
// Returns redis.Nil if the snapshot doesn't exist.
func (c *Client) LoadSnapshotByID(ctx context.Context, id string) (*schedule.Snapshot, error) {
	hashData, err := c.rdb.HGetAll(ctx, SnapshotKey(c.conference, id)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot from Redis: %w", err)
	}

	// HGetAll returns an empty map for missing keys
	if len(hashData) == 0 {
		return nil, redis.Nil
	}

	_, data, err := HashToData(hashData)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot %s: %w", id, err)
	}

	snap, err := schedule.NewSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("stored snapshot %s is inconsistent: %w", id, err)
	}
	return snap, nil
}

// ListSnapshots returns saved snapshots, newest first.
func (c *Client) ListSnapshots(ctx context.Context) ([]SnapshotInfo, error) {
	results, err := c.rdb.ZRevRangeWithScores(ctx, HistoryKey(c.conference), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot history: %w", err)
	}

	infos := make([]SnapshotInfo, 0, len(results))
	for _, z := range results {
		infos = append(infos, SnapshotInfo{ID: z.Member.(string), SavedAtMs: int64(z.Score)})
	}
	return infos, nil
}

// Subscription represents an active Pub/Sub subscription to snapshot events.
// Caller must call Close() when done to clean up resources.
type Subscription struct {
	events <-chan *SnapshotEvent
	errors <-chan error
	cancel func()
	once   sync.Once
}

// Events returns the channel of snapshot events.
// The channel will be closed when the subscription is closed or the context is cancelled.
func (s *Subscription) Events() <-chan *SnapshotEvent {
	return s.events
}

// Errors returns the channel of subscription errors.
// The subscription continues after errors; the offending message is skipped.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close stops the subscription. Implements io.Closer.
// Safe to call multiple times.
func (s *Subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}

// SubscribeSnapshotEvents subscribes to snapshot save events for this conference.
// Context cancellation also stops the subscription.
//
// The subscription is confirmed with Redis before returning, so a save made
// after this call is always delivered. Delivery is at-most-once: a slow
// subscriber can miss events.
func (c *Client) SubscribeSnapshotEvents(ctx context.Context) (*Subscription, error) {
	pubsub := c.rdb.Subscribe(ctx, SnapshotEventsChannel(c.conference))
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to snapshot events: %w", err)
	}

	eventsChan := make(chan *SnapshotEvent, 10)
	errorsChan := make(chan error, 10)

	subCtx, cancelFunc := context.WithCancel(ctx)

	go func() {
		defer close(eventsChan)
		defer close(errorsChan)
		defer pubsub.Close()

		ch := pubsub.Channel()

		for {
			select {
			case <-subCtx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}

				var event SnapshotEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					select {
					case errorsChan <- fmt.Errorf("failed to unmarshal snapshot event: %w", err):
					case <-subCtx.Done():
						return
					}
					continue
				}

				select {
				case eventsChan <- &event:
				case <-subCtx.Done():
					return
				}
			}
		}
	}()

	return &Subscription{
		events: eventsChan,
		errors: errorsChan,
		cancel: cancelFunc,
	}, nil
}

// IsNotFound returns true if the error is a Redis "key not found" error (redis.Nil).
func IsNotFound(err error) bool {
	return errors.Is(err, redis.Nil)
}
