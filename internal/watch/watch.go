package watch

import (
	"context"
	"fmt"
	"log"

	"github.com/dyluth/agenda/internal/cache"
	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/dyluth/agenda/pkg/store"
	"github.com/robfig/cron/v3"
)

// Triggers of a revalidation.
const (
	TriggerStartup  = "startup"
	TriggerEvent    = "event"
	TriggerSchedule = "schedule"
)

// Result is the outcome of one revalidation. Entry is nil when no snapshot
// has been saved yet.
type Result struct {
	Trigger    string
	SnapshotID string
	Entry      *cache.Entry
}

// Watcher revalidates the current snapshot whenever a new one is saved and on
// a cron schedule. Both sources feed one loop, so revalidations never overlap.
type Watcher struct {
	client   *store.Client
	tables   *cache.Tables
	spec     string
	onResult func(Result)
}

// New creates a watcher. spec is a standard five-field cron expression or a
// descriptor such as "@hourly"; an empty spec disables scheduled runs.
// onResult is called from the Run goroutine after every revalidation.
func New(client *store.Client, tables *cache.Tables, spec string, onResult func(Result)) (*Watcher, error) {
	if spec != "" {
		if _, err := cron.ParseStandard(spec); err != nil {
			return nil, fmt.Errorf("invalid revalidation schedule %q: %w", spec, err)
		}
	}
	if tables == nil {
		tables = cache.New()
	}
	if onResult == nil {
		onResult = func(Result) {}
	}

	return &Watcher{
		client:   client,
		tables:   tables,
		spec:     spec,
		onResult: onResult,
	}, nil
}

// Run revalidates once, then blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	log.Printf("[Watch] Starting for conference '%s'", w.client.Conference())

	subscription, err := w.client.SubscribeSnapshotEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to snapshot events: %w", err)
	}
	defer subscription.Close()

	ticks := make(chan struct{}, 1)
	if w.spec != "" {
		c := cron.New()
		if _, err := c.AddFunc(w.spec, func() {
			// Drop the tick if one is already pending
			select {
			case ticks <- struct{}{}:
			default:
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule revalidation: %w", err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("[Watch] Revalidating on schedule '%s'", w.spec)
	}

	w.revalidate(ctx, TriggerStartup, "")

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Watch] Shutting down...")
			return nil

		case event, ok := <-subscription.Events():
			if !ok {
				log.Printf("[Watch] Subscription closed")
				return nil
			}
			log.Printf("[Watch] Snapshot %s saved", event.SnapshotID)
			w.revalidate(ctx, TriggerEvent, event.SnapshotID)

		case err, ok := <-subscription.Errors():
			if !ok {
				log.Printf("[Watch] Error channel closed")
				return nil
			}
			log.Printf("[Watch] Subscription error: %v", err)

		case <-ticks:
			w.revalidate(ctx, TriggerSchedule, "")
		}
	}
}

// revalidate validates snapshot id, or the current snapshot when id is empty.
// Failures are logged and never stop the watcher.
func (w *Watcher) revalidate(ctx context.Context, trigger, id string) {
	if id == "" {
		current, err := w.client.CurrentID(ctx)
		if err != nil {
			if store.IsNotFound(err) {
				log.Printf("[Watch] No current snapshot")
				w.tables.Invalidate()
				w.onResult(Result{Trigger: trigger})
				return
			}
			log.Printf("[Watch] Error reading current snapshot: %v", err)
			return
		}
		id = current
	}

	entry, err := w.tables.Get(id, func() (*schedule.Snapshot, error) {
		return w.client.LoadSnapshotByID(ctx, id)
	})
	if err != nil {
		log.Printf("[Watch] Error loading snapshot %s: %v", id, err)
		return
	}

	if entry.Report.Clean() {
		log.Printf("[Watch] Snapshot %s (%s): no problems found", id, trigger)
	} else {
		log.Printf("[Watch] Snapshot %s (%s): %d problems found", id, trigger, entry.Report.Findings())
	}

	w.onResult(Result{Trigger: trigger, SnapshotID: id, Entry: entry})
}
