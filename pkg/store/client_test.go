package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/agenda/pkg/schedule"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestClient creates a test client connected to a miniredis instance
func setupTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.NewMiniRedis()
	err := mr.Start()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := NewClient(&redis.Options{Addr: mr.Addr()}, "pycon")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func testSnapshot(t *testing.T, title string) *schedule.Snapshot {
	t.Helper()

	start := schedule.NewClock(10, 0, 0)
	snap, err := schedule.NewSnapshot(schedule.Data{
		Days:   []schedule.Day{{ID: "d1", Date: time.Date(2013, 9, 22, 0, 0, 0, 0, time.UTC)}},
		Venues: []schedule.Venue{{ID: "v1", Name: "Main Hall", Order: 1, DayIDs: []string{"d1"}}},
		Slots: []schedule.Slot{
			{ID: "s1", DayID: "d1", Start: &start, End: schedule.NewClock(11, 0, 0)},
			{ID: "s2", DayID: "d1", PreviousSlotID: "s1", End: schedule.NewClock(12, 0, 0)},
		},
		Talks: []schedule.Talk{{ID: "t1", Title: title, Status: schedule.TalkStatusAccepted}},
		Pages: []schedule.Page{{ID: "p1", Name: "Lunch", Slug: "lunch"}},
		Items: []schedule.ScheduleItem{
			{ID: "i1", VenueID: "v1", SlotIDs: []string{"s1"}, Content: schedule.TalkContent("t1")},
			{ID: "i2", VenueID: "v1", SlotIDs: []string{"s2"}, Content: schedule.PageContent("p1")},
		},
	})
	require.NoError(t, err)
	return snap
}

func TestNewClient(t *testing.T) {
	t.Run("creates client successfully", func(t *testing.T) {
		client, _ := setupTestClient(t)
		assert.NotNil(t, client)
		assert.Equal(t, "pycon", client.Conference())
	})

	t.Run("rejects empty conference name", func(t *testing.T) {
		_, err := NewClient(&redis.Options{Addr: "localhost:6379"}, "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "conference name cannot be empty")
	})

	t.Run("from URL", func(t *testing.T) {
		client, err := NewClientFromURL("redis://localhost:6379/2", "pycon")
		require.NoError(t, err)
		defer client.Close()

		_, err = NewClientFromURL("http://nope", "pycon")
		assert.Error(t, err)
	})
}

func TestPing(t *testing.T) {
	client, _ := setupTestClient(t)
	assert.NoError(t, client.Ping(context.Background()))
}

func TestSaveAndLoadSnapshot(t *testing.T) {
	ctx := context.Background()

	t.Run("load before any save is not found", func(t *testing.T) {
		client, _ := setupTestClient(t)

		_, _, err := client.LoadSnapshot(ctx)
		assert.True(t, IsNotFound(err))
	})

	t.Run("round trip", func(t *testing.T) {
		client, mr := setupTestClient(t)
		snap := testSnapshot(t, "Go at scale")

		id, err := client.SaveSnapshot(ctx, snap)
		require.NoError(t, err)
		assert.NotEmpty(t, id)

		loaded, loadedID, err := client.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, id, loadedID)
		assert.Equal(t, snap.Data(), loaded.Data())

		current, err := mr.Get(CurrentKey("pycon"))
		require.NoError(t, err)
		assert.Equal(t, id, current)
		assert.True(t, mr.Exists(SnapshotKey("pycon", id)))
	})

	t.Run("latest save becomes current, older ones stay readable", func(t *testing.T) {
		client, _ := setupTestClient(t)

		first, err := client.SaveSnapshot(ctx, testSnapshot(t, "First"))
		require.NoError(t, err)
		second, err := client.SaveSnapshot(ctx, testSnapshot(t, "Second"))
		require.NoError(t, err)

		current, id, err := client.LoadSnapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, second, id)
		talk, _ := current.Talk("t1")
		assert.Equal(t, "Second", talk.Title)

		old, err := client.LoadSnapshotByID(ctx, first)
		require.NoError(t, err)
		talk, _ = old.Talk("t1")
		assert.Equal(t, "First", talk.Title)

		history, err := client.ListSnapshots(ctx)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.ElementsMatch(t, []string{first, second}, []string{history[0].ID, history[1].ID})
		assert.GreaterOrEqual(t, history[0].SavedAtMs, history[1].SavedAtMs)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		client, _ := setupTestClient(t)
		_, err := client.LoadSnapshotByID(ctx, "missing")
		assert.True(t, IsNotFound(err))
	})

	t.Run("conferences are isolated", func(t *testing.T) {
		client, mr := setupTestClient(t)
		_, err := client.SaveSnapshot(ctx, testSnapshot(t, "Go"))
		require.NoError(t, err)

		other, err := NewClient(&redis.Options{Addr: mr.Addr()}, "gophercon")
		require.NoError(t, err)
		defer other.Close()

		_, _, err = other.LoadSnapshot(ctx)
		assert.True(t, IsNotFound(err))
	})

	t.Run("corrupt stored snapshot reports an error", func(t *testing.T) {
		client, mr := setupTestClient(t)
		mr.HSet(SnapshotKey("pycon", "bad"), "id", "bad", "saved_at_ms", "1", "days", "{not json")
		require.NoError(t, mr.Set(CurrentKey("pycon"), "bad"))

		_, _, err := client.LoadSnapshot(ctx)
		require.Error(t, err)
		assert.False(t, IsNotFound(err))
		assert.Contains(t, err.Error(), "failed to deserialize snapshot")
	})
}

func TestSubscribeSnapshotEvents(t *testing.T) {
	client, _ := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeSnapshotEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	id, err := client.SaveSnapshot(ctx, testSnapshot(t, "Go"))
	require.NoError(t, err)

	select {
	case event := <-sub.Events():
		require.NotNil(t, event)
		assert.Equal(t, id, event.SnapshotID)
		assert.Equal(t, "pycon", event.Conference)
		assert.NotZero(t, event.SavedAtMs)
	case err := <-sub.Errors():
		t.Fatalf("unexpected subscription error: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for snapshot event")
	}

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close())
}

func TestSubscribeSnapshotEventsBadPayload(t *testing.T) {
	client, mr := setupTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := client.SubscribeSnapshotEvents(ctx)
	require.NoError(t, err)
	defer sub.Close()

	mr.Publish(SnapshotEventsChannel("pycon"), "not json")

	select {
	case err := <-sub.Errors():
		assert.Contains(t, err.Error(), "failed to unmarshal snapshot event")
	case <-ctx.Done():
		t.Fatal("timed out waiting for subscription error")
	}
}
