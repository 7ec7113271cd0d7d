package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell-games/novel-engine/pkg/content"
	"github.com/inkwell-games/novel-engine/pkg/engine"
	"github.com/inkwell-games/novel-engine/pkg/storage"
)

func relayTestIndex(t *testing.T) *content.Index {
	t.Helper()
	story := &content.Story{
		Title:  "Relay Test",
		Phases: []content.Phase{"intro"},
		Scenes: []content.Scene{
			{ID: "room", Phase: "intro", EntryDialogID: "n1"},
		},
		Scripts: []content.DialogScript{
			{ID: "opening", Phase: "intro", StartNodeID: "n1", Nodes: []content.DialogNode{
				{ID: "n1", Text: "Hello."},
			}},
		},
	}
	require.NoError(t, story.Validate())
	return content.NewIndex(story)
}

func setupRelay(t *testing.T) (*Relay, *engine.Engine, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	eng := engine.New(relayTestIndex(t), storage.NewMemoryStore(), logger,
		engine.WithAutosaveInterval(0))
	t.Cleanup(func() { _ = eng.Close() })

	relay := NewRelay(client, logger)
	relay.Attach(eng)
	t.Cleanup(relay.Detach)
	return relay, eng, client
}

// subscribe opens a pub/sub subscription and waits for the server's
// confirmation so no published message can race past it.
func subscribe(t *testing.T, client *redis.Client, channel string) *redis.PubSub {
	t.Helper()
	ctx := context.Background()

	pubsub := client.Subscribe(ctx, channel)
	t.Cleanup(func() { _ = pubsub.Close() })
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)
	return pubsub
}

func TestRelay_PublishesEvents(t *testing.T) {
	_, eng, client := setupRelay(t)
	ctx := context.Background()

	require.NoError(t, eng.Dispatch(ctx, engine.StartNewGame{PlayerName: "Mira"}))
	save := eng.Save()
	require.NotNil(t, save)

	pubsub := subscribe(t, client, Channel(save.ID))

	require.NoError(t, eng.Dispatch(ctx, engine.SaveGame{}))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, Channel(save.ID), msg.Channel)
		var ev engine.Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		assert.Equal(t, engine.EventSaveUpdated, ev.Type)
		assert.Equal(t, save.ID, ev.SaveID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event relayed")
	}
}

func TestRelay_DetachStopsPublishing(t *testing.T) {
	relay, eng, client := setupRelay(t)
	ctx := context.Background()

	require.NoError(t, eng.Dispatch(ctx, engine.StartNewGame{PlayerName: "Mira"}))
	save := eng.Save()
	require.NotNil(t, save)

	pubsub := subscribe(t, client, Channel(save.ID))

	relay.Detach()
	require.NoError(t, eng.Dispatch(ctx, engine.SaveGame{}))

	select {
	case msg := <-pubsub.Channel():
		t.Fatalf("unexpected message after detach: %q", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRelay_SkipsEventsWithoutSave(t *testing.T) {
	relay, _, _ := setupRelay(t)

	// Events emitted before any save exists have no session channel.
	err := relay.publish(context.Background(), engine.Event{Type: engine.EventError})
	assert.NoError(t, err)
}
