package storage

import (
	"context"
	"testing"
	"time"
)

func snapshotOf(ids ...string) Snapshot {
	snap := make(Snapshot, len(ids))
	for i, id := range ids {
		snap[i] = Record{ID: id, Data: []byte(`{}`)}
	}
	return snap
}

func TestHubLatestSnapshotWins(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, Recipes, snapshotOf())

	// Nobody reads: each publish must replace the pending snapshot
	hub.Publish(Recipes, snapshotOf("a"))
	hub.Publish(Recipes, snapshotOf("a", "b"))
	hub.Publish(Recipes, snapshotOf("a", "b", "c"))

	select {
	case snap := <-ch:
		if len(snap) != 3 {
			t.Errorf("got snapshot with %d records, want the latest (3)", len(snap))
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot delivered")
	}

	select {
	case snap := <-ch:
		t.Errorf("unexpected stale snapshot %v", snap)
	default:
	}
}

func TestHubPublishOnlyToCollection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ctx := context.Background()
	recipes := hub.Subscribe(ctx, Recipes, snapshotOf())
	<-recipes

	hub.Publish(Ingredients, snapshotOf("egg"))

	select {
	case snap := <-recipes:
		t.Errorf("recipes subscriber received %v", snap)
	default:
	}
	if hub.HasSubscribers(Ingredients) {
		t.Error("HasSubscribers(ingredients) should be false")
	}
	if !hub.HasSubscribers(Recipes) {
		t.Error("HasSubscribers(recipes) should be true")
	}
}

func TestHubClosesOnCancelAndClose(t *testing.T) {
	hub := NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	cancelled := hub.Subscribe(ctx, Schedule, snapshotOf())
	open := hub.Subscribe(context.Background(), Schedule, snapshotOf())
	<-cancelled
	<-open

	cancel()
	waitClosed(t, cancelled)

	hub.Close()
	waitClosed(t, open)

	// Subscribing after Close yields a closed channel with the initial snapshot
	late := hub.Subscribe(context.Background(), Schedule, snapshotOf("x"))
	if snap, ok := <-late; !ok || len(snap) != 1 {
		t.Errorf("late subscriber got (%v, %v)", snap, ok)
	}
	waitClosed(t, late)
}

func TestPublishedSnapshotsDoNotAlias(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	ch := hub.Subscribe(context.Background(), Recipes, snapshotOf())
	<-ch

	snap := Snapshot{{ID: "r1", Data: []byte(`{"name":"Soup"}`)}}
	hub.Publish(Recipes, snap)
	snap[0].Data[2] = 'X'

	got := <-ch
	if string(got[0].Data) != `{"name":"Soup"}` {
		t.Errorf("published snapshot aliased the writer's bytes: %s", got[0].Data)
	}
}

func waitClosed(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed")
		}
	}
}
