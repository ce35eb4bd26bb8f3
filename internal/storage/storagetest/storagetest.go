// Package storagetest checks that an adapter honors the storage contract.
package storagetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/julianstephens/mealplan/internal/storage"
)

// Factory returns a fresh, initialized adapter. Cleanup is the caller's job
// (t.Cleanup).
type Factory func(t *testing.T) storage.Adapter

// Run exercises every adapter operation against adapters built by newAdapter.
func Run(t *testing.T, newAdapter Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, a storage.Adapter)
	}{
		{"AddAssignsIDAndPreservesOrder", testAddAndList},
		{"GetMissing", testGetMissing},
		{"SetCreatesAndReplaces", testSet},
		{"UpdateMergesTopLevelFields", testUpdate},
		{"UpdateMissing", testUpdateMissing},
		{"Remove", testRemove},
		{"BatchWriteAllOrNothing", testBatchAllOrNothing},
		{"BatchWriteAppliesInOrder", testBatchInOrder},
		{"RejectsInvalidInput", testInvalidInput},
		{"SubscribeDeliversSnapshots", testSubscribe},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newAdapter(t))
		})
	}
}

func fields(t *testing.T, data json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("stored document is not an object: %v (%s)", err, data)
	}
	return m
}

func ids(snap storage.Snapshot) []string {
	out := make([]string, len(snap))
	for i, r := range snap {
		out[i] = r.ID
	}
	return out
}

func testAddAndList(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	var added []string
	for _, name := range []string{"Egg", "Milk", "Flour"} {
		id, err := a.Add(ctx, storage.Ingredients, json.RawMessage(`{"name":"`+name+`","unit":"pcs","market":"A"}`))
		if err != nil {
			t.Fatalf("Add(%s) failed: %v", name, err)
		}
		if id == "" {
			t.Fatalf("Add(%s) returned an empty id", name)
		}
		added = append(added, id)
	}

	snap, err := a.List(ctx, storage.Ingredients)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	got := ids(snap)
	if len(got) != 3 || got[0] != added[0] || got[1] != added[1] || got[2] != added[2] {
		t.Errorf("List() ids = %v, want %v", got, added)
	}
	if fields(t, snap[1].Data)["name"] != "Milk" {
		t.Errorf("second document = %s", snap[1].Data)
	}

	other, err := a.List(ctx, storage.Recipes)
	if err != nil {
		t.Fatalf("List(recipes) failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("collections leaked into each other: %v", ids(other))
	}
}

func testGetMissing(t *testing.T, a storage.Adapter) {
	_, err := a.Get(context.Background(), storage.Recipes, "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func testSet(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	if err := a.Set(ctx, storage.Schedule, "Monday", json.RawMessage(`{"day_of_week":"Monday","meals":[]}`)); err != nil {
		t.Fatalf("Set (create) failed: %v", err)
	}
	if err := a.Set(ctx, storage.Schedule, "Tuesday", json.RawMessage(`{"day_of_week":"Tuesday","meals":[]}`)); err != nil {
		t.Fatalf("Set (create) failed: %v", err)
	}
	if err := a.Set(ctx, storage.Schedule, "Monday", json.RawMessage(`{"day_of_week":"Monday","meals":[{"meal_type":"Lunch","recipe_id":"r1"}]}`)); err != nil {
		t.Fatalf("Set (replace) failed: %v", err)
	}

	snap, err := a.List(ctx, storage.Schedule)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if got := ids(snap); len(got) != 2 || got[0] != "Monday" || got[1] != "Tuesday" {
		t.Errorf("replacing a document must keep its position, got %v", got)
	}

	rec, err := a.Get(ctx, storage.Schedule, "Monday")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	meals := fields(t, rec.Data)["meals"].([]any)
	if len(meals) != 1 {
		t.Errorf("expected replaced document, got %s", rec.Data)
	}
}

func testUpdate(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	err := a.Set(ctx, storage.ShoppingList, "current", json.RawMessage(`{"list":{"B":[],"A":[]},"checked":{"A-Egg":true},"generated_at":"2026-01-01T00:00:00Z"}`))
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if err := a.Update(ctx, storage.ShoppingList, "current", json.RawMessage(`{"checked":{"A-Milk":true}}`)); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	rec, err := a.Get(ctx, storage.ShoppingList, "current")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	doc := fields(t, rec.Data)
	checked := doc["checked"].(map[string]any)
	if len(checked) != 1 || checked["A-Milk"] != true {
		t.Errorf("checked = %v, want the whole map replaced", checked)
	}
	if doc["generated_at"] != "2026-01-01T00:00:00Z" {
		t.Errorf("untouched field lost: %v", doc)
	}

	// Nested key order of untouched fields survives the merge
	var top map[string]json.RawMessage
	if err := json.Unmarshal(rec.Data, &top); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if string(top["list"]) != `{"B":[],"A":[]}` {
		t.Errorf("list = %s, want market order preserved", top["list"])
	}
}

func testUpdateMissing(t *testing.T, a storage.Adapter) {
	err := a.Update(context.Background(), storage.Recipes, "ghost", json.RawMessage(`{"name":"x"}`))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func testRemove(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	id, err := a.Add(ctx, storage.Recipes, json.RawMessage(`{"name":"Soup","ingredients":[]}`))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := a.Remove(ctx, storage.Recipes, id); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, err := a.Get(ctx, storage.Recipes, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Get after Remove error = %v, want ErrNotFound", err)
	}
	if err := a.Remove(ctx, storage.Recipes, id); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("second Remove error = %v, want ErrNotFound", err)
	}
}

func testBatchAllOrNothing(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	id, err := a.Add(ctx, storage.Recipes, json.RawMessage(`{"name":"Omelette","ingredients":[{"ingredient_id":"egg","quantity":2}]}`))
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	err = a.BatchWrite(ctx, []storage.Write{
		{Collection: storage.Recipes, ID: id, Op: storage.OpSet, Data: json.RawMessage(`{"name":"Omelette","ingredients":[]}`)},
		{Collection: storage.Ingredients, ID: "egg", Op: storage.OpDelete},
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("BatchWrite error = %v, want ErrNotFound from the missing delete", err)
	}

	rec, err := a.Get(ctx, storage.Recipes, id)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got := fields(t, rec.Data)["ingredients"].([]any); len(got) != 1 {
		t.Errorf("failed batch partially applied: %s", rec.Data)
	}
}

func testBatchInOrder(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	err := a.BatchWrite(ctx, []storage.Write{
		{Collection: storage.Ingredients, ID: "egg", Op: storage.OpSet, Data: json.RawMessage(`{"name":"Egg","unit":"pcs","market":"A"}`)},
		{Collection: storage.Ingredients, ID: "egg", Op: storage.OpUpdate, Data: json.RawMessage(`{"market":"B"}`)},
		{Collection: storage.Recipes, ID: "r1", Op: storage.OpSet, Data: json.RawMessage(`{"name":"Omelette","ingredients":[]}`)},
		{Collection: storage.Recipes, ID: "r1", Op: storage.OpDelete},
	})
	if err != nil {
		t.Fatalf("BatchWrite failed: %v", err)
	}

	rec, err := a.Get(ctx, storage.Ingredients, "egg")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if fields(t, rec.Data)["market"] != "B" {
		t.Errorf("update within batch not applied: %s", rec.Data)
	}
	if _, err := a.Get(ctx, storage.Recipes, "r1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("delete within batch not applied: %v", err)
	}
}

func testInvalidInput(t *testing.T, a storage.Adapter) {
	ctx := context.Background()

	if _, err := a.Add(ctx, "pantry", json.RawMessage(`{}`)); !errors.Is(err, storage.ErrUnknownCollection) {
		t.Errorf("Add(unknown collection) error = %v", err)
	}
	if _, err := a.Add(ctx, storage.Recipes, json.RawMessage(`[1,2]`)); !errors.Is(err, storage.ErrInvalidDocument) {
		t.Errorf("Add(array) error = %v", err)
	}
	if err := a.Set(ctx, storage.Recipes, "", json.RawMessage(`{}`)); err == nil {
		t.Error("Set with empty id should fail")
	}
	if err := a.BatchWrite(ctx, []storage.Write{{Collection: storage.Recipes, ID: "x", Op: "upsert", Data: json.RawMessage(`{}`)}}); err == nil {
		t.Error("BatchWrite with unknown op should fail")
	}
}

func testSubscribe(t *testing.T, a storage.Adapter) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := a.Add(ctx, storage.Ingredients, json.RawMessage(`{"name":"Egg","unit":"pcs","market":"A"}`)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	ch, err := a.Subscribe(ctx, storage.Ingredients)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	if snap := receive(t, ch); len(snap) != 1 {
		t.Fatalf("initial snapshot has %d records, want 1", len(snap))
	}

	if _, err := a.Add(ctx, storage.Ingredients, json.RawMessage(`{"name":"Milk","unit":"ml","market":"A"}`)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	// A write to another collection must not notify this subscriber
	if _, err := a.Add(ctx, storage.Recipes, json.RawMessage(`{"name":"Soup","ingredients":[]}`)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if snap := receive(t, ch); len(snap) != 2 {
		t.Fatalf("snapshot after Add has %d records, want 2", len(snap))
	}
	select {
	case snap := <-ch:
		t.Fatalf("unexpected extra snapshot with %d records", len(snap))
	default:
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("subscription channel not closed after cancel")
		}
	}
}

func receive(t *testing.T, ch <-chan storage.Snapshot) storage.Snapshot {
	t.Helper()
	select {
	case snap, ok := <-ch:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return nil
}
