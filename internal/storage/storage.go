package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type Collection string

const (
	Ingredients  Collection = "ingredients"
	Recipes      Collection = "recipes"
	Schedule     Collection = "schedule"
	ShoppingList Collection = "shopping-list"
)

// Collections lists every collection the planner stores.
var Collections = []Collection{Ingredients, Recipes, Schedule, ShoppingList}

func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}

var (
	ErrNotFound          = errors.New("document not found")
	ErrNotInitialized    = errors.New("storage not initialized, run 'mealplan init' first")
	ErrUnknownCollection = errors.New("unknown collection")
	ErrInvalidDocument   = errors.New("document must be a JSON object")
)

// Record is one stored document.
type Record struct {
	ID   string          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Snapshot is the full content of a collection in creation order.
type Snapshot []Record

// Clone copies the snapshot including document bytes.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for i, r := range s {
		out[i] = Record{ID: r.ID, Data: append(json.RawMessage(nil), r.Data...)}
	}
	return out
}

type Op string

const (
	OpSet    Op = "set"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Write is one operation of a batch. Data is ignored for OpDelete and holds
// the fields to merge for OpUpdate.
type Write struct {
	Collection Collection
	ID         string
	Op         Op
	Data       json.RawMessage
}

// Validate checks the shape of a write before it is applied.
func (w Write) Validate() error {
	if !w.Collection.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, w.Collection)
	}
	if w.ID == "" {
		return fmt.Errorf("%s: document id cannot be empty", w.Collection)
	}
	switch w.Op {
	case OpSet, OpUpdate:
		if !IsObject(w.Data) {
			return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrInvalidDocument)
		}
	case OpDelete:
	default:
		return fmt.Errorf("%s/%s: unknown operation %q", w.Collection, w.ID, w.Op)
	}
	return nil
}

// NewID returns a fresh document id.
func NewID() string {
	return uuid.NewString()
}

// IsObject reports whether data is a well-formed JSON object.
func IsObject(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed)
}

// MergeFields overlays the top-level fields of partial onto doc. Nested
// values are replaced, not merged.
func MergeFields(doc, partial json.RawMessage) (json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(doc, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode stored document: %w", err)
	}
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(partial, &patch); err != nil {
		return nil, fmt.Errorf("failed to decode update: %w", err)
	}
	for k, v := range patch {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to encode merged document: %w", err)
	}
	return merged, nil
}
