package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/julianstephens/mealplan/internal/constants"
)

type jsonFile struct {
	Version     int                     `json:"version"`
	Collections map[Collection][]Record `json:"collections"`
}

// JSONStore keeps every collection in a single JSON file. With an empty path
// it lives in memory only.
type JSONStore struct {
	mu    sync.Mutex
	path  string
	colls map[Collection][]Record
	hub   *Hub
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
		hub:  NewHub(),
	}
}

// NewMemoryStore returns a ready-to-use store that never touches disk.
func NewMemoryStore() *JSONStore {
	s := NewJSONStore("")
	s.colls = emptyCollections()
	return s
}

func emptyCollections() map[Collection][]Record {
	colls := make(map[Collection][]Record, len(Collections))
	for _, c := range Collections {
		colls[c] = []Record{}
	}
	return colls
}

func (s *JSONStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.colls == nil {
			s.colls = emptyCollections()
		}
		return nil
	}

	// Create config directory if it doesn't exist
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Check if file already exists
	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	colls := emptyCollections()
	if err := s.save(colls); err != nil {
		return err
	}
	s.colls = colls
	return nil
}

func (s *JSONStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		if s.colls == nil {
			s.colls = emptyCollections()
		}
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var file jsonFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	if file.Version > constants.StoreFileVersion {
		return fmt.Errorf("storage file version (%d) is newer than supported version (%d) - please upgrade the application", file.Version, constants.StoreFileVersion)
	}

	// Ensure every collection exists
	colls := emptyCollections()
	for c, records := range file.Collections {
		if !c.Valid() {
			continue
		}
		colls[c] = records
	}
	s.colls = colls
	return nil
}

func (s *JSONStore) Close() error {
	s.hub.Close()
	return nil
}

func (s *JSONStore) save(colls map[Collection][]Record) error {
	if s.path == "" {
		return nil
	}

	data, err := json.MarshalIndent(jsonFile{Version: constants.StoreFileVersion, Collections: colls}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	// Write to a temp file first so a failed write never truncates the store
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}

	return nil
}

func (s *JSONStore) List(ctx context.Context, coll Collection) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(coll); err != nil {
		return nil, err
	}
	return Snapshot(s.colls[coll]).Clone(), nil
}

func (s *JSONStore) Get(ctx context.Context, coll Collection, id string) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(coll); err != nil {
		return Record{}, err
	}
	i := indexOf(s.colls[coll], id)
	if i < 0 {
		return Record{}, fmt.Errorf("%s/%s: %w", coll, id, ErrNotFound)
	}
	r := s.colls[coll][i]
	return Record{ID: r.ID, Data: append(json.RawMessage(nil), r.Data...)}, nil
}

func (s *JSONStore) Subscribe(ctx context.Context, coll Collection) (<-chan Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(coll); err != nil {
		return nil, err
	}
	return s.hub.Subscribe(ctx, coll, Snapshot(s.colls[coll]).Clone()), nil
}

func (s *JSONStore) Add(ctx context.Context, coll Collection, data json.RawMessage) (string, error) {
	if !coll.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	if !IsObject(data) {
		return "", fmt.Errorf("%s: %w", coll, ErrInvalidDocument)
	}

	id := NewID()
	// Set on a fresh uuid always appends.
	if err := s.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpSet, Data: data}}); err != nil {
		return "", err
	}
	return id, nil
}

func (s *JSONStore) Set(ctx context.Context, coll Collection, id string, data json.RawMessage) error {
	return s.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpSet, Data: data}})
}

func (s *JSONStore) Update(ctx context.Context, coll Collection, id string, partial json.RawMessage) error {
	return s.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpUpdate, Data: partial}})
}

func (s *JSONStore) Remove(ctx context.Context, coll Collection, id string) error {
	return s.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpDelete}})
}

// BatchWrite applies the writes to a copy of the collections and swaps it in
// only after every write succeeded and the file was saved.
func (s *JSONStore) BatchWrite(ctx context.Context, writes []Write) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.colls == nil {
		return ErrNotInitialized
	}

	next := make(map[Collection][]Record, len(s.colls))
	for c, records := range s.colls {
		next[c] = records
	}
	touched := make(map[Collection]bool)

	for _, w := range writes {
		if !touched[w.Collection] {
			// Copy on first change so a failed batch leaves s.colls intact
			next[w.Collection] = append([]Record(nil), next[w.Collection]...)
			touched[w.Collection] = true
		}
		records, err := applyWrite(next[w.Collection], w)
		if err != nil {
			return err
		}
		next[w.Collection] = records
	}

	if err := s.save(next); err != nil {
		return err
	}
	s.colls = next

	for _, c := range Collections {
		if touched[c] {
			s.hub.Publish(c, Snapshot(next[c]))
		}
	}
	return nil
}

func applyWrite(records []Record, w Write) ([]Record, error) {
	i := indexOf(records, w.ID)
	switch w.Op {
	case OpSet:
		data := append(json.RawMessage(nil), w.Data...)
		if i < 0 {
			return append(records, Record{ID: w.ID, Data: data}), nil
		}
		records[i] = Record{ID: w.ID, Data: data}
	case OpUpdate:
		if i < 0 {
			return nil, fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrNotFound)
		}
		merged, err := MergeFields(records[i].Data, w.Data)
		if err != nil {
			return nil, fmt.Errorf("%s/%s: %w", w.Collection, w.ID, err)
		}
		records[i] = Record{ID: w.ID, Data: merged}
	case OpDelete:
		if i < 0 {
			return nil, fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrNotFound)
		}
		records = append(records[:i:i], records[i+1:]...)
	}
	return records, nil
}

func (s *JSONStore) check(coll Collection) error {
	if !coll.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	if s.colls == nil {
		return ErrNotInitialized
	}
	return nil
}

func indexOf(records []Record, id string) int {
	for i, r := range records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// GetConfigPath returns the path to the underlying storage file, or an empty
// string for a memory store.
//
// Running multiple mealplan processes that share the same file at the same
// time is not supported.
func (s *JSONStore) GetConfigPath() string {
	return s.path
}
