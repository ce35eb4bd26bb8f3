package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BindStyle is the placeholder syntax of a SQL driver.
type BindStyle int

const (
	BindQuestion BindStyle = iota // ?
	BindDollar                    // $1
)

// DocumentTable implements the document operations of Adapter on the
// documents table shared by the SQL backends. Embed it and call Attach once
// the database is open.
type DocumentTable struct {
	db   *sql.DB
	bind BindStyle
	hub  *Hub
}

func NewDocumentTable(bind BindStyle) DocumentTable {
	return DocumentTable{bind: bind, hub: NewHub()}
}

// Attach sets the database the table operates on.
func (t *DocumentTable) Attach(db *sql.DB) {
	t.db = db
}

// Detach closes all subscriptions.
func (t *DocumentTable) Detach() {
	t.hub.Close()
	t.db = nil
}

func (t *DocumentTable) rebind(query string) string {
	if t.bind != BindDollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (t *DocumentTable) ready(coll Collection) error {
	if !coll.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownCollection, coll)
	}
	if t.db == nil {
		return ErrNotInitialized
	}
	return nil
}

func (t *DocumentTable) list(ctx context.Context, q querier, coll Collection) (Snapshot, error) {
	rows, err := q.QueryContext(ctx, t.rebind(`
		SELECT id, data FROM documents
		WHERE collection = ?
		ORDER BY seq`), string(coll))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", coll, err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", coll, err)
		}
		snap = append(snap, Record{ID: id, Data: json.RawMessage(data)})
	}
	return snap, rows.Err()
}

func (t *DocumentTable) get(ctx context.Context, q querier, coll Collection, id string) (Record, error) {
	var data string
	err := q.QueryRowContext(ctx, t.rebind(`
		SELECT data FROM documents
		WHERE collection = ? AND id = ?`), string(coll), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, fmt.Errorf("%s/%s: %w", coll, id, ErrNotFound)
	}
	if err != nil {
		return Record{}, fmt.Errorf("failed to get %s/%s: %w", coll, id, err)
	}
	return Record{ID: id, Data: json.RawMessage(data)}, nil
}

func (t *DocumentTable) List(ctx context.Context, coll Collection) (Snapshot, error) {
	if err := t.ready(coll); err != nil {
		return nil, err
	}
	return t.list(ctx, t.db, coll)
}

func (t *DocumentTable) Get(ctx context.Context, coll Collection, id string) (Record, error) {
	if err := t.ready(coll); err != nil {
		return Record{}, err
	}
	return t.get(ctx, t.db, coll, id)
}

func (t *DocumentTable) Subscribe(ctx context.Context, coll Collection) (<-chan Snapshot, error) {
	snap, err := t.List(ctx, coll)
	if err != nil {
		return nil, err
	}
	return t.hub.Subscribe(ctx, coll, snap), nil
}

func (t *DocumentTable) Add(ctx context.Context, coll Collection, data json.RawMessage) (string, error) {
	if err := t.ready(coll); err != nil {
		return "", err
	}
	if !IsObject(data) {
		return "", fmt.Errorf("%s: %w", coll, ErrInvalidDocument)
	}

	id := NewID()
	if err := t.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpSet, Data: data}}); err != nil {
		return "", err
	}
	return id, nil
}

func (t *DocumentTable) Set(ctx context.Context, coll Collection, id string, data json.RawMessage) error {
	return t.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpSet, Data: data}})
}

func (t *DocumentTable) Update(ctx context.Context, coll Collection, id string, partial json.RawMessage) error {
	return t.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpUpdate, Data: partial}})
}

func (t *DocumentTable) Remove(ctx context.Context, coll Collection, id string) error {
	return t.BatchWrite(ctx, []Write{{Collection: coll, ID: id, Op: OpDelete}})
}

// BatchWrite applies the writes in one transaction.
func (t *DocumentTable) BatchWrite(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		if err := w.Validate(); err != nil {
			return err
		}
	}
	if t.db == nil {
		return ErrNotInitialized
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	touched := make(map[Collection]bool)
	for _, w := range writes {
		if err := t.apply(ctx, tx, w, now); err != nil {
			_ = tx.Rollback()
			return err
		}
		touched[w.Collection] = true
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	t.publish(ctx, touched)
	return nil
}

func (t *DocumentTable) apply(ctx context.Context, tx *sql.Tx, w Write, now string) error {
	switch w.Op {
	case OpSet:
		_, err := tx.ExecContext(ctx, t.rebind(`
			INSERT INTO documents (collection, id, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (collection, id) DO UPDATE SET
				data = excluded.data,
				updated_at = excluded.updated_at`),
			string(w.Collection), w.ID, string(w.Data), now, now)
		if err != nil {
			return fmt.Errorf("failed to set %s/%s: %w", w.Collection, w.ID, err)
		}

	case OpUpdate:
		current, err := t.get(ctx, tx, w.Collection, w.ID)
		if err != nil {
			return err
		}
		merged, err := MergeFields(current.Data, w.Data)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, err)
		}
		_, err = tx.ExecContext(ctx, t.rebind(`
			UPDATE documents SET data = ?, updated_at = ?
			WHERE collection = ? AND id = ?`),
			string(merged), now, string(w.Collection), w.ID)
		if err != nil {
			return fmt.Errorf("failed to update %s/%s: %w", w.Collection, w.ID, err)
		}

	case OpDelete:
		result, err := tx.ExecContext(ctx, t.rebind(`
			DELETE FROM documents
			WHERE collection = ? AND id = ?`),
			string(w.Collection), w.ID)
		if err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", w.Collection, w.ID, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete %s/%s: %w", w.Collection, w.ID, err)
		}
		if affected == 0 {
			return fmt.Errorf("%s/%s: %w", w.Collection, w.ID, ErrNotFound)
		}
	}
	return nil
}

// publish pushes fresh snapshots of the touched collections. A failed read
// only skips the notification; the write already committed.
func (t *DocumentTable) publish(ctx context.Context, touched map[Collection]bool) {
	for _, c := range Collections {
		if !touched[c] || !t.hub.HasSubscribers(c) {
			continue
		}
		snap, err := t.list(ctx, t.db, c)
		if err != nil {
			continue
		}
		t.hub.Publish(c, snap)
	}
}

// DB returns the attached database, or nil before Init or Load.
func (t *DocumentTable) DB() *sql.DB {
	return t.db
}
