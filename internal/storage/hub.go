package storage

import (
	"context"
	"sync"
)

// Hub fans out collection snapshots to subscribers. Each subscriber channel
// buffers one snapshot; a newer snapshot replaces an undelivered one, so a
// slow reader never blocks a writer.
type Hub struct {
	mu     sync.Mutex
	subs   map[Collection]map[chan Snapshot]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Collection]map[chan Snapshot]struct{})}
}

// Subscribe registers a subscriber primed with the initial snapshot. The
// channel is closed when ctx is done or the hub is closed.
func (h *Hub) Subscribe(ctx context.Context, coll Collection, initial Snapshot) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	ch <- initial

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch
	}
	if h.subs[coll] == nil {
		h.subs[coll] = make(map[chan Snapshot]struct{})
	}
	h.subs[coll][ch] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(coll, ch)
	}()

	return ch
}

func (h *Hub) remove(coll Collection, ch chan Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[coll][ch]; !ok {
		return
	}
	delete(h.subs[coll], ch)
	close(ch)
}

// HasSubscribers reports whether anyone listens to coll.
func (h *Hub) HasSubscribers(coll Collection) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[coll]) > 0
}

// Publish delivers snap to every subscriber of coll without blocking.
func (h *Hub) Publish(coll Collection, snap Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[coll] {
		select {
		case ch <- snap.Clone():
			continue
		default:
		}
		// Drop the stale snapshot and retry; only Publish sends, under mu.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap.Clone():
		default:
		}
	}
}

// Close closes every subscriber channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for coll, chans := range h.subs {
		for ch := range chans {
			close(ch)
		}
		delete(h.subs, coll)
	}
}
