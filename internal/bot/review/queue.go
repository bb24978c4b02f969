package review

import (
	"sort"
	"sync"
	"time"
)

// Queue is the in-memory review table, keyed by order id. All access goes
// through the mutex: HTTP handlers, Telegram callbacks and the retention
// sweeper all touch it from their own goroutines.
type Queue struct {
	mu      sync.RWMutex
	entries map[string]*Entry
}

func NewQueue() *Queue {
	return &Queue{entries: make(map[string]*Entry)}
}

// Get returns a copy of the entry, so callers cannot mutate the table without
// going back through the queue.
func (q *Queue) Get(orderID string) (Entry, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	e, ok := q.entries[orderID]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Put stores the entry as given, replacing any previous one.
func (q *Queue) Put(e Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e.Notified == nil {
		e.Notified = make(map[Stage]bool)
	}
	q.entries[e.OrderID] = &e
}

// Upsert refreshes the entry from a notification, creating it in pending state
// when absent. It returns the resulting entry and whether the given stage had
// already produced a prompt.
func (q *Queue) Upsert(n Notification, now time.Time) (Entry, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[n.OrderID]
	if !ok {
		e = &Entry{
			OrderID:   n.OrderID,
			Status:    StatusPending,
			Notified:  make(map[Stage]bool),
			CreatedAt: now,
		}
		q.entries[n.OrderID] = e
	}

	e.Email = n.Email
	e.Items = n.Items
	e.Amount = n.Amount
	if n.Code != "" {
		e.Code = n.Code
	}
	e.UpdatedAt = now

	return *e, e.Notified[n.Stage]
}

// MarkNotified records that a prompt went out for the stage and remembers the
// Telegram message id for later editing.
func (q *Queue) MarkNotified(orderID string, stage Stage, messageID int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[orderID]
	if !ok {
		return
	}
	e.Notified[stage] = true
	e.MessageID = messageID
}

// SetStatus moves a pending entry to approved or rejected. Decided entries
// never change again.
func (q *Queue) SetStatus(orderID string, status Status, comment string, now time.Time) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	e, ok := q.entries[orderID]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	if e.Status != StatusPending {
		return *e, ErrAlreadyDecided
	}

	e.Status = status
	if comment != "" {
		e.AdminComment = comment
	}
	e.UpdatedAt = now

	return *e, nil
}

// List returns all entries, newest first.
func (q *Queue) List() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	entries := make([]Entry, 0, len(q.entries))
	for _, e := range q.entries {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}

// Counts returns the number of entries per status.
func (q *Queue) Counts() map[Status]int {
	q.mu.RLock()
	defer q.mu.RUnlock()

	counts := make(map[Status]int)
	for _, e := range q.entries {
		counts[e.Status]++
	}
	return counts
}

// Sweep drops every entry created before the retention cutoff, regardless of
// its status, and returns how many were removed. This is a hard cutoff that
// bounds memory growth, not a soft eviction.
func (q *Queue) Sweep(maxAge time.Duration) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, e := range q.entries {
		if e.CreatedAt.Before(cutoff) {
			delete(q.entries, id)
			removed++
		}
	}
	return removed
}
