package session

import (
	"sync"
	"time"

	"github.com/example/verbadiem/pkg/models"
)

// NotificationTTL is how long a notification stays visible
const NotificationTTL = 3 * time.Second

// NotificationQueue holds the visible notifications of a session. Every
// notification gets a unique id and expires after the queue's ttl.
type NotificationQueue struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	lastID int64
	items  []models.Notification
	timers map[int64]*time.Timer
	closed bool
}

// NewNotificationQueue creates a queue; now defaults to time.Now
func NewNotificationQueue(ttl time.Duration, now func() time.Time) *NotificationQueue {
	if ttl <= 0 {
		ttl = NotificationTTL
	}
	if now == nil {
		now = time.Now
	}
	return &NotificationQueue{
		ttl:    ttl,
		now:    now,
		timers: make(map[int64]*time.Timer),
	}
}

// Push assigns an id and expiry to n and queues it
func (q *NotificationQueue) Push(n models.Notification) models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	id := now.UnixNano()
	if id <= q.lastID {
		id = q.lastID + 1
	}
	q.lastID = id

	n.ID = id
	n.ExpiresAt = now.Add(q.ttl)
	q.items = append(q.items, n)

	if !q.closed {
		q.timers[id] = time.AfterFunc(q.ttl, func() { q.Dismiss(id) })
	}
	return n
}

// Active returns the notifications that have not expired yet
func (q *NotificationQueue) Active() []models.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	active := make([]models.Notification, 0, len(q.items))
	for _, n := range q.items {
		if now.Before(n.ExpiresAt) {
			active = append(active, n)
		}
	}
	return active
}

// Dismiss removes a notification before it expires
func (q *NotificationQueue) Dismiss(id int64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if timer, ok := q.timers[id]; ok {
		timer.Stop()
		delete(q.timers, id)
	}
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}

// Close stops pending expiry timers and clears the queue
func (q *NotificationQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.items = nil
	q.closed = true
}
