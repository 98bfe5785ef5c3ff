package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"briefcast/types"
)

// LogEntry is one line of the coordinator's activity log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Snapshot is a consistent copy of coordinator state for rendering.
// Version increases with every published change.
type Snapshot struct {
	Version       uint64                 `json:"version"`
	User          string                 `json:"user,omitempty"`
	Current       *types.Track           `json:"current,omitempty"`
	IsPlaying     bool                   `json:"is_playing"`
	Playlist      []types.PlaylistItem   `json:"playlist"`
	HasNext       bool                   `json:"has_next"`
	HasPrevious   bool                   `json:"has_previous"`
	Generating    *types.GenerationState `json:"generating,omitempty"`
	CachedIDs     []string               `json:"cached_ids"`
	Notifications []types.Notification   `json:"notifications"`
	Logs          []LogEntry             `json:"logs"`
}

// Snapshot returns the current state (thread-safe).
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Coordinator) snapshotLocked() Snapshot {
	s := Snapshot{
		Version:       c.version,
		User:          c.user,
		IsPlaying:     c.isPlaying,
		Playlist:      append([]types.PlaylistItem{}, c.playlist...),
		CachedIDs:     c.cachedIDsLocked(),
		Notifications: append([]types.Notification{}, c.notes...),
		Logs:          append([]LogEntry{}, c.logs...),
	}
	if c.current != nil {
		t := *c.current
		s.Current = &t
	}
	if c.gen != nil {
		g := c.gen.state
		s.Generating = &g
	}
	i := c.indexLocked()
	s.HasNext = i >= 0 && i < len(c.playlist)-1
	s.HasPrevious = i > 0
	return s
}

// Subscribe registers fn for every state change until unsubscribe is called.
func (c *Coordinator) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return c.subs.add(fn)
}

func (c *Coordinator) publish() {
	if c.subs.empty() {
		return
	}
	c.subs.emit(c.nextSnapshot())
}

func (c *Coordinator) nextSnapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
	return c.snapshotLocked()
}

// publishGeneration shows a finished generation at 100% to observers even
// though it is no longer in flight.
func (c *Coordinator) publishGeneration(done types.GenerationState) {
	if c.subs.empty() {
		return
	}
	s := c.nextSnapshot()
	s.Generating = &done
	c.subs.emit(s)
}

// Notifications returns the undismissed user-visible messages, oldest first.
func (c *Coordinator) Notifications() []types.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]types.Notification{}, c.notes...)
}

// Dismiss removes a notification by id.
func (c *Coordinator) Dismiss(id string) bool {
	c.mu.Lock()
	found := false
	for i, n := range c.notes {
		if n.ID == id {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			found = true
			break
		}
	}
	c.mu.Unlock()
	if found {
		c.publish()
	}
	return found
}

// Notify raises a user-visible message from outside the coordinator, e.g. a
// failed bookmark update.
func (c *Coordinator) Notify(level types.NotificationLevel, message string) {
	c.mu.Lock()
	c.notifyLocked(level, message)
	c.mu.Unlock()
	c.publish()
}

const maxNotifications = 20

func (c *Coordinator) notifyLocked(level types.NotificationLevel, message string) {
	c.notes = append(c.notes, types.Notification{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      c.clock.Now(),
	})
	if len(c.notes) > maxNotifications {
		c.notes = c.notes[len(c.notes)-maxNotifications:]
	}
}

// addLogLocked appends to the activity log ring buffer (must hold lock)
func (c *Coordinator) addLogLocked(message string) {
	c.logs = append(c.logs, LogEntry{Timestamp: c.clock.Now(), Message: message})
	if len(c.logs) > c.maxLogs {
		c.logs = c.logs[len(c.logs)-c.maxLogs:]
	}
}

type listeners struct {
	mu        sync.RWMutex
	next      int
	delivered uint64
	fns       map[int]func(Snapshot)
}

func (l *listeners) add(fn func(Snapshot)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Snapshot))
	}
	id := l.next
	l.next++
	l.fns[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.fns, id)
			l.mu.Unlock()
		})
	}
}

func (l *listeners) empty() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fns) == 0
}

// emit delivers s unless a newer snapshot already went out, so observers
// never see state move backwards.
func (l *listeners) emit(s Snapshot) {
	l.mu.Lock()
	if s.Version <= l.delivered {
		l.mu.Unlock()
		return
	}
	l.delivered = s.Version
	fns := make([]func(Snapshot), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}
