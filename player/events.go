package player

import (
	"sync"

	"briefcast/types"
)

// EventType names what happened on the engine.
type EventType int

const (
	EventStateChanged EventType = iota
	EventTimeUpdate
	EventDurationKnown
	EventEnded
)

func (t EventType) String() string {
	switch t {
	case EventStateChanged:
		return "state_changed"
	case EventTimeUpdate:
		return "time_update"
	case EventDurationKnown:
		return "duration_known"
	case EventEnded:
		return "ended"
	}
	return "unknown"
}

// Event carries the engine state as of the moment it was emitted.
type Event struct {
	Type  EventType
	Track types.Track
	State types.PlaybackState
}

type listeners struct {
	mu   sync.RWMutex
	next int
	fns  map[int]func(Event)
}

func (l *listeners) add(fn func(Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Event))
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

func (l *listeners) emit(events []Event) {
	if len(events) == 0 {
		return
	}
	l.mu.RLock()
	fns := make([]func(Event), 0, len(l.fns))
	for i := 0; i < l.next; i++ {
		if fn, ok := l.fns[i]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.RUnlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}
