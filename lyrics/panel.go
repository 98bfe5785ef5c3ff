// Package lyrics is the transcript panel model: which line is active, which
// are done, where to scroll and what a click on a line does.
package lyrics

import (
	"errors"
	"sync"

	"briefcast/types"
)

// ErrNoSegment is returned when a click does not hit a segment.
var ErrNoSegment = errors.New("no such transcript segment")

// Seeker is the playback surface a click drives.
type Seeker interface {
	Seek(position float64)
	Play()
	State() types.PlaybackState
}

// LineState is how a line is drawn relative to the playhead.
type LineState int

const (
	Upcoming LineState = iota
	Active
	Past
)

func (s LineState) String() string {
	switch s {
	case Active:
		return "active"
	case Past:
		return "past"
	}
	return "upcoming"
}

func (s LineState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Line is one rendered transcript segment.
type Line struct {
	Index int       `json:"index"`
	Start float64   `json:"start"`
	End   float64   `json:"end"`
	Text  string    `json:"text"`
	State LineState `json:"state"`
}

// Panel tracks the active segment for one transcript. Reading it never
// changes playback; only Click does.
type Panel struct {
	seeker Seeker

	mu      sync.Mutex
	trackID string
	segs    types.Transcript
	at      float64
	active  int
	scroll  int
}

func New(seeker Seeker) *Panel {
	return &Panel{seeker: seeker, active: -1, scroll: -1}
}

// SetTranscript binds the panel to a track. The same track id keeps the
// current position; a different one starts over.
func (p *Panel) SetTranscript(trackID string, t types.Transcript) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if trackID == p.trackID && len(t) == len(p.segs) {
		return
	}
	p.trackID = trackID
	p.segs = t.Clone()
	p.at = 0
	p.active = -1
	p.scroll = -1
}

// HasTranscript reports whether there is anything to show; without one the
// caller renders a "syncing" placeholder.
func (p *Panel) HasTranscript() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.segs) > 0
}

// Update moves the playhead. It reports true when the active segment
// changed to a new line and the view should scroll to ScrollTarget.
func (p *Panel) Update(currentTime float64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.at = currentTime
	active := activeIndex(p.segs, currentTime)
	if active == p.active {
		return false
	}
	p.active = active
	if active < 0 {
		return false
	}
	p.scroll = active
	return true
}

// Active returns the active segment index, or -1 between or outside segments.
func (p *Panel) Active() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// ScrollTarget returns the line the view should keep in sight.
func (p *Panel) ScrollTarget() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scroll
}

// Lines returns every segment with its display state.
func (p *Panel) Lines() []Line {
	p.mu.Lock()
	defer p.mu.Unlock()
	lines := make([]Line, len(p.segs))
	for i, s := range p.segs {
		state := Upcoming
		switch {
		case s.Start <= p.at && p.at < s.End:
			state = Active
		case s.End <= p.at:
			state = Past
		}
		lines[i] = Line{Index: i, Start: s.Start, End: s.End, Text: s.Text, State: state}
	}
	return lines
}

// Click seeks to the start of segment i and resumes playback if paused.
func (p *Panel) Click(i int) error {
	p.mu.Lock()
	if i < 0 || i >= len(p.segs) {
		p.mu.Unlock()
		return ErrNoSegment
	}
	start := p.segs[i].Start
	p.mu.Unlock()

	p.seeker.Seek(start)
	if !p.seeker.State().IsPlaying {
		p.seeker.Play()
	}
	return nil
}

func activeIndex(t types.Transcript, at float64) int {
	for i, s := range t {
		if s.Start <= at && at < s.End {
			return i
		}
	}
	return -1
}
