package types

// Segment is an immutable, timed span of transcript text.
type Segment struct {
	ID    int     `json:"id" yaml:"id"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
	Text  string  `json:"text" yaml:"text"`
}

// Transcript is an ordered, non-overlapping sequence of segments.
type Transcript []Segment

// Clone returns a copy that callers may keep without sharing backing storage.
func (t Transcript) Clone() Transcript {
	if t == nil {
		return nil
	}
	out := make(Transcript, len(t))
	copy(out, t)
	return out
}

// Text concatenates all segment texts separated by single spaces.
func (t Transcript) Text() string {
	n := 0
	for _, s := range t {
		n += len(s.Text) + 1
	}
	b := make([]byte, 0, n)
	for i, s := range t {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, s.Text...)
	}
	return string(b)
}
