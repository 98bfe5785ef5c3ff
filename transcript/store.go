package transcript

import (
	_ "embed"
	"fmt"
	"os"

	"briefcast/types"

	"gopkg.in/yaml.v3"
)

//go:embed data/transcripts.yaml
var builtinTable []byte

type tableFile struct {
	Transcripts []struct {
		Title    string          `yaml:"title"`
		Segments []types.Segment `yaml:"segments"`
	} `yaml:"transcripts"`
}

// Store is the static title → transcript table. It is never mutated after load.
type Store struct {
	byTitle map[string]types.Transcript
	titles  []string
}

// Builtin loads the table compiled into the binary.
func Builtin() (*Store, error) {
	return Parse(builtinTable)
}

// LoadFile loads a YAML table from disk.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript table: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML transcript table.
func Parse(data []byte) (*Store, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode transcript table: %w", err)
	}

	s := &Store{byTitle: make(map[string]types.Transcript, len(file.Transcripts))}
	for _, entry := range file.Transcripts {
		if entry.Title == "" {
			return nil, fmt.Errorf("transcript entry without title")
		}
		if _, dup := s.byTitle[entry.Title]; dup {
			return nil, fmt.Errorf("duplicate transcript title %q", entry.Title)
		}
		segs := make(types.Transcript, len(entry.Segments))
		for i, seg := range entry.Segments {
			seg.ID = i
			segs[i] = seg
		}
		if err := Validate(segs); err != nil {
			return nil, fmt.Errorf("transcript %q: %w", entry.Title, err)
		}
		s.byTitle[entry.Title] = segs
		s.titles = append(s.titles, entry.Title)
	}
	return s, nil
}

// Validate checks end > start, ordering by start, and no overlap.
func Validate(t types.Transcript) error {
	for i, seg := range t {
		if seg.End <= seg.Start {
			return fmt.Errorf("segment %d: end %.2f not after start %.2f", i, seg.End, seg.Start)
		}
		if i > 0 && seg.Start < t[i-1].End {
			return fmt.Errorf("segment %d overlaps or precedes segment %d", i, i-1)
		}
	}
	return nil
}

// GetTranscriptForTrack returns the transcript for a briefing title. The
// result is a fresh copy, identical on every call.
func (s *Store) GetTranscriptForTrack(title string) (types.Transcript, bool) {
	t, ok := s.byTitle[title]
	if !ok {
		return nil, false
	}
	return t.Clone(), true
}

// Titles lists the table in file order.
func (s *Store) Titles() []string {
	return append([]string(nil), s.titles...)
}
