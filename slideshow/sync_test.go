package slideshow

import (
	"testing"

	"briefcast/types"
)

var fedTranscript = types.Transcript{
	{ID: 0, Start: 0, End: 10, Text: "The Federal Reserve raised interest rates by half a point."},
	{ID: 1, Start: 10, End: 20, Text: "Markets reacted calmly."},
}

func TestCurrentSentence(t *testing.T) {
	const first = "The Federal Reserve raised interest rates by half a point."
	const second = "Markets reacted calmly."
	tests := []struct {
		name      string
		at, total float64
		want      string
	}{
		{"start", 0, 20, first},
		{"before start", -3, 20, first},
		{"quarter", 5, 20, first},
		{"three quarters", 15, 20, second},
		{"end", 20, 20, second},
		{"past end", 90, 20, second},
		{"unknown duration uses last segment end", 15, 0, second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CurrentSentence(fedTranscript, tt.at, tt.total)
			if !ok || got != tt.want {
				t.Fatalf("CurrentSentence(%v/%v) = %q, %v; want %q", tt.at, tt.total, got, ok, tt.want)
			}
		})
	}

	if _, ok := CurrentSentence(nil, 1, 10); ok {
		t.Fatal("empty transcript should report no sentence")
	}
}

func TestActiveSegment(t *testing.T) {
	tests := []struct {
		at   float64
		want int
	}{
		{-1, -1},
		{0, 0},
		{9.99, 0},
		{10, 1},
		{19.5, 1},
		{20, -1},
	}
	for _, tt := range tests {
		if got := ActiveSegment(fedTranscript, tt.at); got != tt.want {
			t.Errorf("ActiveSegment(%v) = %d, want %d", tt.at, got, tt.want)
		}
	}
}
