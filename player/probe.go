package player

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// Prober discovers the duration of a media locator.
type Prober interface {
	Duration(ctx context.Context, src string) (float64, error)
}

// FFProbe reads the container duration with ffprobe.
type FFProbe struct{}

func (FFProbe) Duration(ctx context.Context, src string) (float64, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := ffmpeg.Probe(src)
		done <- result{out, err}
	}()

	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case r := <-done:
		if r.err != nil {
			return 0, fmt.Errorf("ffprobe %s: %w", src, r.err)
		}
		return parseProbeDuration(r.out)
	}
}

func parseProbeDuration(out string) (float64, error) {
	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	return d, nil
}
