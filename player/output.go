package player

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"sync"
)

// Output is the physical audio device. Start begins audible playback of src
// at position (seconds); an error means playback was refused.
type Output interface {
	Start(src string, position, rate, volume float64) error
	Stop() error
}

// SilentOutput plays nothing. Position still advances on the engine clock,
// which is all headless runs and tests need.
type SilentOutput struct{}

func (SilentOutput) Start(string, float64, float64, float64) error { return nil }
func (SilentOutput) Stop() error                                    { return nil }

// FFPlayOutput plays through an ffplay child process. Pausing stops the
// process; resuming starts a new one at the saved position.
type FFPlayOutput struct {
	Binary string

	mu  sync.Mutex
	cmd *exec.Cmd
}

// NewFFPlayOutput looks for ffplay on PATH.
func NewFFPlayOutput() *FFPlayOutput {
	return &FFPlayOutput{Binary: "ffplay"}
}

func (o *FFPlayOutput) Start(src string, position, rate, volume float64) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stopLocked()

	bin, err := exec.LookPath(o.Binary)
	if err != nil {
		return fmt.Errorf("audio output unavailable: %w", err)
	}
	cmd := exec.Command(bin, ffplayArgs(src, position, rate, volume)...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}
	o.cmd = cmd
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("ffplay exited: %v", err)
		}
	}()
	return nil
}

func (o *FFPlayOutput) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.stopLocked()
}

func (o *FFPlayOutput) stopLocked() error {
	if o.cmd == nil || o.cmd.Process == nil {
		return nil
	}
	err := o.cmd.Process.Kill()
	o.cmd = nil
	return err
}

func ffplayArgs(src string, position, rate, volume float64) []string {
	args := []string{
		"-nodisp", "-autoexit", "-loglevel", "quiet",
		"-ss", strconv.FormatFloat(position, 'f', 3, 64),
		"-volume", strconv.Itoa(int(volume*100 + 0.5)),
	}
	if rate != 1 {
		args = append(args, "-af", "atempo="+strconv.FormatFloat(rate, 'f', -1, 64))
	}
	return append(args, src)
}
