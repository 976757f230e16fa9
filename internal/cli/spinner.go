package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var spinnerFrames = []rune("⠋⠙⠹⠸⠼⠴⠦⠧⠇⠏")

const spinnerInterval = 80 * time.Millisecond

// spinner animates a message on one terminal line until stopped or until
// the context it was started with ends.
type spinner struct {
	out     io.Writer
	message string
	cancel  context.CancelFunc
	done    chan struct{}
	stop    sync.Once
}

// startSpinner draws message on stderr.
func startSpinner(ctx context.Context, message string) *spinner {
	return startSpinnerTo(ctx, os.Stderr, message)
}

func startSpinnerTo(ctx context.Context, out io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{out: out, message: message, cancel: cancel, done: make(chan struct{})}
	go s.run(ctx)
	return s
}

func (s *spinner) run(ctx context.Context) {
	defer close(s.done)
	tick := time.NewTicker(spinnerInterval)
	defer tick.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-ctx.Done():
			fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", len(s.message)+4))
			return
		case <-tick.C:
			icon := styleIconSpinner.Render(string(spinnerFrames[frame%len(spinnerFrames)]))
			fmt.Fprintf(s.out, "\r%s %s", icon, StyleDim.Render(s.message))
		}
	}
}

// Stop clears the line. Only the first call has an effect.
func (s *spinner) Stop() {
	s.stop.Do(func() {
		s.cancel()
		<-s.done
	})
}

// Fail stops the spinner and prints message as an error.
func (s *spinner) Fail(message string) {
	s.Stop()
	printError("%s", message)
}
