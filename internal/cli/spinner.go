package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// spinnerFrames is the braille animation cycle.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner is the progress line shown while a solve or render runs. Branch
// and bound can take a while on larger models, so once a couple of seconds
// have passed the line also shows the elapsed time.
type spinner struct {
	message string
	out     io.Writer
	started time.Time

	ctx    context.Context
	cancel context.CancelFunc
	stop   sync.Once
	done   chan struct{}
	ended  chan struct{}
}

// newSpinner creates a spinner that runs until stopped.
func newSpinner(message string) *spinner {
	return newSpinnerWithContext(context.Background(), message)
}

// newSpinnerWithContext creates a spinner that also erases itself when the
// context is cancelled, so an interrupted solve leaves a clean line behind.
func newSpinnerWithContext(ctx context.Context, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	return &spinner{
		message: message,
		out:     os.Stderr,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		ended:   make(chan struct{}),
	}
}

// Start begins the animation.
func (s *spinner) Start() {
	s.started = time.Now()
	go s.loop()
}

func (s *spinner) loop() {
	defer close(s.ended)
	ticker := time.NewTicker(120 * time.Millisecond)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.ctx.Done():
			s.erase()
			return
		case <-s.done:
			return
		case <-ticker.C:
			s.render(spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}

func (s *spinner) render(frame string) {
	line := s.message
	if elapsed := time.Since(s.started); elapsed >= 2*time.Second {
		line = fmt.Sprintf("%s (%s)", s.message, elapsed.Round(time.Second))
	}
	fmt.Fprintf(s.out, "\r\033[K%s %s", styleIconSpinner.Render(frame), StyleDim.Render(line))
}

func (s *spinner) erase() {
	fmt.Fprint(s.out, "\r\033[K")
}

// Stop ends the animation and erases the line. Safe to call repeatedly,
// but only after Start.
func (s *spinner) Stop() {
	s.stop.Do(func() { close(s.done) })
	s.cancel()
	<-s.ended
	s.erase()
}

// StopWithSuccess stops the spinner and prints a success line in its place.
func (s *spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s", message)
}

// StopWithError stops the spinner and prints an error line in its place.
func (s *spinner) StopWithError(message string) {
	s.Stop()
	printError("%s", message)
}

// Cancelled reports whether the surrounding context ended. Stop also
// cancels the internal context, so the answer is only meaningful before
// Stop is called.
func (s *spinner) Cancelled() bool {
	return s.ctx.Err() != nil
}
