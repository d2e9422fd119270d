package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerRendersMessage(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Solving model.toml...")
	s.out = &buf

	s.Start()
	time.Sleep(300 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Solving model.toml...") {
		t.Errorf("spinner output %q does not show the message", out)
	}
	if !strings.HasSuffix(out, "\r\033[K") {
		t.Errorf("spinner output %q does not end with an erased line", out)
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, "Solving...")
	s.out = &buf
	s.Start()

	cancel()
	<-s.ended

	if !s.Cancelled() {
		t.Error("Cancelled() = false after context cancellation")
	}
}

func TestSpinnerTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	s := newSpinnerWithContext(ctx, "Solving...")
	s.out = &buf
	s.Start()

	<-s.ended
	if !s.Cancelled() {
		t.Error("Cancelled() = false after context timeout")
	}
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner("Solving...")
	s.out = &buf
	s.Start()

	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithOutcome(t *testing.T) {
	for _, stop := range []func(*spinner){
		func(s *spinner) { s.StopWithSuccess("Solved") },
		func(s *spinner) { s.StopWithError("Solve failed") },
	} {
		var buf bytes.Buffer
		s := newSpinner("Solving...")
		s.out = &buf
		s.Start()
		stop(s)
	}
}
