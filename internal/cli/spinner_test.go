package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestSpinnerDrawsAndClears(t *testing.T) {
	var buf bytes.Buffer
	s := startSpinnerTo(context.Background(), &buf, "Computing radial layout...")
	time.Sleep(4 * spinnerInterval)
	s.Stop()
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "Computing radial layout...") {
		t.Errorf("spinner output = %q", out)
	}
	if !strings.HasSuffix(out, "\r") {
		t.Error("spinner did not clear its line")
	}
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinnerTo(ctx, &bytes.Buffer{}, "Loading acme...")
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner still running after its context ended")
	}
	s.Stop()
}
