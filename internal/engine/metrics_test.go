package engine

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFormatMetricsListsEveryKey(t *testing.T) {
	before := GetMetrics()["caption_hits"]
	IncrCaptionHit()
	if got := GetMetrics()["caption_hits"]; got != before+1 {
		t.Errorf("caption_hits = %d, want %d", got, before+1)
	}

	out := FormatMetrics()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != len(metricKeys) {
		t.Fatalf("got %d lines, want %d", len(lines), len(metricKeys))
	}
	for i, k := range metricKeys {
		if !strings.HasPrefix(lines[i], k+" ") {
			t.Errorf("line %d = %q, want key %s", i, lines[i], k)
		}
	}
}

func TestTrackOperationReturnsError(t *testing.T) {
	want := errors.New("boom")
	err := TrackOperation(context.Background(), "op", 0, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}
