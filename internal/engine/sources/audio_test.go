package sources

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestFindAudioFile(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "audio_abc12345678_deadbeef")

	if _, err := findAudioFile(base); err == nil {
		t.Fatal("expected error when nothing was written")
	}

	if err := os.WriteFile(base+".m4a.part", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := findAudioFile(base); err == nil {
		t.Error("partial download must not count as audio")
	}

	if err := os.WriteFile(base+".webm", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := findAudioFile(base)
	if err != nil || got != base+".webm" {
		t.Errorf("findAudioFile = %q, %v", got, err)
	}

	if err := os.WriteFile(base+".mp3", []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err = findAudioFile(base)
	if err != nil || got != base+".mp3" {
		t.Errorf("mp3 should be preferred, got %q, %v", got, err)
	}
}

func TestYtDlpMissingBinary(t *testing.T) {
	d := YtDlp{Path: filepath.Join(t.TempDir(), "no-such-yt-dlp")}
	if _, err := d.Download(context.Background(), "abc12345678", t.TempDir()); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestRunUntilDoneKillsOnCancel(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := runUntilDone(ctx, exec.Command("sleep", "30"))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("process not killed promptly: %v", elapsed)
	}
}

func TestRunUntilDoneReturnsExitError(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	err := runUntilDone(context.Background(), exec.Command("false"))
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Errorf("err = %v, want *exec.ExitError", err)
	}
}

func TestCompactCanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FFmpeg{}).Compact(ctx, filepath.Join(t.TempDir(), "in.mp3")); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
