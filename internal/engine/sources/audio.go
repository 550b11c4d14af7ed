package sources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// YtDlp downloads the audio track of a video with the yt-dlp binary.
type YtDlp struct {
	Path string // binary name or path; "yt-dlp" when empty
}

// Download extracts the audio of videoID as mp3 into outputDir and returns the file path.
func (d YtDlp) Download(ctx context.Context, videoID, outputDir string) (string, error) {
	bin := d.Path
	if bin == "" {
		bin = "yt-dlp"
	}

	base := filepath.Join(outputDir, "audio_"+videoID+"_"+uuid.NewString()[:8])
	args := []string{
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", base + ".%(ext)s",
		"--no-playlist",
		"--quiet",
		"--no-warnings",
		WatchURL(videoID),
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("yt-dlp: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	path, err := findAudioFile(base)
	if err != nil {
		return "", err
	}
	return path, nil
}

// findAudioFile locates the file yt-dlp wrote for base, preferring mp3.
func findAudioFile(base string) (string, error) {
	if _, err := os.Stat(base + ".mp3"); err == nil {
		return base + ".mp3", nil
	}
	matches, err := filepath.Glob(base + ".*")
	if err != nil {
		return "", fmt.Errorf("glob audio: %w", err)
	}
	for _, m := range matches {
		if !strings.HasSuffix(m, ".part") {
			return m, nil
		}
	}
	return "", errors.New("yt-dlp produced no audio file")
}

// FFmpeg re-encodes audio so that it fits under a speech-to-text size ceiling.
type FFmpeg struct{}

// Compact re-encodes path as mono 16 kHz mp3 at 64 kbit/s next to the input
// and returns the new path. Speech survives this bitrate with little loss.
func (FFmpeg) Compact(ctx context.Context, path string) (string, error) {
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".mono.mp3"
	cmd := ffmpeg.Input(path).
		Output(out, ffmpeg.KwArgs{
			"vn":  "",
			"ac":  1,
			"ar":  16000,
			"b:a": "64k",
		}).
		OverWriteOutput().
		Compile()
	if err := runUntilDone(ctx, cmd); err != nil {
		_ = os.Remove(out)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("ffmpeg compact: %w", err)
	}
	slog.Debug("audio: compacted", slog.String("in", filepath.Base(path)), slog.String("out", filepath.Base(out)))
	return out, nil
}

// runUntilDone runs cmd and kills it as soon as ctx ends.
func runUntilDone(ctx context.Context, cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return ctx.Err()
	}
}
