package engine

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestErrorIsMatchesCode(t *testing.T) {
	err := fmt.Errorf("acquire: %w", NewError(CodeNoCaptions, "no captions", nil))

	if !errors.Is(err, ErrNoCaptions) {
		t.Error("expected errors.Is to match on code")
	}
	if errors.Is(err, ErrAudioDownload) {
		t.Error("different code must not match")
	}
	if got := CodeOf(err); got != CodeNoCaptions {
		t.Errorf("CodeOf = %q, want %q", got, CodeNoCaptions)
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(CodeTranscription, "speech-to-text failed", errors.New("boom"))
	want := "ERR_TRANSCRIPTION: speech-to-text failed: boom"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestCodeStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeInvalidReference, 400},
		{CodeNoCaptions, 404},
		{CodeAudioDownload, 404},
		{CodeTranscription, 500},
		{CodeLLMRateLimit, 429},
		{CodeLLMAuth, 401},
		{CodeLLMGeneric, 500},
		{Code("ERR_UNKNOWN"), 500},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := tt.code.Status(); got != tt.want {
				t.Errorf("Status() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsError(t *testing.T) {
	if AsError(nil) != nil {
		t.Error("nil must stay nil")
	}
	if got := AsError(context.Canceled).Code; got != CodeCanceled {
		t.Errorf("canceled → %s", got)
	}
	if got := AsError(errors.New("x")).Code; got != CodeInternal {
		t.Errorf("plain → %s", got)
	}
	typed := NewError(CodeLLMAuth, "auth", nil)
	if AsError(fmt.Errorf("wrap: %w", typed)) != typed {
		t.Error("typed error should be unwrapped, not re-wrapped")
	}
}
