package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable failure code surfaced to callers.
type Code string

const (
	CodeInvalidReference Code = "ERR_INVALID_REFERENCE"
	CodeInvalidInput     Code = "ERR_INVALID_INPUT"
	CodeCaptionsDisabled Code = "ERR_CAPTIONS_DISABLED"
	CodeNoCaptions       Code = "ERR_NO_CAPTIONS"
	CodeAudioDownload    Code = "ERR_AUDIO_DOWNLOAD"
	CodeTranscription    Code = "ERR_TRANSCRIPTION"
	CodeLLMRateLimit     Code = "ERR_LLM_RATE_LIMIT"
	CodeLLMAuth          Code = "ERR_LLM_AUTH"
	CodeLLMGeneric       Code = "ERR_LLM_GENERIC"
	CodeCanceled         Code = "ERR_CANCELED"
	CodeInternal         Code = "ERR_INTERNAL"
)

var codeStatus = map[Code]int{
	CodeInvalidReference: http.StatusBadRequest,
	CodeInvalidInput:     http.StatusBadRequest,
	CodeCaptionsDisabled: http.StatusBadRequest,
	CodeNoCaptions:       http.StatusNotFound,
	CodeAudioDownload:    http.StatusNotFound,
	CodeTranscription:    http.StatusInternalServerError,
	CodeLLMRateLimit:     http.StatusTooManyRequests,
	CodeLLMAuth:          http.StatusUnauthorized,
	CodeLLMGeneric:       http.StatusInternalServerError,
	CodeCanceled:         499,
	CodeInternal:         http.StatusInternalServerError,
}

// Status returns the HTTP-equivalent status for c.
func (c Code) Status() int {
	if s, ok := codeStatus[c]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// Sentinels for errors.Is matching by code.
var (
	ErrInvalidReference = &Error{Code: CodeInvalidReference}
	ErrNoCaptions       = &Error{Code: CodeNoCaptions}
	ErrAudioDownload    = &Error{Code: CodeAudioDownload}
	ErrTranscription    = &Error{Code: CodeTranscription}
	ErrLLMRateLimit     = &Error{Code: CodeLLMRateLimit}
	ErrLLMAuth          = &Error{Code: CodeLLMAuth}
	ErrLLMGeneric       = &Error{Code: CodeLLMGeneric}
)

// Error is a typed failure carrying a stable code, a user-facing message and the cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

// NewError builds an Error. err may be nil.
func NewError(code Code, msg string, err error) *Error {
	return &Error{Code: code, Message: msg, Err: err}
}

func (e *Error) Error() string {
	msg := string(e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Status returns the HTTP-equivalent status code.
func (e *Error) Status() int { return e.Code.Status() }

// CodeOf extracts the code from err, or "" when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// AsError converts any error into an *Error. Context errors map to
// ERR_CANCELED; untyped errors become ERR_INTERNAL.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeCanceled, "request canceled", err)
	}
	return NewError(CodeInternal, "internal error", err)
}

// Errorf builds an Error with a formatted message and no cause.
func Errorf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}
