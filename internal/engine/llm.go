package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// CompleteFunc sends one prompt to a completion backend and returns the raw text.
type CompleteFunc func(ctx context.Context, prompt string) (string, error)

// LLM is the rate-limited, error-classifying completion client shared by all
// artifact generators. Every error it returns is an *Error with one of the
// ERR_LLM_* codes.
type LLM struct {
	complete CompleteFunc
	chat     CompleteFunc
	limiter  *rate.Limiter
	timeout  time.Duration
}

// NewLLM builds an LLM backed by the go-kit OpenAI-compatible client.
func NewLLM(c Config) *LLM {
	client := llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(&http.Client{Timeout: c.LLMTimeout + 5*time.Second}),
	)
	l := NewLLMFunc(func(ctx context.Context, prompt string) (string, error) {
		return client.Complete(ctx, "", prompt)
	}, c.LLMRequestsPerSec, c.LLMTimeout)
	l.chat = func(ctx context.Context, prompt string) (string, error) {
		return client.Complete(ctx, "", prompt,
			llm.WithChatTemperature(c.ChatTemperature),
			llm.WithChatMaxTokens(c.ChatMaxTokens),
		)
	}
	return l
}

// NewLLMFunc wraps an arbitrary completion function. rps <= 0 disables rate
// limiting; timeout <= 0 disables the per-call deadline.
func NewLLMFunc(fn CompleteFunc, rps float64, timeout time.Duration) *LLM {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &LLM{
		complete: fn,
		chat:     fn,
		limiter:  rate.NewLimiter(limit, 1),
		timeout:  timeout,
	}
}

// Complete sends prompt with the default sampling settings.
func (l *LLM) Complete(ctx context.Context, prompt string) (string, error) {
	return l.call(ctx, l.complete, prompt)
}

// Chat returns a view of l that uses conversational sampling settings
// (higher temperature, shorter answers) while sharing the rate limiter.
func (l *LLM) Chat() *LLM {
	return &LLM{complete: l.chat, chat: l.chat, limiter: l.limiter, timeout: l.timeout}
}

func (l *LLM) call(ctx context.Context, fn CompleteFunc, prompt string) (string, error) {
	metrics.LLMCalls.Add(1)
	if err := l.limiter.Wait(ctx); err != nil {
		metrics.LLMErrors.Add(1)
		if ctx.Err() != nil {
			return "", NewError(CodeCanceled, "request canceled", ctx.Err())
		}
		return "", NewError(CodeLLMGeneric, "waiting for rate limiter", err)
	}
	callCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	out, err := fn(callCtx, prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		// The caller's context ending is a cancellation; only the
		// per-call deadline counts as a model failure.
		if ctx.Err() != nil {
			return "", NewError(CodeCanceled, "request canceled", ctx.Err())
		}
		return "", ClassifyLLMError(err)
	}
	return out, nil
}

// ClassifyLLMError maps a completion error to ERR_LLM_RATE_LIMIT, ERR_LLM_AUTH
// or ERR_LLM_GENERIC by inspecting the provider's error text. A canceled
// context maps to ERR_CANCELED.
func ClassifyLLMError(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if errors.As(err, &typed) {
		return typed
	}
	if errors.Is(err, context.Canceled) {
		return NewError(CodeCanceled, "request canceled", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return NewError(CodeLLMGeneric, "language model timed out", err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "rate_limit"),
		strings.Contains(msg, "too many requests"):
		return NewError(CodeLLMRateLimit, "language model rate limit exceeded", err)
	case strings.Contains(msg, "401"),
		strings.Contains(msg, "authentication"),
		strings.Contains(msg, "api_key"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "unauthorized"):
		return NewError(CodeLLMAuth, "language model authentication failed", err)
	}
	return NewError(CodeLLMGeneric, "language model request failed", err)
}
