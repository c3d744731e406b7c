package retrieval

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type timeoutNetError struct{}

func (timeoutNetError) Error() string   { return "dial tcp: i/o timeout" }
func (timeoutNetError) Timeout() bool   { return true }
func (timeoutNetError) Temporary() bool { return true }

func TestIsTransientLLMError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("generate: %w", context.DeadlineExceeded), true},
		{"net timeout", timeoutNetError{}, true},
		{"rate limited", errors.New("openai: rate limit exceeded"), true},
		{"status 429", errors.New("unexpected status code: 429"), true},
		{"bad gateway", errors.New("unexpected status code: 502"), true},
		{"service overloaded", errors.New("the model is currently overloaded"), true},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"invalid api key", errors.New("invalid api key provided"), false},
		{"content rejected", errors.New("your prompt was rejected by the moderation policy"), false},
		{"bad request", errors.New("unexpected status code: 400"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientLLMError(tt.err); got != tt.want {
				t.Errorf("isTransientLLMError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

// 确定性失败不应消耗重试退避等待
func TestSynthesizeRetryGate(t *testing.T) {
	if isTransientLLMError(errors.New("invalid api key provided")) {
		t.Fatal("deterministic failures must not be retried")
	}
	if !isTransientLLMError(fmt.Errorf("generate after %s: %w", time.Second, context.DeadlineExceeded)) {
		t.Fatal("deadline failures must be retried once")
	}
}
