package dbctx

import (
	"context"
	"testing"
	"time"
)

func TestWithTimeout_Default(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 0)
	defer cancel()

	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if remaining := time.Until(deadline); remaining <= 0 || remaining > DefaultTimeout {
		t.Errorf("expected deadline within %s, got %s", DefaultTimeout, remaining)
	}
}

func TestWithTimeout_Explicit(t *testing.T) {
	ctx, cancel := WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("expected context to expire")
	}
}
