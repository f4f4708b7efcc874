package ctxutil

import (
	"context"
	"testing"
)

func TestUserID_RoundTrip(t *testing.T) {
	ctx := WithUserID(context.Background(), int64(42))

	id, ok := UserIDFromCtx(ctx)
	if !ok {
		t.Fatal("expected user id to be present")
	}
	if id != 42 {
		t.Fatalf("got %d, want 42", id)
	}
}

func TestUserID_Missing(t *testing.T) {
	if _, ok := UserIDFromCtx(context.Background()); ok {
		t.Fatal("expected no user id in empty context")
	}
}

func TestUserID_Zero(t *testing.T) {
	ctx := WithUserID(context.Background(), 0)
	if _, ok := UserIDFromCtx(ctx); ok {
		t.Fatal("zero user id must read back as absent")
	}
}

func TestRequestID_RoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")
	if got := RequestIDFromCtx(ctx); got != "req-123" {
		t.Fatalf("got %q, want %q", got, "req-123")
	}
}

func TestRequestID_Missing(t *testing.T) {
	if got := RequestIDFromCtx(context.Background()); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}
