package poolclient

import (
	"context"
	"errors"
	"testing"
)

func TestSafeReadReturnsValue(t *testing.T) {
	client := newTestClient(t, &fakeReader{}, nil)

	got, err := safeRead(context.Background(), client, "op", "fallback", func(context.Context) (string, error) {
		return "value", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "value" {
		t.Fatalf("got %q, want %q", got, "value")
	}
}

func TestSafeReadDegradesRecoverableToFallback(t *testing.T) {
	client := newTestClient(t, &fakeReader{}, nil)

	got, err := safeRead(context.Background(), client, "op", "fallback", func(context.Context) (string, error) {
		return "", errors.New("execution reverted")
	})
	if err != nil {
		t.Fatalf("recoverable failure must not surface, got %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestSafeReadSurfacesFatalError(t *testing.T) {
	client := newTestClient(t, &fakeReader{}, nil)
	fatal := errors.New("dial tcp: connection refused")

	got, err := safeRead(context.Background(), client, "op", "fallback", func(context.Context) (string, error) {
		return "", fatal
	})
	if !errors.Is(err, fatal) {
		t.Fatalf("expected original error, got %v", err)
	}
	if got != "fallback" {
		t.Fatalf("got %q, want fallback", got)
	}
}

func TestSafeReadGuardsMissingReader(t *testing.T) {
	client := newTestClient(t, &fakeReader{}, nil)
	client.reader = nil

	ran := false
	_, err := safeRead(context.Background(), client, "op", "fallback", func(context.Context) (string, error) {
		ran = true
		return "value", nil
	})
	if !errors.Is(err, ErrReadHandleUnavailable) {
		t.Fatalf("expected ErrReadHandleUnavailable, got %v", err)
	}
	if ran {
		t.Fatal("read must not run when the guard fails")
	}
}
