package audio

import (
	"context"
	"errors"
	"testing"

	"github.com/sony/gobreaker"
)

func TestBreakerProviderOpensAfterFailures(t *testing.T) {
	inner := &mockProvider{name: "remote", generateErr: errors.New("503")}
	provider := NewBreakerProvider(inner, 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := provider.GenerateAudio(ctx, "cat", "en", "cat.mp3"); err == nil {
			t.Fatalf("Call %d: expected error", i+1)
		}
	}

	if provider.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open circuit, got %s", provider.State())
	}

	err := provider.GenerateAudio(ctx, "dog", "en", "dog.mp3")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected open state error, got %v", err)
	}
	if inner.generateCalls != 2 {
		t.Errorf("Expected open circuit to skip the provider, got %d calls", inner.generateCalls)
	}
	if provider.IsAvailable() == nil {
		t.Error("Expected open circuit to report unavailable")
	}
}

func TestBreakerProviderPassesSuccess(t *testing.T) {
	inner := &mockProvider{name: "remote"}
	provider := NewBreakerProvider(inner, 1)

	if err := provider.GenerateAudio(context.Background(), "cat", "en", "cat.mp3"); err != nil {
		t.Errorf("GenerateAudio() unexpected error: %v", err)
	}
	if provider.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed circuit, got %s", provider.State())
	}
	if provider.Name() != "remote" {
		t.Errorf("Expected name 'remote', got %s", provider.Name())
	}
}
