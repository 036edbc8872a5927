package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// BreakerProvider stops calling a failing remote provider after a run of
// consecutive errors. While open, calls fail immediately; nothing is retried.
type BreakerProvider struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps provider in a circuit breaker that opens after
// maxFailures consecutive failures and half-opens again after 30 seconds
func NewBreakerProvider(provider Provider, maxFailures uint32) *BreakerProvider {
	settings := gobreaker.Settings{
		Name:        provider.Name(),
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fmt.Printf("Speech provider %s: circuit %s -> %s\n", name, from, to)
		},
	}

	return &BreakerProvider{
		provider: provider,
		cb:       gobreaker.NewCircuitBreaker(settings),
	}
}

// GenerateAudio runs the wrapped provider through the breaker
func (b *BreakerProvider) GenerateAudio(ctx context.Context, text, language, outputFile string) error {
	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.provider.GenerateAudio(ctx, text, language, outputFile)
	})
	if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
		return fmt.Errorf("%s unavailable: %w", b.provider.Name(), err)
	}
	return err
}

// Name returns the wrapped provider name
func (b *BreakerProvider) Name() string {
	return b.provider.Name()
}

// IsAvailable reports an open circuit as unavailable
func (b *BreakerProvider) IsAvailable() error {
	if b.cb.State() == gobreaker.StateOpen {
		return fmt.Errorf("%s circuit is open", b.provider.Name())
	}
	return b.provider.IsAvailable()
}

// State returns the current breaker state
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}
