package mercadopago

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"MercadoPagoGateway/internal/domain/payment"
)

// RetryConfig holds configuration for retry with exponential backoff.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryConfig keeps the worst case well inside IPN_FETCH_TIMEOUT.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   100 * time.Millisecond,
		MaxDelay:    2 * time.Second,
	}
}

// doWithRetry retries fn with exponential backoff while it fails with
// payment.ErrUnavailable.
func doWithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	attempts := max(cfg.MaxAttempts, 1)
	var lastErr error

	for attempt := 0; attempt < attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !errors.Is(err, payment.ErrUnavailable) || attempt == attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		case <-time.After(backoff(attempt, cfg.BaseDelay, cfg.MaxDelay)):
		}
	}

	return lastErr
}

// backoff is baseDelay * 2^attempt with ±25% jitter, capped at maxDelay.
func backoff(attempt int, baseDelay, maxDelay time.Duration) time.Duration {
	delay := float64(baseDelay) * math.Pow(2, float64(attempt))
	delay += delay * 0.25 * (rand.Float64()*2 - 1)
	if delay > float64(maxDelay) {
		delay = float64(maxDelay)
	}
	return time.Duration(delay)
}
