package services

import (
	"context"
	"errors"
	"time"

	"threadline/internal/domain"
)

const defaultTimeout = 5 * time.Second

// opCtx bounds every storage round-trip; a hung store surfaces as a
// retryable conflict instead of a stuck request.
func opCtx(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultTimeout
	}
	return context.WithTimeout(ctx, d)
}

// storeErr rewrites context expiry into a typed retryable fault and passes
// everything else through.
func storeErr(err error, action string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return domain.Errf(domain.KindConflict, "%s: storage timeout, retry", action)
	}
	return err
}
