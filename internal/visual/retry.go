package visual

import (
	"context"
	"errors"
	"time"
)

// retryAction выполняет fn до maxRetries раз с паузой delay между попытками.
// Отмена контекста прерывает повторы сразу.
func retryAction(ctx context.Context, maxRetries int, delay time.Duration, fn func(attempt int) error) error {
	if maxRetries < 1 {
		maxRetries = 1
	}

	var lastErr error
	for i := 1; i <= maxRetries; i++ {
		if i > 1 {
			if err := sleep(ctx, delay); err != nil {
				return err
			}
		}

		err := fn(i)
		if err == nil {
			return nil
		}
		lastErr = err
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
