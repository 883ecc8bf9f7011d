package poolclient

import (
	"context"

	"go.uber.org/zap"
)

// safeRead runs the connection guard and then the read. Recoverable
// failures degrade to the typed fallback with a warning so a browsing
// UI can render an empty state; everything else is logged at error
// severity and returned unchanged to the caller.
func safeRead[T any](ctx context.Context, c *Client, op string, fallback T, fn func(ctx context.Context) (T, error)) (T, error) {
	if err := c.checkConnection(); err != nil {
		return fallback, err
	}

	out, err := fn(ctx)
	if err == nil {
		return out, nil
	}

	if isRecoverable(err) {
		c.logger.Warn("read degraded to fallback", zap.String("op", op), zap.Error(err))
		return fallback, nil
	}

	c.logger.Error("read failed", zap.String("op", op), zap.Error(err))
	return fallback, err
}
