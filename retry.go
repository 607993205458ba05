package omega

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/omega-orm/omega/internal/metadata"
	"github.com/omega-orm/omega/internal/statement"
)

// withRetry runs one unit of work up to maxRetries+1 times. Each attempt
// establishes its own connection and transaction; nothing is reused across
// attempts. Structural errors abort immediately, any database-level error is
// retried until the budget runs out, then the last error is returned for the
// caller to wrap.
func (em *EntityManager) withRetry(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	var lastErr error

	for attempt := 0; attempt <= em.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				em.logger.Debug("operation recovered",
					zap.String("operation", operation),
					zap.Int("attempts", attempt+1))
			}
			return nil
		}
		if !isRetryable(err) {
			return err
		}

		lastErr = err
		em.logger.Warn("transient database error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	return lastErr
}

// isRetryable separates transient database failures from structural errors.
// Metadata and contract violations are deterministic and never retried; the
// retry policy for everything that crossed the database boundary is uniform.
func isRetryable(err error) bool {
	fatal := []error{
		context.Canceled,
		context.DeadlineExceeded,
		ErrNilEntity,
		ErrMissingIdentifier,
		ErrNotImplemented,
		statement.ErrMissingParameter,
		metadata.ErrInvalidMapping,
		metadata.ErrNotAStruct,
		metadata.ErrNoIdentifier,
		metadata.ErrUnknownColumn,
		metadata.ErrUnknownCustomField,
	}
	for _, f := range fatal {
		if errors.Is(err, f) {
			return false
		}
	}
	return true
}
