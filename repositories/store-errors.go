package repositories

import (
	"context"
	"errors"
	"fmt"

	"nexus-project/collaboration-service/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// storeErr classifies a MongoDB failure. Timeouts and connectivity problems
// become TransientStoreError so callers can tell the user to retry; anything
// else is passed through with the operation name attached.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return fmt.Errorf("%s: %w", op, models.ErrTransientStore)
	}
	return fmt.Errorf("%s: %v", op, err)
}
