package utils

import (
	"context"
	"time"
)

// DispatchTimeout bounds side-channel work that runs detached from the
// request that triggered it, currently the notification emails sent
// after a comment write.
const DispatchTimeout = 10 * time.Second

// WithDispatchTimeout derives a context for detached background work
func WithDispatchTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, DispatchTimeout)
}
