package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/sortie/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine detached from the caller's cancellation.
// Context values such as the request logger are kept; errors and panics are reported through errutil.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) <-chan struct{} {
	bgCtx := context.WithoutCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()

	return done
}
