// Package resilience bounds operations in time.
//
// A Timeout runs an operation on its own goroutine under a derived deadline.
// The caller gets control back as soon as the deadline passes or the parent
// context is cancelled, even if the operation ignores its context; the
// abandoned operation's result is discarded when it eventually returns.
//
//	t := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: 2 * time.Second})
//	result, err := resilience.Call(ctx, t, func(ctx context.Context) health.Result {
//	    return checker.Check(ctx)
//	})
//	if errors.Is(err, resilience.ErrTimeout) {
//	    // the check overran its budget
//	}
package resilience
