package resilience_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kmd/mea/resilience"
)

func ExampleNewTimeout() {
	timeout := resilience.NewTimeout(resilience.TimeoutConfig{
		Timeout: 100 * time.Millisecond,
	})

	ctx := context.Background()

	err := timeout.Execute(ctx, func(ctx context.Context) error {
		return nil
	})
	fmt.Println("Fast operation error:", err)

	err = timeout.Execute(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return nil
	})
	fmt.Println("Slow operation timed out:", errors.Is(err, resilience.ErrTimeout))
	// Output:
	// Fast operation error: <nil>
	// Slow operation timed out: true
}

func ExampleCall() {
	timeout := resilience.NewTimeout(resilience.TimeoutConfig{Timeout: time.Second})

	status, err := resilience.Call(context.Background(), timeout, func(ctx context.Context) string {
		return "Healthy"
	})
	fmt.Println(status, err)
	// Output:
	// Healthy <nil>
}
