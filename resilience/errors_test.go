package resilience

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestErrTimeout_Wrapped(t *testing.T) {
	_, err := Call(context.Background(), NewTimeout(TimeoutConfig{Timeout: 10 * time.Millisecond}), func(ctx context.Context) bool {
		<-ctx.Done()
		return false
	})

	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("err = %v, want ErrTimeout", err)
	}
	if !strings.HasPrefix(err.Error(), "resilience: ") {
		t.Errorf("err = %q, want resilience prefix", err)
	}
	if !strings.HasSuffix(err.Error(), "after 10ms") {
		t.Errorf("err = %q, want limit in message", err)
	}
}
