package checks

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/kmd/mea/health"
)

// TCP checks that Address accepts connections.
type TCP struct {
	Address string
}

// NewTCP creates a TCP check for a host:port address.
func NewTCP(address string) *TCP {
	return &TCP{Address: address}
}

// Check dials and immediately closes the connection.
func (c *TCP) Check(ctx context.Context) health.Result {
	start := time.Now()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", c.Address)
	latency := time.Since(start)
	if err != nil {
		return health.Unhealthy(
			fmt.Sprintf("dial tcp %s failed", c.Address),
			fmt.Errorf("%w: %w", ErrUnreachable, err),
		)
	}
	conn.Close()

	return health.Healthy("").WithData(map[string]any{
		"address":   c.Address,
		"latencyMs": latency.Milliseconds(),
	})
}
