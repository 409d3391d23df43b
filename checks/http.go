package checks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kmd/mea/health"
)

// HTTP checks that a GET to URL answers with ExpectedStatus.
type HTTP struct {
	URL            string
	ExpectedStatus int
	Headers        map[string]string
	Client         *http.Client
}

// NewHTTP creates an HTTP check. A zero expectedStatus means 200.
func NewHTTP(url string, expectedStatus int, headers map[string]string) *HTTP {
	if expectedStatus == 0 {
		expectedStatus = http.StatusOK
	}
	return &HTTP{
		URL:            url,
		ExpectedStatus: expectedStatus,
		Headers:        headers,
		Client:         &http.Client{},
	}
}

// Check performs the request. Deadlines come from ctx.
func (c *HTTP) Check(ctx context.Context) health.Result {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return health.Unhealthy("invalid request", fmt.Errorf("creating request: %w", err))
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	latency := time.Since(start)
	if err != nil {
		return health.Unhealthy("request failed", fmt.Errorf("%w: %w", ErrUnreachable, err))
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()

	data := map[string]any{
		"url":        c.URL,
		"statusCode": resp.StatusCode,
		"latencyMs":  latency.Milliseconds(),
	}

	if resp.StatusCode != c.ExpectedStatus {
		return health.Unhealthy(
			fmt.Sprintf("expected status %d, got %d", c.ExpectedStatus, resp.StatusCode),
			fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
		).WithData(data)
	}
	return health.Healthy("").WithData(data)
}
