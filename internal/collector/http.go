package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"MacroSentinel/internal/ratelimit"
)

const defaultTimeout = 30 * time.Second

// apiClient is the shared resty plumbing of the HTTP fetchers. Each request waits on the
// limiter for its host and is tried once.
type apiClient struct {
	client  *resty.Client
	limiter *ratelimit.Limiter
	host    string
}

func newAPIClient(baseURL, proxyURL string, limiter *ratelimit.Limiter) *apiClient {
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(defaultTimeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "Mozilla/5.0")
	if proxyURL != "" {
		c.SetProxy(proxyURL)
	}
	return &apiClient{client: c, limiter: limiter, host: ratelimit.HostOf(baseURL)}
}

// get performs a rate-limited GET and returns the body of a 2xx response.
func (a *apiClient) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	if a.limiter != nil {
		if err := a.limiter.Wait(ctx, a.host); err != nil {
			return nil, fmt.Errorf("rate limit %s: %w", a.host, err)
		}
	}
	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("get %s: status %d, body: %s", path, resp.StatusCode(), truncate(resp.String(), 200))
	}
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
