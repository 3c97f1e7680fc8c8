package probe

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"
)

const userAgent = "stackmon/1.0"

type httpChecker struct {
	req    Request
	client *http.Client
}

func newHTTPChecker(req Request) *httpChecker {
	return &httpChecker{
		req: req,
		// The default client policy follows up to 10 redirects; the
		// timeout covers the whole chain.
		client: &http.Client{Timeout: req.Timeout},
	}
}

func (c *httpChecker) Check(ctx context.Context) Result {
	start := time.Now()
	result := Result{
		Name:      c.req.DisplayName(),
		CheckedAt: start,
	}

	req, err := http.NewRequestWithContext(ctx, c.req.Method, c.req.URL, nil)
	if err != nil {
		result.Status = StatusError
		result.Error = fmt.Sprintf("creating request: %v", err)
		return result
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	result.ResponseTime = time.Since(start)
	result.CheckedAt = time.Now()
	if err != nil {
		result.Status, result.Error = classifyRequestError(err, c.req.URL, c.req.Timeout)
		result.Details = fmt.Sprintf("HTTP service at %s - %s", c.req.URL, result.Status)
		return result
	}
	resp.Body.Close()

	result.Details = httpDescription(c.req.URL, resp)

	if resp.StatusCode != c.req.ExpectedStatus {
		result.Status = StatusDown
		result.Error = fmt.Sprintf("expected status %d, got %d", c.req.ExpectedStatus, resp.StatusCode)
		return result
	}

	result.Status = StatusUp
	return result
}

func classifyRequestError(err error, rawURL string, timeout time.Duration) (Status, string) {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return StatusTimeout, fmt.Sprintf("request to %s timed out after %s", rawURL, timeout)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return StatusError, fmt.Sprintf("DNS resolution failed: %v", dnsErr)
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return StatusDown, fmt.Sprintf("connection failed - service unreachable: %v", opErr)
	}
	return StatusError, fmt.Sprintf("request failed: %v", err)
}

// httpDescription derives service details from the response headers.
func httpDescription(rawURL string, resp *http.Response) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	desc := fmt.Sprintf("service at %s is responding", host)
	if server := resp.Header.Get("Server"); server != "" {
		desc += fmt.Sprintf(" (%s)", server)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		desc += fmt.Sprintf(", content-type %s", ct)
	}
	return desc
}
