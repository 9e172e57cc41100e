// Secondary relay channel.
//
// The relay is an optional collaborator: when the channel is disabled or
// unconfigured the dispatcher holds a NoopRelay instead of branching on
// configuration presence throughout. Delivery is fire-and-forget; callers
// log and swallow errors.
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Relay sends one rendered notification message over the secondary channel.
type Relay interface {
	Send(ctx context.Context, title, message, category string) error
}

// NoopRelay is the disabled-channel implementation.
type NoopRelay struct{}

// Send discards the message.
func (NoopRelay) Send(context.Context, string, string, string) error { return nil }

// HTTPRelay issues a simple GET with query parameters to a configured
// target URL, addressing a specific device/session registered there.
type HTTPRelay struct {
	client *http.Client
	target string
	device string
}

// NewHTTPRelay builds a relay for the given target URL and device id.
// timeout bounds one send.
func NewHTTPRelay(target, device string, timeout time.Duration) *HTTPRelay {
	return &HTTPRelay{
		client: &http.Client{Timeout: timeout},
		target: target,
		device: device,
	}
}

// Send performs the outbound GET. Any non-2xx response is reported as an
// error; the caller decides whether that matters (it never does more than
// a log line).
func (r *HTTPRelay) Send(ctx context.Context, title, message, category string) error {
	u, err := url.Parse(r.target)
	if err != nil {
		return fmt.Errorf("relay: bad target url: %w", err)
	}
	q := u.Query()
	q.Set("device", r.device)
	q.Set("title", title)
	q.Set("message", message)
	q.Set("type", category)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("relay: build request: %w", err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("relay: send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("relay: target answered %d", resp.StatusCode)
	}
	return nil
}
