// Package webhook delivers alert payloads to the notification endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"termwatch/internal/alert"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"golang.org/x/time/rate"
)

// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx code.
var ErrUnexpectedStatus = errors.New("webhook returned unexpected status")

// Config configures a Dispatcher.
type Config struct {
	URL     string
	Timeout time.Duration // per request, default 8s

	// RatePerSecond paces outbound requests. Zero or less disables pacing.
	RatePerSecond float64
	Burst         int // default: RatePerSecond rounded up, at least 1
}

// Dispatcher posts alert payloads. Delivery is a single attempt; callers
// decide what a failure means.
type Dispatcher struct {
	url        string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New creates a Dispatcher.
func New(cfg Config) *Dispatcher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}

	d := &Dispatcher{
		url: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}

	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = int(math.Max(1, math.Ceil(cfg.RatePerSecond)))
		}
		d.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	return d
}

// Dispatch sends one payload.
func (d *Dispatcher) Dispatch(ctx context.Context, payload alert.Payload) error {
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("webhook rate limiter: %w", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload %s: %w", payload.AlertID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", payload.AlertID, err)
	}
	defer resp.Body.Close()
	// Drain so the connection can be reused.
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %d for %s", ErrUnexpectedStatus, resp.StatusCode, payload.AlertID)
	}

	return nil
}
