// Package notify delivers outbound webhook notifications for due sentinels.
// Delivery settles to a typed Result; no error or panic ever reaches the
// caller, so the sweep branches on a plain boolean.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/kbtale/lease-sentinel/internal/logger"
	"go.uber.org/zap"
)

// DefaultTimeout is the hard per-attempt delivery deadline, measured from
// request start. Expiry cancels the in-flight request.
const DefaultTimeout = 5 * time.Second

// Failure classes carried in Result for operability. Callers never branch
// on them; Delivered is the whole contract.
const (
	FailTimeout   = "timeout"
	FailTransport = "transport_error"
	FailStatus    = "non_2xx"
	FailPayload   = "bad_payload"
)

// Result is the settlement of one delivery attempt. Delivered is true iff
// the destination acknowledged with a 2xx within the timeout.
type Result struct {
	Delivered    bool
	StatusCode   int
	FailureClass string
	Err          string
	Duration     time.Duration
}

type Notifier interface {
	Notify(ctx context.Context, target string, payload map[string]any) Result
}

// WebhookNotifier posts JSON payloads over HTTP.
type WebhookNotifier struct {
	client  *http.Client
	timeout time.Duration
}

// NewWebhookNotifier builds a notifier with the given per-attempt timeout
// (DefaultTimeout when <= 0; tests shrink it).
func NewWebhookNotifier(timeout time.Duration) *WebhookNotifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &WebhookNotifier{
		client:  &http.Client{},
		timeout: timeout,
	}
}

// Notify posts payload to target and reports the settlement. Every failure
// mode (marshal error, transport error, timeout, non-2xx) collapses to
// Delivered == false with a classified diagnostic.
func (n *WebhookNotifier) Notify(ctx context.Context, target string, payload map[string]any) Result {
	start := time.Now()

	body, err := json.Marshal(payload)
	if err != nil {
		return n.failed(target, Result{FailureClass: FailPayload, Err: err.Error(), Duration: time.Since(start)})
	}

	cctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(cctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return n.failed(target, Result{FailureClass: FailTransport, Err: err.Error(), Duration: time.Since(start)})
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		class := FailTransport
		if errors.Is(err, context.DeadlineExceeded) {
			class = FailTimeout
		}
		return n.failed(target, Result{FailureClass: class, Err: err.Error(), Duration: time.Since(start)})
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return n.failed(target, Result{StatusCode: resp.StatusCode, FailureClass: FailStatus, Duration: time.Since(start)})
	}

	return Result{Delivered: true, StatusCode: resp.StatusCode, Duration: time.Since(start)}
}

func (n *WebhookNotifier) failed(target string, res Result) Result {
	logger.Log.Warn("webhook delivery failed",
		zap.String("target", target),
		zap.String("class", res.FailureClass),
		zap.Int("status", res.StatusCode),
		zap.String("err", res.Err),
		zap.Duration("took", res.Duration),
	)
	return res
}
