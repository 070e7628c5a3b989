package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// PaymentNotifier tells the payment system that an obligation was worked off.
type PaymentNotifier interface {
	Notify(ctx context.Context, violationID int64, userID string) error
}

// HTTPPaymentNotifier calls the payment endpoint with viol_id, t_or_f and
// user_id query parameters.
type HTTPPaymentNotifier struct {
	endpoint string
	client   *http.Client
}

func NewHTTPPaymentNotifier(endpoint string, timeout time.Duration) *HTTPPaymentNotifier {
	return &HTTPPaymentNotifier{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (n *HTTPPaymentNotifier) Notify(ctx context.Context, violationID int64, userID string) error {
	u, err := url.Parse(n.endpoint)
	if err != nil {
		return fmt.Errorf("payment endpoint: %w", err)
	}
	q := u.Query()
	q.Set("viol_id", strconv.FormatInt(violationID, 10))
	q.Set("t_or_f", "1")
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("payment endpoint returned %s", resp.Status)
	}
	return nil
}
