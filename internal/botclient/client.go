// Package botclient posts order notifications to the bot service. Calls are
// fire-and-forget with a short timeout: a failed or timed-out notification is
// lost, and the review queue simply never learns about that stage.
package botclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/DESTRKOD/duck-bot/internal/shop/order"
)

const requestTimeout = 5 * time.Second

type notifyRequest struct {
	OrderID string         `json:"order_id"`
	Email   string         `json:"email"`
	Items   map[string]int `json:"items"`
	Amount  float64        `json:"amount"`
	Code    string         `json:"code,omitempty"`
	Secret  string         `json:"secret"`
	Stage   string         `json:"stage"`
}

type Client struct {
	baseURL string
	secret  string
	client  *http.Client
}

func New(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// NotifyOrder posts the notification to POST {base}/api/order-notify. The
// caller is expected to log and drop the returned error.
func (c *Client) NotifyOrder(ctx context.Context, n order.Notification) error {
	payload := notifyRequest{
		OrderID: n.OrderID,
		Email:   n.Email,
		Items:   n.Items,
		Amount:  n.Amount,
		Code:    n.Code,
		Secret:  c.secret,
		Stage:   n.Stage,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("botclient: failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order-notify", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("botclient: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("botclient: notify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("botclient: notify returned status %d", resp.StatusCode)
	}

	return nil
}
