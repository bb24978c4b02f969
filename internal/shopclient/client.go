// Package shopclient posts admin decisions back to the shop service. Like the
// notification path it is best-effort: errors are returned for logging only,
// nothing is retried or queued, so a decision can fail to reach the shop.
package shopclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const requestTimeout = 5 * time.Second

type statusUpdateRequest struct {
	OrderID      string `json:"order_id"`
	Status       string `json:"status"`
	AdminComment string `json:"admin_comment,omitempty"`
	Secret       string `json:"secret"`
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

// UpdateOrderStatus posts the final status to POST {base}/api/order-status-update.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderID, status, adminComment string) error {
	payload := statusUpdateRequest{
		OrderID:      orderID,
		Status:       status,
		AdminComment: adminComment,
		Secret:       c.secret,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("shopclient: failed to marshal status update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/order-status-update", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("shopclient: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("shopclient: status update request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("shopclient: status update returned status %d", resp.StatusCode)
	}

	return nil
}
