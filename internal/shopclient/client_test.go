package shopclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_UpdateOrderStatus(t *testing.T) {
	var received statusUpdateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/order-status-update", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL, "secret123")
	err := client.UpdateOrderStatus(context.Background(), "O1", "rejected", "wrong code")
	require.NoError(t, err)

	assert.Equal(t, "O1", received.OrderID)
	assert.Equal(t, "rejected", received.Status)
	assert.Equal(t, "wrong code", received.AdminComment)
	assert.Equal(t, "secret123", received.Secret)
}

func TestClient_UpdateOrderStatus_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := New(server.URL, "secret123")
	err := client.UpdateOrderStatus(context.Background(), "missing", "completed", "")
	assert.Error(t, err)
}

func TestClient_UpdateOrderStatus_Unreachable(t *testing.T) {
	client := New("http://127.0.0.1:1", "secret")
	err := client.UpdateOrderStatus(context.Background(), "O1", "completed", "")
	assert.Error(t, err)
}
