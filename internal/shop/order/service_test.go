package order_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DESTRKOD/duck-bot/internal/shop/order"
)

const testSecret = "test_secret"

type memoryRepository struct {
	mu      sync.Mutex
	orders  map[string]order.Order
	saveErr error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{orders: make(map[string]order.Order)}
}

func (m *memoryRepository) Save(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.orders[o.ID] = *o
	return nil
}

func (m *memoryRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return &o, nil
}

func (m *memoryRepository) List(ctx context.Context) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]order.Order, 0, len(m.orders))
	for _, o := range m.orders {
		orders = append(orders, o)
	}
	return orders, nil
}

type mockNotifier struct {
	notifications chan order.Notification
	err           error
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{notifications: make(chan order.Notification, 8)}
}

func (m *mockNotifier) NotifyOrder(ctx context.Context, n order.Notification) error {
	m.notifications <- n
	return m.err
}

func (m *mockNotifier) wait(t *testing.T) order.Notification {
	t.Helper()
	select {
	case n := <-m.notifications:
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("expected a notification, got none")
		return order.Notification{}
	}
}

type stubPricer struct {
	prices map[string]float64
}

func (p stubPricer) CartTotal(cart map[string]int) float64 {
	var total float64
	for item, qty := range cart {
		total += float64(qty) * p.prices[item]
	}
	return total
}

func newTestService(repo order.Repository, notifier order.Notifier) order.Service {
	return order.NewService(repo, notifier, stubPricer{prices: map[string]float64{"item1": 10}}, testSecret)
}

func TestService_SubmitEmail(t *testing.T) {
	t.Run("creates_order_with_pending_email", func(t *testing.T) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		svc := newTestService(repo, notifier)

		o, err := svc.SubmitEmail(context.Background(), "O1", "a@x.com", order.Cart{"item1": 2})
		require.NoError(t, err)
		assert.Equal(t, "O1", o.ID)
		assert.Equal(t, order.StatusPendingEmail, o.Status)
		assert.Equal(t, "a@x.com", o.Email)
		assert.Equal(t, order.Cart{"item1": 2}, o.Cart)
		assert.False(t, o.CreatedAt.IsZero())

		n := notifier.wait(t)
		assert.Equal(t, order.StageEmailSubmitted, n.Stage)
		assert.Equal(t, "O1", n.OrderID)
		assert.Equal(t, 20.0, n.Amount)
		assert.Empty(t, n.Code)
	})

	t.Run("assigns_id_when_absent", func(t *testing.T) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		svc := newTestService(repo, notifier)

		o, err := svc.SubmitEmail(context.Background(), "", "a@x.com", nil)
		require.NoError(t, err)
		assert.NotEmpty(t, o.ID)
		notifier.wait(t)
	})

	t.Run("updates_existing_order_preserving_status", func(t *testing.T) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		svc := newTestService(repo, notifier)

		_, err := svc.SubmitEmail(context.Background(), "O1", "a@x.com", order.Cart{"item1": 2})
		require.NoError(t, err)
		notifier.wait(t)
		_, err = svc.SubmitCode(context.Background(), "O1", "a@x.com", "4821")
		require.NoError(t, err)
		notifier.wait(t)

		o, err := svc.SubmitEmail(context.Background(), "O1", "b@x.com", order.Cart{"item1": 3})
		require.NoError(t, err)
		notifier.wait(t)

		assert.Equal(t, "b@x.com", o.Email)
		assert.Equal(t, order.Cart{"item1": 3}, o.Cart)
		assert.Equal(t, order.StatusPendingCode, o.Status, "status must not be reset by a repeated email submission")
		assert.Equal(t, "4821", o.Code)
	})

	t.Run("notify_failure_does_not_fail_request", func(t *testing.T) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		notifier.err = errors.New("bot unreachable")
		svc := newTestService(repo, notifier)

		o, err := svc.SubmitEmail(context.Background(), "O1", "a@x.com", order.Cart{"item1": 2})
		require.NoError(t, err)
		assert.Equal(t, order.StatusPendingEmail, o.Status)
		notifier.wait(t)
	})
}

func TestService_SubmitCode(t *testing.T) {
	t.Run("missing_fields", func(t *testing.T) {
		svc := newTestService(newMemoryRepository(), newMockNotifier())
		for _, args := range [][3]string{
			{"", "a@x.com", "4821"},
			{"O1", "", "4821"},
			{"O1", "a@x.com", ""},
		} {
			_, err := svc.SubmitCode(context.Background(), args[0], args[1], args[2])
			assert.ErrorIs(t, err, order.ErrValidation)
		}
	})

	t.Run("unknown_order", func(t *testing.T) {
		svc := newTestService(newMemoryRepository(), newMockNotifier())
		_, err := svc.SubmitCode(context.Background(), "missing", "a@x.com", "4821")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("transitions_to_pending_code", func(t *testing.T) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		svc := newTestService(repo, notifier)

		_, err := svc.SubmitEmail(context.Background(), "O1", "a@x.com", order.Cart{"item1": 2})
		require.NoError(t, err)
		notifier.wait(t)

		o, err := svc.SubmitCode(context.Background(), "O1", "a@x.com", "4821")
		require.NoError(t, err)
		assert.Equal(t, order.StatusPendingCode, o.Status)
		assert.Equal(t, "4821", o.Code)
		require.NotNil(t, o.CodeSubmittedAt)
		assert.Equal(t, 20.0, o.Amount)

		n := notifier.wait(t)
		assert.Equal(t, order.StageCodeSubmitted, n.Stage)
		assert.Equal(t, "4821", n.Code)
	})

	t.Run("never_reverts_terminal_order", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.orders["O1"] = order.Order{ID: "O1", Email: "a@x.com", Status: order.StatusCompleted}
		svc := newTestService(repo, newMockNotifier())

		_, err := svc.SubmitCode(context.Background(), "O1", "a@x.com", "4821")
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		stored, err := repo.GetByID(context.Background(), "O1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, stored.Status)
	})
}

func TestService_ApplyStatusUpdate(t *testing.T) {
	setup := func(t *testing.T) (order.Service, *memoryRepository, *mockNotifier) {
		repo := newMemoryRepository()
		notifier := newMockNotifier()
		svc := newTestService(repo, notifier)

		_, err := svc.SubmitEmail(context.Background(), "O1", "a@x.com", order.Cart{"item1": 2})
		require.NoError(t, err)
		notifier.wait(t)
		_, err = svc.SubmitCode(context.Background(), "O1", "a@x.com", "4821")
		require.NoError(t, err)
		notifier.wait(t)

		return svc, repo, notifier
	}

	t.Run("wrong_secret_never_mutates", func(t *testing.T) {
		svc, repo, _ := setup(t)

		_, err := svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusCompleted, "", "wrong")
		assert.ErrorIs(t, err, order.ErrUnauthorized)

		stored, err := repo.GetByID(context.Background(), "O1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusPendingCode, stored.Status)
		assert.Nil(t, stored.CompletedAt)
	})

	t.Run("completed_sets_completed_at", func(t *testing.T) {
		svc, repo, _ := setup(t)

		o, err := svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusCompleted, "", testSecret)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, o.Status)
		require.NotNil(t, o.CompletedAt)

		stored, err := repo.GetByID(context.Background(), "O1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusCompleted, stored.Status)
	})

	t.Run("rejected_stores_comment", func(t *testing.T) {
		svc, repo, _ := setup(t)

		o, err := svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusRejected, "suspicious code", testSecret)
		require.NoError(t, err)
		assert.Equal(t, order.StatusRejected, o.Status)
		assert.Equal(t, "suspicious code", o.AdminComment)
		assert.Nil(t, o.CompletedAt)

		stored, err := repo.GetByID(context.Background(), "O1")
		require.NoError(t, err)
		assert.Equal(t, "suspicious code", stored.AdminComment)
	})

	t.Run("missing_status", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.ApplyStatusUpdate(context.Background(), "O1", "", "", testSecret)
		assert.ErrorIs(t, err, order.ErrValidation)
	})

	t.Run("unknown_order", func(t *testing.T) {
		svc, _, _ := setup(t)
		_, err := svc.ApplyStatusUpdate(context.Background(), "missing", order.StatusCompleted, "", testSecret)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("illegal_transition_rejected", func(t *testing.T) {
		svc, repo, _ := setup(t)

		_, err := svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusRejected, "", testSecret)
		require.NoError(t, err)

		_, err = svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusCompleted, "", testSecret)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)

		stored, err := repo.GetByID(context.Background(), "O1")
		require.NoError(t, err)
		assert.Equal(t, order.StatusRejected, stored.Status)
	})

	t.Run("same_status_is_noop", func(t *testing.T) {
		svc, _, _ := setup(t)
		o, err := svc.ApplyStatusUpdate(context.Background(), "O1", order.StatusPendingCode, "", testSecret)
		require.NoError(t, err)
		assert.Equal(t, order.StatusPendingCode, o.Status)
	})
}

func TestService_GetOrder(t *testing.T) {
	t.Run("unknown_order", func(t *testing.T) {
		svc := newTestService(newMemoryRepository(), newMockNotifier())
		_, err := svc.GetOrder(context.Background(), "missing")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})

	t.Run("legacy_record_reports_unknown_status", func(t *testing.T) {
		repo := newMemoryRepository()
		repo.orders["legacy"] = order.Order{ID: "legacy", Email: "a@x.com"}
		svc := newTestService(repo, newMockNotifier())

		o, err := svc.GetOrder(context.Background(), "legacy")
		require.NoError(t, err)
		assert.Equal(t, order.StatusUnknown, o.Status)
	})
}

func TestStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{"email_to_code", order.StatusPendingEmail, order.StatusPendingCode, true},
		{"code_to_completed", order.StatusPendingCode, order.StatusCompleted, true},
		{"code_to_rejected", order.StatusPendingCode, order.StatusRejected, true},
		{"approved_to_completed", order.StatusApproved, order.StatusCompleted, true},
		{"completed_is_terminal", order.StatusCompleted, order.StatusPendingCode, false},
		{"rejected_is_terminal", order.StatusRejected, order.StatusCompleted, false},
		{"email_cannot_skip_to_completed", order.StatusPendingEmail, order.StatusCompleted, false},
		{"unknown_can_recover", order.StatusUnknown, order.StatusPendingCode, true},
		{"same_status_allowed", order.StatusPendingCode, order.StatusPendingCode, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}
