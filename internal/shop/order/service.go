package order

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

// Stage names the trigger point of an outbound notification, distinct from the
// order status.
const (
	StageEmailSubmitted = "email_submitted"
	StageCodeSubmitted  = "code_submitted"
)

// Notification is the payload sent to the bot service when an order advances.
type Notification struct {
	OrderID string  `json:"order_id"`
	Email   string  `json:"email"`
	Items   Cart    `json:"items"`
	Amount  float64 `json:"amount"`
	Code    string  `json:"code,omitempty"`
	Stage   string  `json:"stage"`
}

// Notifier delivers order notifications to the review side. Delivery is
// best-effort: the service logs and discards any error, so implementations
// must not assume their failures are ever retried.
type Notifier interface {
	NotifyOrder(ctx context.Context, n Notification) error
}

// Pricer derives an order total from a cart. Prices come from the product
// catalog; items without a known price contribute zero.
type Pricer interface {
	CartTotal(cart map[string]int) float64
}

type Service interface {
	SubmitEmail(ctx context.Context, orderID, email string, cart Cart) (*Order, error)
	SubmitCode(ctx context.Context, orderID, email, code string) (*Order, error)
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ApplyStatusUpdate(ctx context.Context, orderID string, status Status, adminComment, secret string) (*Order, error)
}

type service struct {
	// mu serializes read-modify-write cycles against the repository so
	// concurrent handlers cannot interleave on the same record.
	mu       sync.Mutex
	repo     Repository
	notifier Notifier
	pricer   Pricer
	secret   string
}

func NewService(repo Repository, notifier Notifier, pricer Pricer, secret string) Service {
	return &service{
		repo:     repo,
		notifier: notifier,
		pricer:   pricer,
		secret:   secret,
	}
}

func (s *service) SubmitEmail(ctx context.Context, orderID, email string, cart Cart) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if orderID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, fmt.Errorf("service: failed to generate order id: %w", err)
		}
		orderID = id.String()
	}

	now := time.Now().UTC()

	o, err := s.repo.GetByID(ctx, orderID)
	switch {
	case err == nil:
		// Existing record: refresh the customer inputs, keep everything else.
		o.Email = email
		o.Cart = cart
		o.UpdatedAt = now
	case errors.Is(err, ErrOrderNotFound):
		o = &Order{
			ID:        orderID,
			Email:     email,
			Cart:      cart,
			Status:    StatusPendingEmail,
			CreatedAt: now,
			UpdatedAt: now,
		}
	default:
		return nil, fmt.Errorf("service: failed to load order %s: %w", orderID, err)
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to save order %s: %w", orderID, err)
	}

	log.Info().Str("order_id", o.ID).Str("email", o.Email).Msg("email submitted")

	s.notifyAsync(Notification{
		OrderID: o.ID,
		Email:   o.Email,
		Items:   o.Cart,
		Amount:  s.pricer.CartTotal(o.Cart),
		Stage:   StageEmailSubmitted,
	})

	return o, nil
}

func (s *service) SubmitCode(ctx context.Context, orderID, email, code string) (*Order, error) {
	if orderID == "" || email == "" || code == "" {
		return nil, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to load order %s: %w", orderID, err)
	}

	if !o.Status.CanTransition(StatusPendingCode) {
		log.Warn().Str("order_id", orderID).Str("status", o.Status.String()).Msg("code submitted for order past review")
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	o.Code = code
	o.Status = StatusPendingCode
	o.Amount = s.pricer.CartTotal(o.Cart)
	o.CodeSubmittedAt = &now
	o.UpdatedAt = now

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to save order %s: %w", orderID, err)
	}

	log.Info().Str("order_id", o.ID).Msg("confirmation code submitted")

	s.notifyAsync(Notification{
		OrderID: o.ID,
		Email:   o.Email,
		Items:   o.Cart,
		Amount:  o.Amount,
		Code:    o.Code,
		Stage:   StageCodeSubmitted,
	})

	return o, nil
}

func (s *service) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to load order %s: %w", orderID, err)
	}

	if o.Status == "" {
		o.Status = StatusUnknown
	}

	return o, nil
}

func (s *service) ApplyStatusUpdate(ctx context.Context, orderID string, status Status, adminComment, secret string) (*Order, error) {
	// The secret gate comes first: a mismatch must not touch stored state.
	if secret != s.secret {
		return nil, ErrUnauthorized
	}
	if orderID == "" || status == "" {
		return nil, ErrValidation
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("service: failed to load order %s: %w", orderID, err)
	}

	if o.Status == status {
		log.Info().Str("order_id", orderID).Str("status", status.String()).Msg("order status already set")
		return o, nil
	}

	if !o.Status.CanTransition(status) {
		log.Warn().
			Str("order_id", orderID).
			Str("current_status", o.Status.String()).
			Str("new_status", status.String()).
			Msg("rejected status transition")
		return nil, ErrInvalidStatusTransition
	}

	now := time.Now().UTC()
	o.Status = status
	o.UpdatedAt = now
	if adminComment != "" {
		o.AdminComment = adminComment
	}
	if status == StatusCompleted {
		o.CompletedAt = &now
	}

	if err := s.repo.Save(ctx, o); err != nil {
		return nil, fmt.Errorf("service: failed to save order %s: %w", orderID, err)
	}

	log.Info().Str("order_id", orderID).Str("status", status.String()).Msg("order status updated")

	return o, nil
}

// notifyAsync fires a best-effort notification without blocking the request.
// Failures are logged and dropped; the review side may simply never hear about
// this stage.
func (s *service) notifyAsync(n Notification) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.notifier.NotifyOrder(ctx, n); err != nil {
			log.Warn().Err(err).Str("order_id", n.OrderID).Str("stage", n.Stage).Msg("failed to notify bot service")
		}
	}()
}
