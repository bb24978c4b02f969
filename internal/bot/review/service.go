package review

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// ShopGateway pushes admin decisions back to the shop service. Calls are
// best-effort: the service logs failures and moves on, so the shop's view may
// lag or diverge until the next explicit update.
type ShopGateway interface {
	UpdateOrderStatus(ctx context.Context, orderID, status, adminComment string) error
}

// Notifier surfaces review entries to the administrator and marks resolved
// prompts. Implemented by the Telegram layer.
type Notifier interface {
	SendOrderPrompt(ctx context.Context, e Entry, stage Stage) (messageID int, err error)
	EditOrderResolved(ctx context.Context, e Entry) error
}

// Shop order statuses this service writes back.
const (
	shopStatusCompleted = "completed"
	shopStatusRejected  = "rejected"
)

type Service struct {
	queue    *Queue
	shop     ShopGateway
	notifier Notifier

	retention     time.Duration
	sweepInterval time.Duration
}

func NewService(queue *Queue, shop ShopGateway, retention, sweepInterval time.Duration) *Service {
	return &Service{
		queue:         queue,
		shop:          shop,
		retention:     retention,
		sweepInterval: sweepInterval,
	}
}

// SetNotifier wires the Telegram layer in after construction; the bot needs
// the service for callbacks, so the two are linked in main.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// Queue exposes the underlying review table for the diagnostics endpoints.
func (s *Service) Queue() *Queue {
	return s.queue
}

// ReceiveNotification handles an inbound order notification. Stages that fail
// the emission predicate are accepted silently. A stage that already produced
// a prompt never produces a second one.
func (s *Service) ReceiveNotification(ctx context.Context, n Notification) error {
	if !n.ShouldPrompt() {
		log.Debug().Str("order_id", n.OrderID).Str("stage", string(n.Stage)).Msg("notification suppressed by emission predicate")
		return nil
	}

	entry, alreadyNotified := s.queue.Upsert(n, time.Now().UTC())
	if alreadyNotified {
		log.Debug().Str("order_id", n.OrderID).Str("stage", string(n.Stage)).Msg("duplicate notification for stage, prompt not repeated")
		return nil
	}

	if s.notifier == nil {
		return fmt.Errorf("review: no notifier configured")
	}

	messageID, err := s.notifier.SendOrderPrompt(ctx, entry, n.Stage)
	if err != nil {
		// Leave the stage unmarked so a later notification may still prompt.
		log.Error().Err(err).Str("order_id", n.OrderID).Msg("failed to send review prompt")
		return fmt.Errorf("review: failed to send prompt for order %s: %w", n.OrderID, err)
	}

	s.queue.MarkNotified(n.OrderID, n.Stage, messageID)
	log.Info().Str("order_id", n.OrderID).Str("stage", string(n.Stage)).Int("message_id", messageID).Msg("review prompt sent")

	return nil
}

// Decide applies an administrator's verdict. The shop callback is fired
// best-effort before the local entry flips; a failed callback is logged and
// the decision still takes effect locally.
func (s *Service) Decide(ctx context.Context, orderID string, decision Decision, comment string) (Entry, error) {
	if _, ok := s.queue.Get(orderID); !ok {
		return Entry{}, ErrEntryNotFound
	}

	var status Status
	var shopStatus string
	switch decision {
	case DecisionApprove:
		status = StatusApproved
		shopStatus = shopStatusCompleted
	case DecisionReject:
		status = StatusRejected
		shopStatus = shopStatusRejected
	default:
		return Entry{}, fmt.Errorf("review: unknown decision %q", decision)
	}

	entry, err := s.queue.SetStatus(orderID, status, comment, time.Now().UTC())
	if err != nil {
		return entry, err
	}

	if err := s.shop.UpdateOrderStatus(ctx, orderID, shopStatus, comment); err != nil {
		log.Warn().Err(err).Str("order_id", orderID).Str("status", shopStatus).Msg("failed to push decision to shop service")
	}

	if s.notifier != nil && entry.MessageID != 0 {
		if err := s.notifier.EditOrderResolved(ctx, entry); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("failed to edit review prompt")
		}
	}

	log.Info().Str("order_id", orderID).Str("decision", string(decision)).Msg("review entry decided")

	return entry, nil
}

// RelayStatusUpdate forwards an operator-initiated status change to the shop
// service and mirrors it onto the local entry when one is still pending.
func (s *Service) RelayStatusUpdate(ctx context.Context, orderID, status, comment string) error {
	if err := s.shop.UpdateOrderStatus(ctx, orderID, status, comment); err != nil {
		return fmt.Errorf("review: failed to relay status update for order %s: %w", orderID, err)
	}

	var local Status
	switch status {
	case shopStatusCompleted:
		local = StatusApproved
	case shopStatusRejected:
		local = StatusRejected
	default:
		return nil
	}

	entry, err := s.queue.SetStatus(orderID, local, comment, time.Now().UTC())
	if err != nil {
		// No entry, or already decided: the relay itself succeeded.
		return nil
	}

	if s.notifier != nil && entry.MessageID != 0 {
		if err := s.notifier.EditOrderResolved(ctx, entry); err != nil {
			log.Warn().Err(err).Str("order_id", orderID).Msg("failed to edit review prompt")
		}
	}

	return nil
}

// RunSweeper drops aged entries on a fixed ticker until ctx is cancelled.
func (s *Service) RunSweeper(ctx context.Context) error {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("retention sweeper stopped")
			return nil
		case <-ticker.C:
			if removed := s.queue.Sweep(s.retention); removed > 0 {
				log.Info().Int("removed", removed).Msg("swept aged review entries")
			}
		}
	}
}
