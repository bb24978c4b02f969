// Package telegram drives the administrator-facing side of the review
// workflow: order prompts with inline Approve/Reject buttons, the two-turn
// reject-reason dialogue and a couple of read-only commands.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"

	"github.com/DESTRKOD/duck-bot/internal/bot/review"
)

// Bot is bound to a single administrator chat. Updates from any other chat
// are refused.
type Bot struct {
	api         *tgbotapi.BotAPI
	svc         *review.Service
	adminChatID int64
	sessions    *sessionStore
}

func New(token string, adminChatID int64, svc *review.Service) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: failed to create bot api: %w", err)
	}

	return &Bot{
		api:         api,
		svc:         svc,
		adminChatID: adminChatID,
		sessions:    newSessionStore(),
	}, nil
}

// Run consumes Telegram updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Info().Str("bot", b.api.Self.UserName).Msg("telegram bot started")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Info().Msg("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			switch {
			case update.CallbackQuery != nil:
				b.handleCallback(ctx, update.CallbackQuery)
			case update.Message != nil:
				b.handleMessage(ctx, update.Message)
			}
		}
	}
}

// SendOrderPrompt implements review.Notifier.
func (b *Bot) SendOrderPrompt(ctx context.Context, e review.Entry, stage review.Stage) (int, error) {
	msg := tgbotapi.NewMessage(b.adminChatID, orderPromptText(e, stage))
	msg.ReplyMarkup = decisionKeyboard(e.OrderID)

	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("telegram: failed to send order prompt: %w", err)
	}

	return sent.MessageID, nil
}

// EditOrderResolved implements review.Notifier: the original prompt loses its
// keyboard and shows the resolution instead.
func (b *Bot) EditOrderResolved(ctx context.Context, e review.Entry) error {
	edit := tgbotapi.NewEditMessageText(b.adminChatID, e.MessageID, resolvedText(e))
	if _, err := b.api.Send(edit); err != nil {
		return fmt.Errorf("telegram: failed to edit prompt message: %w", err)
	}
	return nil
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	// Always answer the callback so the client stops its spinner.
	defer func() {
		if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
			log.Warn().Err(err).Msg("failed to answer callback query")
		}
	}()

	if cb.Message == nil || cb.Message.Chat.ID != b.adminChatID {
		return
	}
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(cb.Data, callbackApprovePrefix):
		orderID := strings.TrimPrefix(cb.Data, callbackApprovePrefix)
		if _, err := b.svc.Decide(ctx, orderID, review.DecisionApprove, ""); err != nil {
			b.replyDecideError(chatID, orderID, err)
			return
		}

	case strings.HasPrefix(cb.Data, callbackRejectPrefix):
		orderID := strings.TrimPrefix(cb.Data, callbackRejectPrefix)
		if _, ok := b.svc.Queue().Get(orderID); !ok {
			b.reply(chatID, fmt.Sprintf("Order %s not found.", orderID))
			return
		}
		b.sessions.set(chatID, session{State: stateAwaitingRejectReason, OrderID: orderID})
		b.reply(chatID, fmt.Sprintf("Rejecting order %s. Send the reason as a message, or /cancel.", orderID))

	default:
		log.Warn().Str("data", cb.Data).Msg("unknown callback data")
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if chatID != b.adminChatID {
		b.reply(chatID, "This bot only serves the shop administrator.")
		return
	}

	if msg.IsCommand() {
		b.handleCommand(msg)
		return
	}

	sess := b.sessions.get(chatID)
	if sess.State == stateAwaitingRejectReason {
		b.sessions.clear(chatID)
		reason := strings.TrimSpace(msg.Text)
		if reason == "" {
			reason = "rejected by administrator"
		}
		if _, err := b.svc.Decide(ctx, sess.OrderID, review.DecisionReject, reason); err != nil {
			b.replyDecideError(chatID, sess.OrderID, err)
			return
		}
		b.reply(chatID, fmt.Sprintf("Order %s rejected.", sess.OrderID))
		return
	}

	b.reply(chatID, "Use /orders to list pending orders, or the buttons on an order prompt.")
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	switch msg.Command() {
	case "start":
		b.reply(chatID, "Order review bot.\n\n"+
			"/orders — orders awaiting review\n"+
			"/status — queue counters\n"+
			"/cancel — abort the current dialogue\n\n"+
			"New orders arrive as messages with Approve/Reject buttons.")

	case "orders":
		b.reply(chatID, pendingListText(b.svc.Queue().List()))

	case "status":
		counts := b.svc.Queue().Counts()
		b.reply(chatID, fmt.Sprintf("Pending: %d\nApproved: %d\nRejected: %d",
			counts[review.StatusPending], counts[review.StatusApproved], counts[review.StatusRejected]))

	case "cancel":
		b.sessions.clear(chatID)
		b.reply(chatID, "Cancelled.")

	default:
		b.reply(chatID, "Unknown command. Try /orders.")
	}
}

func (b *Bot) replyDecideError(chatID int64, orderID string, err error) {
	switch {
	case errors.Is(err, review.ErrEntryNotFound):
		b.reply(chatID, fmt.Sprintf("Order %s not found.", orderID))
	case errors.Is(err, review.ErrAlreadyDecided):
		b.reply(chatID, fmt.Sprintf("Order %s has already been decided.", orderID))
	default:
		log.Error().Err(err).Str("order_id", orderID).Msg("decision failed")
		b.reply(chatID, fmt.Sprintf("Failed to process order %s.", orderID))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		log.Warn().Err(err).Int64("chat_id", chatID).Msg("failed to send telegram message")
	}
}
