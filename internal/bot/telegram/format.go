package telegram

import (
	"fmt"
	"sort"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/DESTRKOD/duck-bot/internal/bot/review"
)

const (
	callbackApprovePrefix = "approve:"
	callbackRejectPrefix  = "reject:"
)

func orderPromptText(e review.Entry, stage review.Stage) string {
	var b strings.Builder

	switch stage {
	case review.StageCodeSubmitted:
		b.WriteString("🔢 Order awaiting code review\n\n")
	default:
		b.WriteString("📧 New order\n\n")
	}

	fmt.Fprintf(&b, "Order: %s\n", e.OrderID)
	fmt.Fprintf(&b, "Email: %s\n", e.Email)

	if len(e.Items) > 0 {
		b.WriteString("Items:\n")
		for _, item := range sortedItems(e.Items) {
			fmt.Fprintf(&b, "  • %s × %d\n", item, e.Items[item])
		}
	}
	fmt.Fprintf(&b, "Amount: %.2f\n", e.Amount)

	if e.Code != "" {
		fmt.Fprintf(&b, "Code: %s\n", e.Code)
	}

	return b.String()
}

func resolvedText(e review.Entry) string {
	var b strings.Builder

	switch e.Status {
	case review.StatusApproved:
		fmt.Fprintf(&b, "✅ Order %s approved\n", e.OrderID)
	case review.StatusRejected:
		fmt.Fprintf(&b, "❌ Order %s rejected\n", e.OrderID)
	default:
		fmt.Fprintf(&b, "Order %s: %s\n", e.OrderID, e.Status)
	}

	fmt.Fprintf(&b, "Email: %s\n", e.Email)
	if e.AdminComment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", e.AdminComment)
	}

	return b.String()
}

func decisionKeyboard(orderID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Approve", callbackApprovePrefix+orderID),
			tgbotapi.NewInlineKeyboardButtonData("❌ Reject", callbackRejectPrefix+orderID),
		),
	)
}

func pendingListText(entries []review.Entry) string {
	var pending []review.Entry
	for _, e := range entries {
		if e.Status == review.StatusPending {
			pending = append(pending, e)
		}
	}

	if len(pending) == 0 {
		return "No orders awaiting review."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Orders awaiting review (%d):\n\n", len(pending))
	for _, e := range pending {
		fmt.Fprintf(&b, "• %s — %s, amount %.2f", e.OrderID, e.Email, e.Amount)
		if e.Code != "" {
			fmt.Fprintf(&b, ", code %s", e.Code)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func sortedItems(items map[string]int) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
