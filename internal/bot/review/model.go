package review

import (
	"errors"
	"time"
)

// Status of a review-table entry. Entries only move pending → approved or
// pending → rejected; the retention sweep removes them from any state.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) String() string {
	return string(s)
}

// Stage names the notification trigger point, distinct from the order status.
type Stage string

const (
	StageEmailSubmitted Stage = "email_submitted"
	StageCodeSubmitted  Stage = "code_submitted"
)

// Decision is an administrator's verdict on a pending entry.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

var (
	ErrEntryNotFound  = errors.New("review entry not found")
	ErrAlreadyDecided = errors.New("review entry already decided")
)

// Entry is the bot's in-memory mirror of an order awaiting human decision. It
// is intentionally lossy: entries are dropped by the retention sweep and are
// never persisted.
type Entry struct {
	OrderID      string         `json:"order_id"`
	Email        string         `json:"email"`
	Items        map[string]int `json:"items"`
	Amount       float64        `json:"amount"`
	Code         string         `json:"code,omitempty"`
	Status       Status         `json:"status"`
	AdminComment string         `json:"admin_comment,omitempty"`
	// MessageID is the Telegram message carrying the prompt, kept so the
	// prompt can be edited once the entry is decided.
	MessageID int            `json:"message_id,omitempty"`
	Notified  map[Stage]bool `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Notification is the inbound payload from the shop service.
type Notification struct {
	OrderID string
	Email   string
	Items   map[string]int
	Amount  float64
	Code    string
	Stage   Stage
}

// ShouldPrompt is the emission predicate: only an email submission, or a code
// submission actually carrying a code, is worth the administrator's attention.
// Transitional notifications without a code are deliberately suppressed.
func (n Notification) ShouldPrompt() bool {
	switch n.Stage {
	case StageEmailSubmitted:
		return true
	case StageCodeSubmitted:
		return n.Code != ""
	default:
		return false
	}
}
