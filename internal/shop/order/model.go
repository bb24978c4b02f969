package order

import "time"

type Status string

const (
	StatusPendingEmail Status = "pending_email"
	StatusPendingCode  Status = "pending_code"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusCompleted    Status = "completed"
	StatusUnknown      Status = "unknown"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed out of s.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// Cart maps an item identifier to its quantity.
type Cart map[string]int

// Order is the shop's persistent record of a customer purchase, tracked from
// email submission through admin review.
type Order struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Cart            Cart       `json:"cart"`
	Code            string     `json:"code,omitempty"`
	Amount          float64    `json:"amount"`
	Status          Status     `json:"status"`
	AdminComment    string     `json:"admin_comment,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	CodeSubmittedAt *time.Time `json:"code_submitted_at,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

var allowedTransitions = map[Status]map[Status]bool{
	StatusPendingEmail: {
		StatusPendingCode: true,
	},
	StatusPendingCode: {
		StatusApproved:  true,
		StatusRejected:  true,
		StatusCompleted: true,
	},
	StatusApproved: {
		StatusCompleted: true,
	},
	// Records written before the status field existed carry "unknown" and may
	// move to any live status.
	StatusUnknown: {
		StatusPendingEmail: true,
		StatusPendingCode:  true,
		StatusApproved:     true,
		StatusRejected:     true,
		StatusCompleted:    true,
	},
	StatusCompleted: {},
	StatusRejected:  {},
}

// CanTransition reports whether moving from s to next is legal. Setting the
// current status again is treated as legal and handled as a no-op upstream.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	return allowedTransitions[s][next]
}
