package order

import "errors"

var ErrInvalidTransition = errors.New("invalid order status transition")

// Status is the lifecycle of an order created from a checkout session.
// PAID and STOCK_FAILED are terminal; once reached they must never be
// overwritten by a later, possibly out-of-order, webhook event.
type Status string

const (
	StatusPaymentPending Status = "PAYMENT_PENDING"
	StatusPaid           Status = "PAID"
	StatusPaymentFailed  Status = "PAYMENT_FAILED"
	StatusStockFailed    Status = "STOCK_FAILED"
)

var allowedTransitions = map[Status]map[Status]bool{
	StatusPaymentPending: {
		StatusPaid:          true,
		StatusPaymentFailed: true,
		StatusStockFailed:   true,
	},
	// PAYMENT_FAILED may be superseded by a later legitimate success:
	// the upsert re-derives PAYMENT_PENDING only for non-terminal rows,
	// so the failed->paid path goes through the pending baseline.
	StatusPaymentFailed: {
		StatusPaid:        true,
		StatusStockFailed: true,
	},
	StatusPaid:        {},
	StatusStockFailed: {},
}

func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusPaymentPending, StatusPaid, StatusPaymentFailed, StatusStockFailed:
		return Status(value), true
	default:
		return "", false
	}
}

// IsTerminal reports whether the status freezes the order against any
// further lifecycle writes.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusStockFailed
}

func (s Status) CanTransitionTo(next Status) bool {
	targets, ok := allowedTransitions[s]
	if !ok {
		return false
	}
	return targets[next]
}

// Transition validates the move from s to next.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransitionTo(next) {
		return s, ErrInvalidTransition
	}
	return next, nil
}

func (s Status) String() string {
	return string(s)
}
