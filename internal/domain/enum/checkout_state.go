package enum

import "encoding/json"

// CheckoutState is the single tagged state of a checkout session. Exactly one
// state is active at a time; there are no auxiliary booleans to contradict it.
type CheckoutState int

const (
	// StateCart: line items are being edited.
	StateCart CheckoutState = iota
	// StateCheckout: payment method and customer are being selected.
	StateCheckout
	// StateConfirmPending: the confirmation summary is shown, awaiting confirm.
	StateConfirmPending
	// StateSubmitting: a submission is in flight.
	StateSubmitting
	// StateCompleted: the sale is persisted and a receipt is available.
	StateCompleted
	// StateFailed: submission failed; cart and selections remain intact.
	StateFailed
)

func (s CheckoutState) String() string {
	switch s {
	case StateCart:
		return "cart"
	case StateCheckout:
		return "checkout"
	case StateConfirmPending:
		return "confirm_pending"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

func (s CheckoutState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
