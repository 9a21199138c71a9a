package domain

import "time"

// Booking event types published after successful mutations.
const (
	EventBookingCreated        = "booking_created"
	EventBookingConfirmed      = "booking_confirmed"
	EventBookingCancelled      = "booking_cancelled"
	EventPaymentUpdated        = "payment_updated"
	EventModificationRequested = "modification_requested"
	EventModificationApproved  = "modification_approved"
	EventModificationDenied    = "modification_denied"
	EventMessageAdded          = "message_added"
)

// BookingEvent is the payload handed to the notification dispatcher and
// published to Kafka. Delivery is best-effort; the booking state of record
// never depends on it.
type BookingEvent struct {
	Type           string        `json:"type"`
	BookingID      string        `json:"booking_id"`
	Status         BookingStatus `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	CustomerEmail  string        `json:"customer_email"`
	Amount         float64       `json:"amount"`
	RefundRequired bool          `json:"refund_required,omitempty"`
	OccurredAt     time.Time     `json:"occurred_at"`
}
