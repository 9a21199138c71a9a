package domain

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending               BookingStatus = "pending"
	BookingStatusConfirmed             BookingStatus = "confirmed"
	BookingStatusModificationRequested BookingStatus = "modification_requested"
	BookingStatusCancelled             BookingStatus = "cancelled"
)

// validStatusTransitions defines the booking status state machine.
var validStatusTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:               {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusModificationRequested},
	BookingStatusConfirmed:             {BookingStatusCancelled, BookingStatusModificationRequested},
	BookingStatusModificationRequested: {BookingStatusPending, BookingStatusConfirmed},
	BookingStatusCancelled:             {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := validStatusTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range validStatusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(validStatusTransitions[s]) == 0
}

func (s BookingStatus) String() string { return string(s) }

func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid booking status: %s", s)
	}
	return status, nil
}

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
)

// validPaymentTransitions allows pending to jump straight to paid, but never
// backwards from paid to partially_paid.
var validPaymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:       {PaymentStatusPartiallyPaid, PaymentStatusPaid},
	PaymentStatusPartiallyPaid: {PaymentStatusPaid},
	PaymentStatusPaid:          {PaymentStatusRefunded},
	PaymentStatusRefunded:      {},
}

func (s PaymentStatus) IsValid() bool {
	_, ok := validPaymentTransitions[s]
	return ok
}

func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	for _, t := range validPaymentTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s PaymentStatus) String() string { return string(s) }

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	status := PaymentStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid payment status: %s", s)
	}
	return status, nil
}

// Customer is a denormalized snapshot for display; the customer record itself
// is owned by an external subsystem.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

type Booking struct {
	ID          string    `json:"id"`
	Customer    Customer  `json:"customer"`
	PackageRef  string    `json:"package_ref"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Guests      int       `json:"guests"`
	Amount      float64   `json:"amount"`

	Status        BookingStatus `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	ModificationRequest *ModificationRequest `json:"modification_request,omitempty"`
	Timeline            []TimelineEntry      `json:"timeline"`
	Messages            []Message            `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy. Mutating operations work on a clone and publish
// it back, so snapshots handed to readers are never written to.
func (b *Booking) Clone() *Booking {
	c := *b
	if b.ModificationRequest != nil {
		mr := *b.ModificationRequest
		c.ModificationRequest = &mr
	}
	c.Timeline = make([]TimelineEntry, len(b.Timeline), len(b.Timeline)+1)
	copy(c.Timeline, b.Timeline)
	c.Messages = make([]Message, len(b.Messages), len(b.Messages)+1)
	copy(c.Messages, b.Messages)
	return &c
}

// HasOpenModificationRequest reports whether an unresolved request is attached.
func (b *Booking) HasOpenModificationRequest() bool {
	return b.ModificationRequest != nil && b.ModificationRequest.Status == ModificationStatusPending
}

const bookingRefChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewBookingReference generates a reference in the format "TRV-XXXXXX".
func NewBookingReference() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingRefChars))))
		if err != nil {
			return "", fmt.Errorf("generate booking reference: %w", err)
		}
		result[i] = bookingRefChars[n.Int64()]
	}
	return "TRV-" + string(result), nil
}
