package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/travelbook/internal/domain"
	"go.uber.org/zap"
)

// Sender delivers customer notifications for booking events. Actual SMTP
// delivery is owned by the mail subsystem; this writes the rendered
// notification to stdout and logs the delivery.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

func (s *Sender) Send(ctx context.Context, event domain.BookingEvent) error {
	subject := subjectFor(event)
	fmt.Printf("send email to %s: %s (booking %s)\n", event.CustomerEmail, subject, event.BookingID)
	s.logger.Info("notification sent",
		zap.String("booking_id", event.BookingID),
		zap.String("event_type", event.Type),
		zap.String("to", event.CustomerEmail))
	return nil
}

func subjectFor(event domain.BookingEvent) string {
	switch event.Type {
	case domain.EventBookingCreated:
		return "We received your booking"
	case domain.EventBookingConfirmed:
		return "Your booking is confirmed"
	case domain.EventBookingCancelled:
		if event.RefundRequired {
			return "Your booking was cancelled, a refund is on its way"
		}
		return "Your booking was cancelled"
	case domain.EventPaymentUpdated:
		return fmt.Sprintf("Payment update: %s", event.PaymentStatus)
	case domain.EventModificationRequested:
		return "We received your change request"
	case domain.EventModificationApproved:
		return "Your change request was approved"
	case domain.EventModificationDenied:
		return "Your change request was declined"
	case domain.EventMessageAdded:
		return "New message on your booking"
	default:
		return fmt.Sprintf("Booking update: %s", event.Type)
	}
}
