package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	"go.uber.org/zap"
)

// BookingUseCase is the operation surface consumed by the API layer. It is
// the sole authority over booking status and payment status.
type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
	Confirm(ctx context.Context, id string) (*domain.Booking, error)
	Cancel(ctx context.Context, id, reason string) (*domain.Booking, error)
	MarkPayment(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Booking, error)
	RequestModification(ctx context.Context, id string, modType domain.ModificationType, details string) (*domain.Booking, error)
	ApproveModification(ctx context.Context, id string, input ApprovalInput) (*domain.Booking, error)
	DenyModification(ctx context.Context, id, note string) (*domain.Booking, error)
	AddMessage(ctx context.Context, id, sender, content string) (*domain.Booking, error)
}

// Store is the slice of the booking store the service needs.
type Store interface {
	Create(ctx context.Context, booking *domain.Booking) error
	Get(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, id string, fn func(*domain.Booking) error) (*domain.Booking, error)
}

// Cache invalidation hook for the query-side listing cache.
type Cache interface {
	InvalidateBookings(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// Dispatcher delivers events to in-process subscribers.
type Dispatcher interface {
	Dispatch(event domain.BookingEvent)
}

type BookingService struct {
	store              Store
	cache              Cache
	producer           Producer
	dispatcher         Dispatcher
	bookingTopic       string
	notificationsTopic string
	logger             *zap.Logger
}

type CreateBookingInput struct {
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email"`
	CustomerPhone string    `json:"customer_phone"`
	PackageRef    string    `json:"package_ref"`
	Destination   string    `json:"destination"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Guests        int       `json:"guests"`
	Amount        float64   `json:"amount"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithDispatcher(d Dispatcher) BookingServiceOption {
	return func(s *BookingService) {
		s.dispatcher = d
	}
}

func WithCache(c Cache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = c
	}
}

func WithLogger(l *zap.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.logger = l
	}
}

func NewBookingService(store Store, producer Producer, bookingTopic string, opts ...BookingServiceOption) *BookingService {
	service := &BookingService{
		store:        store,
		producer:     producer,
		bookingTopic: bookingTopic,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if strings.TrimSpace(input.CustomerName) == "" {
		return nil, errors.New("customer name is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return nil, errors.New("customer email is required")
	}
	if input.PackageRef == "" {
		return nil, errors.New("package reference is required")
	}
	if input.StartDate.After(input.EndDate) {
		return nil, errors.New("start date must not be after end date")
	}
	if input.Guests <= 0 {
		return nil, errors.New("guest count must be positive")
	}
	if input.Amount < 0 {
		return nil, errors.New("amount must not be negative")
	}

	ref, err := domain.NewBookingReference()
	if err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID: ref,
		Customer: domain.Customer{
			Name:  input.CustomerName,
			Email: input.CustomerEmail,
			Phone: input.CustomerPhone,
		},
		PackageRef:    input.PackageRef,
		Destination:   input.Destination,
		StartDate:     input.StartDate,
		EndDate:       input.EndDate,
		Guests:        input.Guests,
		Amount:        input.Amount,
		Status:        domain.BookingStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		Timeline: []domain.TimelineEntry{
			{Action: "booking created", Actor: domain.ActorCustomer},
		},
	}

	if err := s.store.Create(ctx, booking); err != nil {
		return nil, err
	}

	created, err := s.store.Get(ctx, booking.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventBookingCreated, created)
	return created, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	return s.store.Get(ctx, id)
}

func (s *BookingService) Confirm(ctx context.Context, id string) (*domain.Booking, error) {
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if b.Status != domain.BookingStatusPending {
			return fmt.Errorf("%w: cannot confirm booking in status %s", domain.ErrInvalidTransition, b.Status)
		}
		b.Status = domain.BookingStatusConfirmed
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "status changed to confirmed",
			Actor:  domain.ActorAdmin,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventBookingConfirmed, updated)
	return updated, nil
}

// Cancel moves a pending or confirmed booking to cancelled. A booking with an
// open modification request cannot be cancelled until the request is
// resolved. Cancellation never refunds automatically: when the booking was
// paid, the emitted event carries RefundRequired and the refund is a separate
// MarkPayment call.
func (s *BookingService) Cancel(ctx context.Context, id, reason string) (*domain.Booking, error) {
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if b.HasOpenModificationRequest() {
			return fmt.Errorf("%w: resolve the open modification request before cancelling", domain.ErrInvalidTransition)
		}
		if b.Status != domain.BookingStatusPending && b.Status != domain.BookingStatusConfirmed {
			return fmt.Errorf("%w: cannot cancel booking in status %s", domain.ErrInvalidTransition, b.Status)
		}
		b.Status = domain.BookingStatusCancelled
		action := "status changed to cancelled"
		if reason != "" {
			action += ": " + reason
		}
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: action,
			Actor:  domain.ActorAdmin,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventBookingCancelled, updated)
	return updated, nil
}

func (s *BookingService) MarkPayment(ctx context.Context, id string, status domain.PaymentStatus) (*domain.Booking, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("%w: unknown payment status %q", domain.ErrInvalidPaymentTransition, status)
	}
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if !b.PaymentStatus.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPaymentTransition, b.PaymentStatus, status)
		}
		b.PaymentStatus = status
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "payment status changed to " + status.String(),
			Actor:  domain.ActorAdmin,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventPaymentUpdated, updated)
	return updated, nil
}

// AddMessage appends to the conversation thread. The message itself is the
// audit artifact; a timeline entry is recorded alongside it so the history
// view stays complete.
func (s *BookingService) AddMessage(ctx context.Context, id, sender, content string) (*domain.Booking, error) {
	if sender != domain.ActorCustomer && sender != domain.ActorAdmin {
		return nil, fmt.Errorf("unknown message sender %q", sender)
	}
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("message content is required")
	}
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		b.Messages = append(b.Messages, domain.Message{Sender: sender, Content: content})
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "message added",
			Actor:  sender,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventMessageAdded, updated)
	return updated, nil
}

// publish emits the domain event to the in-process dispatcher and to Kafka.
// Delivery is fire-and-forget: failures are logged and never roll back the
// state change that triggered them.
func (s *BookingService) publish(ctx context.Context, eventType string, b *domain.Booking) {
	event := domain.BookingEvent{
		Type:           eventType,
		BookingID:      b.ID,
		Status:         b.Status,
		PaymentStatus:  b.PaymentStatus,
		CustomerEmail:  b.Customer.Email,
		Amount:         b.Amount,
		RefundRequired: eventType == domain.EventBookingCancelled && b.PaymentStatus == domain.PaymentStatusPaid,
		OccurredAt:     time.Now(),
	}

	if s.dispatcher != nil {
		s.dispatcher.Dispatch(event)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateBookings(ctx); err != nil {
			s.logger.Warn("invalidate bookings cache", zap.Error(err))
		}
	}
	if s.producer == nil || s.bookingTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, b.ID, event); err != nil {
		s.logger.Warn("publish booking event",
			zap.String("booking_id", b.ID),
			zap.String("event_type", eventType),
			zap.Error(err))
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, b.ID, event); err != nil {
			s.logger.Warn("publish notification event",
				zap.String("booking_id", b.ID),
				zap.String("event_type", eventType),
				zap.Error(err))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
