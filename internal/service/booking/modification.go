package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
)

// ApprovalInput carries the concrete field changes for an approval. Which
// fields are required depends on the request's declared type; an approval
// missing them fails with ErrIncompleteApproval and leaves the booking
// untouched.
type ApprovalInput struct {
	Note        string     `json:"note"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
	Guests      *int       `json:"guests,omitempty"`
	PackageRef  *string    `json:"package_ref,omitempty"`
	Destination *string    `json:"destination,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
}

// RequestModification opens a change request against the booking. At most one
// request may be pending per booking; the check runs inside the record's
// critical section, so a concurrent race yields exactly one winner.
func (s *BookingService) RequestModification(ctx context.Context, id string, modType domain.ModificationType, details string) (*domain.Booking, error) {
	if !modType.IsValid() {
		return nil, fmt.Errorf("unknown modification type %q", modType)
	}
	if strings.TrimSpace(details) == "" {
		return nil, errors.New("modification details are required")
	}

	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if b.Status == domain.BookingStatusCancelled {
			return fmt.Errorf("%w: booking is cancelled", domain.ErrInvalidState)
		}
		if b.HasOpenModificationRequest() {
			return fmt.Errorf("%w: booking %s", domain.ErrConflictingRequest, b.ID)
		}
		b.ModificationRequest = &domain.ModificationRequest{
			RequestedAt: time.Now(),
			Type:        modType,
			Details:     details,
			Status:      domain.ModificationStatusPending,
			PriorStatus: b.Status,
		}
		b.Status = domain.BookingStatusModificationRequested
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "modification requested: " + modType.String(),
			Actor:  domain.ActorCustomer,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventModificationRequested, updated)
	return updated, nil
}

// ApproveModification resolves the open request, applies the approved field
// changes and returns the booking to the status it held before the request
// (confirmed stays confirmed, otherwise pending).
func (s *BookingService) ApproveModification(ctx context.Context, id string, input ApprovalInput) (*domain.Booking, error) {
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if !b.HasOpenModificationRequest() {
			return fmt.Errorf("%w: no open modification request", domain.ErrInvalidState)
		}
		if err := applyApproval(b, input); err != nil {
			return err
		}

		now := time.Now()
		req := b.ModificationRequest
		req.Status = domain.ModificationStatusApproved
		req.AdminNote = input.Note
		req.ResolvedAt = &now

		if req.PriorStatus == domain.BookingStatusConfirmed {
			b.Status = domain.BookingStatusConfirmed
		} else {
			b.Status = domain.BookingStatusPending
		}
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "modification approved: " + req.Type.String(),
			Actor:  domain.ActorAdmin,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventModificationApproved, updated)
	return updated, nil
}

// DenyModification resolves the open request without applying changes and
// restores the booking to its pre-request status.
func (s *BookingService) DenyModification(ctx context.Context, id, note string) (*domain.Booking, error) {
	updated, err := s.store.Update(ctx, id, func(b *domain.Booking) error {
		if !b.HasOpenModificationRequest() {
			return fmt.Errorf("%w: no open modification request", domain.ErrInvalidState)
		}
		now := time.Now()
		req := b.ModificationRequest
		req.Status = domain.ModificationStatusDenied
		req.AdminNote = note
		req.ResolvedAt = &now

		b.Status = req.PriorStatus
		b.Timeline = append(b.Timeline, domain.TimelineEntry{
			Action: "modification denied: " + req.Type.String(),
			Actor:  domain.ActorAdmin,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventModificationDenied, updated)
	return updated, nil
}

// applyApproval validates the approval payload against the request type and
// applies the change. Any validation failure is reported before the booking
// is touched.
func applyApproval(b *domain.Booking, input ApprovalInput) error {
	switch b.ModificationRequest.Type {
	case domain.ModificationTypeDateChange:
		if input.StartDate == nil || input.EndDate == nil {
			return fmt.Errorf("%w: date_change requires start_date and end_date", domain.ErrIncompleteApproval)
		}
		if input.StartDate.After(*input.EndDate) {
			return fmt.Errorf("%w: start date must not be after end date", domain.ErrIncompleteApproval)
		}
		b.StartDate = *input.StartDate
		b.EndDate = *input.EndDate
	case domain.ModificationTypeGuestCountChange:
		if input.Guests == nil {
			return fmt.Errorf("%w: guest_count_change requires guests", domain.ErrIncompleteApproval)
		}
		if *input.Guests <= 0 {
			return fmt.Errorf("%w: guest count must be positive", domain.ErrIncompleteApproval)
		}
		b.Guests = *input.Guests
	case domain.ModificationTypePackageChange:
		if input.PackageRef == nil || *input.PackageRef == "" {
			return fmt.Errorf("%w: package_change requires package_ref", domain.ErrIncompleteApproval)
		}
		if input.Amount != nil && *input.Amount < 0 {
			return fmt.Errorf("%w: amount must not be negative", domain.ErrIncompleteApproval)
		}
		b.PackageRef = *input.PackageRef
		if input.Destination != nil {
			b.Destination = *input.Destination
		}
		if input.Amount != nil {
			b.Amount = *input.Amount
		}
	default:
		return fmt.Errorf("%w: unsupported modification type %q", domain.ErrIncompleteApproval, b.ModificationRequest.Type)
	}
	return nil
}
