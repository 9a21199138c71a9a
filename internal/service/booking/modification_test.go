package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestModification_Success(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	updated, err := service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusModificationRequested, updated.Status)
	require.NotNil(t, updated.ModificationRequest)
	assert.Equal(t, domain.ModificationStatusPending, updated.ModificationRequest.Status)
	assert.Equal(t, domain.ModificationTypeDateChange, updated.ModificationRequest.Type)
	assert.Equal(t, domain.BookingStatusPending, updated.ModificationRequest.PriorStatus)
	assert.Equal(t, "modification requested: date_change", updated.Timeline[len(updated.Timeline)-1].Action)
}

func TestRequestModification_ConflictWhenOneIsOpen(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	require.NoError(t, err)

	_, err = service.RequestModification(ctx, created.ID, domain.ModificationTypeGuestCountChange, "one more guest")
	assert.ErrorIs(t, err, domain.ErrConflictingRequest)
}

func TestRequestModification_RejectedWhenCancelled(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.Cancel(ctx, created.ID, "")
	require.NoError(t, err)

	_, err = service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRequestModification_UnknownType(t *testing.T) {
	service, _ := newTestService(t)
	created := mustCreate(t, service)

	_, err := service.RequestModification(context.Background(), created.ID, domain.ModificationType("seat_change"), "window seat")
	assert.Error(t, err)
}

func TestRequestModification_ConcurrentRaceHasOneWinner(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	const attempts = 10
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrConflictingRequest):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestApproveModification_DateChange_RestoresConfirmed(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.Confirm(ctx, created.ID)
	require.NoError(t, err)
	_, err = service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	require.NoError(t, err)

	newStart := time.Date(2026, 9, 17, 0, 0, 0, 0, time.UTC)
	newEnd := time.Date(2026, 9, 24, 0, 0, 0, 0, time.UTC)
	before, err := service.GetBooking(ctx, created.ID)
	require.NoError(t, err)

	approved, err := service.ApproveModification(ctx, created.ID, ApprovalInput{
		Note:      "approved, same hotel",
		StartDate: &newStart,
		EndDate:   &newEnd,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, approved.Status, "previously confirmed booking returns to confirmed")
	assert.Equal(t, domain.ModificationStatusApproved, approved.ModificationRequest.Status)
	assert.Equal(t, "approved, same hotel", approved.ModificationRequest.AdminNote)
	assert.NotNil(t, approved.ModificationRequest.ResolvedAt)
	assert.True(t, approved.StartDate.Equal(newStart))
	assert.True(t, approved.EndDate.Equal(newEnd))
	assert.Len(t, approved.Timeline, len(before.Timeline)+1)
}

func TestApproveModification_RestoresPendingWhenNeverConfirmed(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.RequestModification(ctx, created.ID, domain.ModificationTypeGuestCountChange, "one more guest")
	require.NoError(t, err)

	guests := 3
	approved, err := service.ApproveModification(ctx, created.ID, ApprovalInput{Guests: &guests})
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusPending, approved.Status)
	assert.Equal(t, 3, approved.Guests)
}

func TestApproveModification_PackageChange(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.RequestModification(ctx, created.ID, domain.ModificationTypePackageChange, "upgrade to deluxe")
	require.NoError(t, err)

	packageRef := "PKG-9"
	destination := "Porto"
	amount := 1850.0
	approved, err := service.ApproveModification(ctx, created.ID, ApprovalInput{
		PackageRef:  &packageRef,
		Destination: &destination,
		Amount:      &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, "PKG-9", approved.PackageRef)
	assert.Equal(t, "Porto", approved.Destination)
	assert.Equal(t, 1850.0, approved.Amount)
}

func TestApproveModification_IncompletePayloadLeavesStateUnchanged(t *testing.T) {
	testCases := []struct {
		name    string
		modType domain.ModificationType
		details string
		input   ApprovalInput
	}{
		{"date change without dates", domain.ModificationTypeDateChange, "move by a week", ApprovalInput{Note: "ok"}},
		{"date change with only start", domain.ModificationTypeDateChange, "move by a week", ApprovalInput{StartDate: timePtr(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC))}},
		{"date change with inverted range", domain.ModificationTypeDateChange, "move by a week", ApprovalInput{
			StartDate: timePtr(time.Date(2026, 10, 8, 0, 0, 0, 0, time.UTC)),
			EndDate:   timePtr(time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)),
		}},
		{"guest change without count", domain.ModificationTypeGuestCountChange, "one more guest", ApprovalInput{}},
		{"guest change with zero count", domain.ModificationTypeGuestCountChange, "one more guest", ApprovalInput{Guests: intPtr(0)}},
		{"package change without ref", domain.ModificationTypePackageChange, "upgrade", ApprovalInput{Amount: floatPtr(100)}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			service, _ := newTestService(t)
			ctx := context.Background()
			created := mustCreate(t, service)

			requested, err := service.RequestModification(ctx, created.ID, tc.modType, tc.details)
			require.NoError(t, err)

			_, err = service.ApproveModification(ctx, created.ID, tc.input)
			assert.ErrorIs(t, err, domain.ErrIncompleteApproval)

			after, err := service.GetBooking(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStatusModificationRequested, after.Status)
			assert.Equal(t, domain.ModificationStatusPending, after.ModificationRequest.Status)
			assert.Len(t, after.Timeline, len(requested.Timeline), "failed approval must not add timeline entries")
			assert.True(t, after.StartDate.Equal(created.StartDate))
			assert.Equal(t, created.Guests, after.Guests)
			assert.Equal(t, created.PackageRef, after.PackageRef)
		})
	}
}

func TestApproveModification_NoOpenRequest(t *testing.T) {
	service, _ := newTestService(t)
	created := mustCreate(t, service)

	guests := 3
	_, err := service.ApproveModification(context.Background(), created.ID, ApprovalInput{Guests: &guests})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestDenyModification_RestoresPriorStatus(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.Confirm(ctx, created.ID)
	require.NoError(t, err)
	_, err = service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	require.NoError(t, err)

	denied, err := service.DenyModification(ctx, created.ID, "hotel is fully booked")
	require.NoError(t, err)

	assert.Equal(t, domain.BookingStatusConfirmed, denied.Status)
	assert.Equal(t, domain.ModificationStatusDenied, denied.ModificationRequest.Status)
	assert.Equal(t, "hotel is fully booked", denied.ModificationRequest.AdminNote)
	assert.True(t, created.StartDate.Equal(denied.StartDate), "denied request must not change booking fields")
}

func TestDenyModification_NoOpenRequest(t *testing.T) {
	service, _ := newTestService(t)
	created := mustCreate(t, service)

	_, err := service.DenyModification(context.Background(), created.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestModification_NewRequestAllowedAfterResolution(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()
	created := mustCreate(t, service)

	_, err := service.RequestModification(ctx, created.ID, domain.ModificationTypeDateChange, "move by a week")
	require.NoError(t, err)
	_, err = service.DenyModification(ctx, created.ID, "no availability")
	require.NoError(t, err)

	updated, err := service.RequestModification(ctx, created.ID, domain.ModificationTypeGuestCountChange, "one more guest")
	require.NoError(t, err)
	assert.Equal(t, domain.ModificationTypeGuestCountChange, updated.ModificationRequest.Type)
	assert.Equal(t, domain.ModificationStatusPending, updated.ModificationRequest.Status)
}

func timePtr(t time.Time) *time.Time { return &t }
func intPtr(i int) *int              { return &i }
func floatPtr(f float64) *float64    { return &f }
