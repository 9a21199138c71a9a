package query

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/Domenick1991/travelbook/internal/domain"
)

type SortKey string

const (
	SortByCreated SortKey = "created"
	SortByName    SortKey = "name"
	SortByAmount  SortKey = "amount"
)

// ParseSortKey maps a query parameter to a sort key, falling back to created
// for anything unrecognized.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortByName, SortByAmount, SortByCreated:
		return SortKey(s)
	case "price":
		return SortByAmount
	case "date":
		return SortByCreated
	default:
		return SortByCreated
	}
}

// Criteria describes an admin listing search. Empty fields match everything.
type Criteria struct {
	Text          string
	Status        domain.BookingStatus
	PaymentStatus domain.PaymentStatus
	Sort          SortKey
}

type SearchUseCase interface {
	Search(ctx context.Context, criteria Criteria) ([]domain.Booking, error)
}

// Lister is the read-only slice of the booking store.
type Lister interface {
	List(ctx context.Context) ([]*domain.Booking, error)
}

type Cache interface {
	GetBookings(ctx context.Context) ([]domain.Booking, error)
	SetBookings(ctx context.Context, bookings []domain.Booking) error
}

// QueryService answers admin search/filter/sort requests. It never mutates
// the booking store; listings may be served from the cache and are filtered
// in memory.
type QueryService struct {
	store Lister
	cache Cache
}

func NewQueryService(store Lister, cache Cache) *QueryService {
	return &QueryService{store: store, cache: cache}
}

func (s *QueryService) Search(ctx context.Context, criteria Criteria) ([]domain.Booking, error) {
	if criteria.Status != "" && !criteria.Status.IsValid() {
		return nil, fmt.Errorf("invalid status filter: %s", criteria.Status)
	}
	if criteria.PaymentStatus != "" && !criteria.PaymentStatus.IsValid() {
		return nil, fmt.Errorf("invalid payment status filter: %s", criteria.PaymentStatus)
	}

	bookings, err := s.listing(ctx)
	if err != nil {
		return nil, err
	}

	matched := make([]domain.Booking, 0, len(bookings))
	for _, b := range bookings {
		if criteria.Status != "" && b.Status != criteria.Status {
			continue
		}
		if criteria.PaymentStatus != "" && b.PaymentStatus != criteria.PaymentStatus {
			continue
		}
		if criteria.Text != "" && !matchesText(&b, criteria.Text) {
			continue
		}
		matched = append(matched, b)
	}

	sortBookings(matched, criteria.Sort)
	return matched, nil
}

func (s *QueryService) listing(ctx context.Context) ([]domain.Booking, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBookings(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	snapshots, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	bookings := make([]domain.Booking, 0, len(snapshots))
	for _, b := range snapshots {
		bookings = append(bookings, *b)
	}
	if s.cache != nil {
		_ = s.cache.SetBookings(ctx, bookings)
	}
	return bookings, nil
}

// matchesText does a case-insensitive substring match over the denormalized
// display fields.
func matchesText(b *domain.Booking, text string) bool {
	needle := strings.ToLower(text)
	for _, field := range []string{b.Customer.Name, b.Customer.Email, b.PackageRef, b.Destination} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

// sortBookings orders ascending by the sort key, ties broken by ID for
// deterministic listings.
func sortBookings(bookings []domain.Booking, key SortKey) {
	sort.SliceStable(bookings, func(i, j int) bool {
		a, b := &bookings[i], &bookings[j]
		switch key {
		case SortByName:
			if a.Customer.Name != b.Customer.Name {
				return a.Customer.Name < b.Customer.Name
			}
		case SortByAmount:
			if a.Amount != b.Amount {
				return a.Amount < b.Amount
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
}

var _ SearchUseCase = (*QueryService)(nil)
