package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Domenick1991/travelbook/internal/domain"
)

// record is the unit of locking. The published snapshot is replaced
// atomically so readers never observe a partially updated booking.
type record struct {
	lock chan struct{}
	seq  int64
	snap atomic.Pointer[domain.Booking]
}

func newRecord(b *domain.Booking) *record {
	r := &record{lock: make(chan struct{}, 1)}
	r.snap.Store(b)
	return r
}

// BookingStore is the in-memory source of truth for bookings. Writers are
// mutually exclusive per booking; operations on different bookings proceed
// independently.
type BookingStore struct {
	mu      sync.RWMutex
	records map[string]*record
}

func NewBookingStore() *BookingStore {
	return &BookingStore{records: make(map[string]*record)}
}

// Create registers a new booking. Sequence numbers are stamped onto any
// timeline entries the caller pre-populated.
func (s *BookingStore) Create(ctx context.Context, booking *domain.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[booking.ID]; exists {
		return fmt.Errorf("booking %s already exists", booking.ID)
	}

	r := newRecord(nil)
	b := booking.Clone()
	now := time.Now()
	if b.CreatedAt.IsZero() {
		b.CreatedAt = now
	}
	b.UpdatedAt = b.CreatedAt
	stampSequences(r, b, 0, 0)
	r.snap.Store(b)
	s.records[booking.ID] = r
	return nil
}

// Get returns the current published snapshot. Snapshots are read-only;
// mutation goes through Update.
func (s *BookingStore) Get(ctx context.Context, id string) (*domain.Booking, error) {
	r, err := s.record(id)
	if err != nil {
		return nil, err
	}
	return r.snap.Load(), nil
}

// List returns the published snapshots of all bookings, in no particular order.
func (s *BookingStore) List(ctx context.Context) ([]*domain.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Booking, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r.snap.Load())
	}
	return out, nil
}

// Update runs fn against a deep copy of the booking under the record's write
// lock and publishes the copy on success. Lock acquisition honors the
// caller's deadline, failing with ErrBusy when it expires. New timeline
// entries and messages appended by fn are stamped with the next sequence
// numbers inside the same critical section, so a mutation and its audit entry
// are inseparable.
func (s *BookingStore) Update(ctx context.Context, id string, fn func(*domain.Booking) error) (*domain.Booking, error) {
	r, err := s.record(id)
	if err != nil {
		return nil, err
	}

	select {
	case r.lock <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrBusy, ctx.Err())
	}
	defer func() { <-r.lock }()

	clone := r.snap.Load().Clone()
	prevTimeline := len(clone.Timeline)
	prevMessages := len(clone.Messages)

	if err := fn(clone); err != nil {
		return nil, err
	}

	stampSequences(r, clone, prevTimeline, prevMessages)
	clone.UpdatedAt = time.Now()
	r.snap.Store(clone)
	return clone, nil
}

func (s *BookingStore) record(id string) (*record, error) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return r, nil
}

// stampSequences assigns strictly increasing sequence numbers to entries
// appended since the given offsets. Timeline entries and messages draw from
// the same per-booking counter.
func stampSequences(r *record, b *domain.Booking, fromTimeline, fromMessages int) {
	now := time.Now()
	for i := fromTimeline; i < len(b.Timeline); i++ {
		r.seq++
		b.Timeline[i].Seq = r.seq
		if b.Timeline[i].Timestamp.IsZero() {
			b.Timeline[i].Timestamp = now
		}
	}
	for i := fromMessages; i < len(b.Messages); i++ {
		r.seq++
		b.Messages[i].Seq = r.seq
		if b.Messages[i].Timestamp.IsZero() {
			b.Messages[i].Timestamp = now
		}
	}
}
