package domain

import "time"

// Actors recorded against timeline entries.
const (
	ActorCustomer = "customer"
	ActorAdmin    = "admin"
	ActorSystem   = "system"
)

// TimelineEntry is an immutable audit record. Seq is a per-booking monotonic
// sequence number assigned by the store, so ordering does not depend on
// wall-clock time.
type TimelineEntry struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
}

// Message is one entry of the customer/admin conversation thread. Messages
// share the booking's sequence counter with timeline entries.
type Message struct {
	Seq       int64     `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
}
