package domain

import (
	"fmt"
	"time"
)

type ModificationType string

const (
	ModificationTypeDateChange       ModificationType = "date_change"
	ModificationTypeGuestCountChange ModificationType = "guest_count_change"
	ModificationTypePackageChange    ModificationType = "package_change"
)

func (t ModificationType) IsValid() bool {
	switch t {
	case ModificationTypeDateChange, ModificationTypeGuestCountChange, ModificationTypePackageChange:
		return true
	}
	return false
}

func (t ModificationType) String() string { return string(t) }

func ParseModificationType(s string) (ModificationType, error) {
	t := ModificationType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid modification type: %s", s)
	}
	return t, nil
}

type ModificationStatus string

const (
	ModificationStatusPending  ModificationStatus = "pending"
	ModificationStatusApproved ModificationStatus = "approved"
	ModificationStatusDenied   ModificationStatus = "denied"
)

// ModificationRequest is a customer-initiated change proposal that an admin
// resolves. PriorStatus remembers the booking status the resolution restores.
type ModificationRequest struct {
	RequestedAt time.Time          `json:"requested_at"`
	Type        ModificationType   `json:"type"`
	Details     string             `json:"details"`
	Status      ModificationStatus `json:"status"`
	AdminNote   string             `json:"admin_note,omitempty"`
	PriorStatus BookingStatus      `json:"prior_status"`
	ResolvedAt  *time.Time         `json:"resolved_at,omitempty"`
}
