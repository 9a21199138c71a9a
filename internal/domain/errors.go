package domain

import "errors"

// Error kinds returned across the core boundary. Callers branch with
// errors.Is to decide HTTP codes and UI messaging.
var (
	ErrNotFound                 = errors.New("booking not found")
	ErrInvalidTransition        = errors.New("invalid status transition")
	ErrInvalidPaymentTransition = errors.New("invalid payment status transition")
	ErrConflictingRequest       = errors.New("booking already has a pending modification request")
	ErrInvalidState             = errors.New("operation not allowed in current booking state")
	ErrIncompleteApproval       = errors.New("approval is missing fields required by the request type")
	ErrBusy                     = errors.New("booking is locked by a concurrent operation")
)
