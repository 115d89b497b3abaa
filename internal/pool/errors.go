package pool

import (
	"errors"
	"fmt"
)

// Sentinel errors for common pool operations.
var (
	// ErrEmptyID is returned when a candidate ID is empty.
	ErrEmptyID = errors.New("candidate ID cannot be empty")
	// ErrIDTooLong is returned when a candidate ID exceeds 128 characters.
	ErrIDTooLong = errors.New("candidate ID too long (max 128 characters)")
	// ErrIDInvalidChars is returned when a candidate ID contains disallowed characters.
	ErrIDInvalidChars = errors.New("candidate ID contains invalid characters (only alphanumeric, hyphen, underscore allowed)")
	// ErrCandidateNotFound is returned when a candidate cannot be located in the pool.
	ErrCandidateNotFound = errors.New("candidate not found")
	// ErrNotPending is returned when approving or rejecting a candidate that
	// has already been reviewed.
	ErrNotPending = errors.New("candidate is not pending review")
	// ErrDuplicateID is returned when adding a candidate whose ID already exists.
	ErrDuplicateID = errors.New("candidate ID already exists in pool")
	// ErrReasonTooLong is returned when a rejection reason exceeds MaxReasonLength.
	ErrReasonTooLong = fmt.Errorf("reason exceeds maximum length of %d characters", MaxReasonLength)
)
