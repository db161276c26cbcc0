package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")

	// conflicts: expected negative outcomes under contention.
	ErrNoCopiesAvailable          = errors.New("no copies available")
	ErrDuplicateActiveReservation = errors.New("active reservation already exists for this member and book")

	// state errors: caller misuse of the lifecycle.
	ErrBorrowingClosed    = errors.New("borrowing is already returned or lost")
	ErrReservationClosed  = errors.New("reservation is not active")
	ErrInvalidFineState   = errors.New("fine is not unpaid")
	ErrFineAmountMismatch = errors.New("payment amount does not match fine amount")

	// validation errors: rejected before any mutation.
	ErrMemberNotEligible = errors.New("member is not eligible to borrow")
	ErrInvalidDate       = errors.New("invalid date ordering")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInvalidFineReason = errors.New("fine reason must be DAMAGE or LOST")
)

// IntegrityError marks a breach of a data invariant: a bug in the
// concurrency guard, not a business outcome. It aborts the enclosing
// transaction and is logged loudly.
type IntegrityError struct {
	Detail string
}

func (e *IntegrityError) Error() string {
	return "integrity violation: " + e.Detail
}

func Integrityf(format string, args ...any) error {
	return &IntegrityError{Detail: fmt.Sprintf(format, args...)}
}

func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}
