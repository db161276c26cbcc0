package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/config"
	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/internal/repository"
)

type Borrowings struct {
	repo         repository.Repository
	ledger       *Ledger
	fines        *Fines
	reservations *Reservations
	policy       config.Policy
	log          *zap.Logger
}

func NewBorrowings(repo repository.Repository, ledger *Ledger, fines *Fines, reservations *Reservations, policy config.Policy, log *zap.Logger) *Borrowings {
	return &Borrowings{
		repo:         repo,
		ledger:       ledger,
		fines:        fines,
		reservations: reservations,
		policy:       policy,
		log:          log.Named("borrowings"),
	}
}

// Borrow checks eligibility, claims a copy and opens a borrowing. The
// availability check is the ledger decrement itself, never a separate
// read; a failed claim leaves no partial state behind.
func (s *Borrowings) Borrow(ctx context.Context, member model.Member, book model.Book, now time.Time) (model.Borrowing, error) {
	if err := s.checkEligibility(ctx, member, now); err != nil {
		return model.Borrowing{}, err
	}
	if err := s.ledger.TryDecrement(ctx, book.ID); err != nil {
		return model.Borrowing{}, err
	}
	return s.repo.CreateBorrowing(ctx, model.Borrowing{
		BorrowingUid: uuid.NewString(),
		MemberID:     member.ID,
		BookID:       book.ID,
		BorrowDate:   now,
		DueDate:      now.AddDate(0, 0, s.policy.LoanPeriodDays),
		Status:       model.BorrowingBorrowed,
	})
}

func (s *Borrowings) checkEligibility(ctx context.Context, member model.Member, now time.Time) error {
	if member.Status != model.MemberActive {
		return errors.Wrapf(errs.ErrMemberNotEligible, "member %s is %s", member.MemberUid, member.Status)
	}
	if !now.Before(member.ExpiryDate) {
		return errors.Wrapf(errs.ErrMemberNotEligible, "membership of %s lapsed on %s",
			member.MemberUid, member.ExpiryDate.Format(time.DateOnly))
	}
	unpaid, err := s.repo.UnpaidFineTotal(ctx, member.ID)
	if err != nil {
		return err
	}
	if unpaid > s.policy.UnpaidFineLimitCents {
		return errors.Wrapf(errs.ErrMemberNotEligible, "unpaid fines %d over limit %d", unpaid, s.policy.UnpaidFineLimitCents)
	}
	return nil
}

// Return closes the borrowing as of returnDate, releases the copy,
// settles any overdue charge and offers the freed copy to the oldest
// waiting reservation.
func (s *Borrowings) Return(ctx context.Context, borrowingUid string, returnDate, now time.Time) (model.ReturnResult, error) {
	b, err := s.repo.GetBorrowing(ctx, borrowingUid)
	if err != nil {
		return model.ReturnResult{}, err
	}
	if !b.Open() {
		return model.ReturnResult{}, errs.ErrBorrowingClosed
	}
	if returnDate.Before(b.BorrowDate) {
		return model.ReturnResult{}, errors.Wrapf(errs.ErrInvalidDate, "return date %s before borrow date %s",
			returnDate.Format(time.DateOnly), b.BorrowDate.Format(time.DateOnly))
	}

	if err := s.repo.MarkReturned(ctx, b.ID, returnDate); err != nil {
		return model.ReturnResult{}, err
	}
	if err := s.ledger.Increment(ctx, b.BookID); err != nil {
		return model.ReturnResult{}, err
	}
	fine, err := s.fines.AssessOverdue(ctx, b, returnDate)
	if err != nil {
		return model.ReturnResult{}, err
	}
	fulfilled, err := s.reservations.OnCopyFreed(ctx, b.BookID, now)
	if err != nil {
		return model.ReturnResult{}, err
	}

	b.Status = model.BorrowingReturned
	b.ReturnDate = &returnDate
	if fine != nil {
		b.FineAmountCents = fine.AmountCents
	}
	return model.ReturnResult{Borrowing: b, Fine: fine, Fulfilled: fulfilled}, nil
}

// MarkLost is terminal: the copy is gone, so availability is not
// incremented. Any overdue charge accrued up to now is settled first,
// then the replacement fee is issued as a LOST fine.
func (s *Borrowings) MarkLost(ctx context.Context, borrowingUid string, now time.Time) (model.ReturnResult, error) {
	b, err := s.repo.GetBorrowing(ctx, borrowingUid)
	if err != nil {
		return model.ReturnResult{}, err
	}
	if !b.Open() {
		return model.ReturnResult{}, errs.ErrBorrowingClosed
	}

	if _, err := s.fines.AssessOverdue(ctx, b, now); err != nil {
		return model.ReturnResult{}, err
	}
	if err := s.repo.MarkLost(ctx, b.ID); err != nil {
		return model.ReturnResult{}, err
	}
	fine, err := s.fines.Issue(ctx, b, model.FineLost, s.policy.ReplacementFeeCents, now)
	if err != nil {
		return model.ReturnResult{}, err
	}

	b.Status = model.BorrowingLost
	return model.ReturnResult{Borrowing: b, Fine: &fine}, nil
}

// OverdueSweep materializes the derived overdue status for reporting.
func (s *Borrowings) OverdueSweep(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.MarkOverdueBefore(ctx, now)
}
