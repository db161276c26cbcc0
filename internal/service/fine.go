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

type Fines struct {
	repo   repository.Repository
	policy config.Policy
	log    *zap.Logger
}

func NewFines(repo repository.Repository, policy config.Policy, log *zap.Logger) *Fines {
	return &Fines{
		repo:   repo,
		policy: policy,
		log:    log.Named("fines"),
	}
}

// OverdueAmount computes the charge for a borrowing due at due, as of
// asOf: whole days late times the daily rate, capped.
func OverdueAmount(due, asOf time.Time, policy config.Policy) int64 {
	days := int64(asOf.Sub(due) / (24 * time.Hour))
	if days <= 0 {
		return 0
	}
	amount := days * policy.DailyOverdueRateCents
	if amount > policy.MaxOverdueFineCents {
		amount = policy.MaxOverdueFineCents
	}
	return amount
}

// AssessOverdue settles the overdue charge for a borrowing as of asOf.
// Idempotent: one OVERDUE fine per borrowing, re-assessment updates the
// amount while the fine is unpaid. Returns nil when nothing is owed.
func (f *Fines) AssessOverdue(ctx context.Context, b model.Borrowing, asOf time.Time) (*model.Fine, error) {
	amount := OverdueAmount(b.DueDate, asOf, f.policy)
	if amount == 0 {
		return nil, nil
	}
	fine, err := f.repo.UpsertOverdueFine(ctx, model.Fine{
		FineUid:     uuid.NewString(),
		BorrowingID: b.ID,
		MemberID:    b.MemberID,
		AmountCents: amount,
		Reason:      model.FineOverdue,
		Status:      model.FineUnpaid,
		IssuedDate:  asOf,
	})
	if err != nil {
		return nil, err
	}
	if err := f.repo.SetBorrowingFineAmount(ctx, b.ID, fine.AmountCents); err != nil {
		return nil, err
	}
	return &fine, nil
}

// Issue creates a DAMAGE or LOST charge. Each call is a distinct fine;
// unlike overdue assessment there is nothing to merge.
func (f *Fines) Issue(ctx context.Context, b model.Borrowing, reason model.FineReason, amountCents int64, now time.Time) (model.Fine, error) {
	if reason != model.FineDamage && reason != model.FineLost {
		return model.Fine{}, errs.ErrInvalidFineReason
	}
	if amountCents <= 0 {
		return model.Fine{}, errors.Wrapf(errs.ErrInvalidAmount, "amount %d", amountCents)
	}
	return f.repo.CreateFine(ctx, model.Fine{
		FineUid:     uuid.NewString(),
		BorrowingID: b.ID,
		MemberID:    b.MemberID,
		AmountCents: amountCents,
		Reason:      reason,
		Status:      model.FineUnpaid,
		IssuedDate:  now,
	})
}

// Pay requires the exact amount; partial payment is not modeled.
func (f *Fines) Pay(ctx context.Context, fineUid string, amountCents int64, now time.Time) (model.Fine, error) {
	fine, err := f.repo.GetFine(ctx, fineUid)
	if err != nil {
		return model.Fine{}, err
	}
	if fine.Status != model.FineUnpaid {
		return model.Fine{}, errs.ErrInvalidFineState
	}
	if amountCents != fine.AmountCents {
		return model.Fine{}, errs.ErrFineAmountMismatch
	}
	if err := f.repo.PayFine(ctx, fine.ID, now); err != nil {
		return model.Fine{}, err
	}
	fine.Status = model.FinePaid
	fine.PaidDate = &now
	return fine, nil
}

func (f *Fines) Waive(ctx context.Context, fineUid string) (model.Fine, error) {
	fine, err := f.repo.GetFine(ctx, fineUid)
	if err != nil {
		return model.Fine{}, err
	}
	if err := f.repo.WaiveFine(ctx, fine.ID); err != nil {
		return model.Fine{}, err
	}
	fine.Status = model.FineWaived
	return fine, nil
}
