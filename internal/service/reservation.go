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

type Reservations struct {
	repo   repository.Repository
	policy config.Policy
	log    *zap.Logger
}

func NewReservations(repo repository.Repository, policy config.Policy, log *zap.Logger) *Reservations {
	return &Reservations{
		repo:   repo,
		policy: policy,
		log:    log.Named("reservations"),
	}
}

// Reserve places an active reservation for (member, book). At most one
// active row per pair. A leftover active row whose expiry already passed
// does not block a new reservation: it is expired in place before the
// insert. The stale-row check runs ahead of the insert on purpose: a
// failed insert would abort the enclosing transaction, taking any
// follow-up statements down with it. The partial unique index still
// guards the check-then-insert race, so a racing duplicate surfaces
// from the insert as a conflict.
func (s *Reservations) Reserve(ctx context.Context, member model.Member, book model.Book, ttlDays int, now time.Time) (model.Reservation, error) {
	if ttlDays <= 0 {
		ttlDays = s.policy.DefaultReservationTTL
	}

	existing, err := s.repo.ActiveReservationForPair(ctx, member.ID, book.ID)
	switch {
	case err == nil:
		if !existing.ExpiryDate.Before(now) {
			return model.Reservation{}, errs.ErrDuplicateActiveReservation
		}
		if eerr := s.repo.ExpireReservation(ctx, existing.ID); eerr != nil && !errors.Is(eerr, errs.ErrReservationClosed) {
			return model.Reservation{}, eerr
		}
	case !errors.Is(err, errs.ErrNotFound):
		return model.Reservation{}, err
	}

	return s.repo.CreateReservation(ctx, model.Reservation{
		ReservationUid:  uuid.NewString(),
		MemberID:        member.ID,
		BookID:          book.ID,
		Status:          model.ReservationActive,
		ReservationDate: now,
		ExpiryDate:      now.AddDate(0, 0, ttlDays),
	})
}

// Cancel moves an active reservation to CANCELLED. A reservation whose
// expiry has passed counts as already expired even before the sweep sees
// it, so cancelling it is a state error.
func (s *Reservations) Cancel(ctx context.Context, reservationUid string, now time.Time) error {
	res, err := s.repo.GetReservation(ctx, reservationUid)
	if err != nil {
		return err
	}
	if res.Status != model.ReservationActive {
		return errs.ErrReservationClosed
	}
	if res.ExpiryDate.Before(now) {
		if err := s.repo.ExpireReservation(ctx, res.ID); err != nil {
			s.log.Warn("lazy expire on cancel", zap.Error(err))
		}
		return errs.ErrReservationClosed
	}
	return s.repo.CancelReservation(ctx, res.ID)
}

// OnCopyFreed gives a freed copy to the oldest waiting reservation.
// The copy is earmarked by flipping the reservation to FULFILLED with a
// claim deadline; it stays counted as available until actually borrowed.
// Returns nil when nobody is waiting.
func (s *Reservations) OnCopyFreed(ctx context.Context, bookID int64, now time.Time) (*model.Reservation, error) {
	next, err := s.repo.OldestActiveReservation(ctx, bookID, now)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	deadline := now.Add(s.policy.ClaimWindow)
	if err := s.repo.FulfillReservation(ctx, next.ID, now, deadline); err != nil {
		return nil, err
	}
	next.Status = model.ReservationFulfilled
	next.FulfilledDate = &now
	next.ClaimDeadline = &deadline
	return &next, nil
}

// ExpireSweep is the periodic pass converging stored state with expiry
// timestamps. Decision points do not depend on it having run.
func (s *Reservations) ExpireSweep(ctx context.Context, now time.Time) (int64, error) {
	return s.repo.ExpireActiveBefore(ctx, now)
}

// ClaimSweep expires fulfilled reservations whose claim window lapsed
// and passes each freed copy to the next reservation in line. Returns
// the newly fulfilled reservations so the caller can notify members.
func (s *Reservations) ClaimSweep(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	lapsed, err := s.repo.ExpireUnclaimedBefore(ctx, now)
	if err != nil {
		return nil, err
	}
	var fulfilled []model.Reservation
	for _, res := range lapsed {
		next, err := s.OnCopyFreed(ctx, res.BookID, now)
		if err != nil {
			return fulfilled, err
		}
		if next != nil {
			fulfilled = append(fulfilled, *next)
		}
	}
	return fulfilled, nil
}
