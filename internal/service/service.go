package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ostanin/lending-service/config"
	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/internal/repository"
)

// Notifier delivers post-commit notifications. Delivery is at-least-once
// and must never influence the outcome of the owning use case.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// Service is the facade over the lending engine: every use case runs as
// one transaction, and notifications go out only after it commits.
type Service struct {
	repo         repository.Repository
	ledger       *Ledger
	members      *Members
	borrowings   *Borrowings
	reservations *Reservations
	fines        *Fines
	notifier     Notifier
	log          *zap.Logger
}

func New(repo repository.Repository, notifier Notifier, policy config.Policy, log *zap.Logger) *Service {
	ledger := NewLedger(repo, log)
	fines := NewFines(repo, policy, log)
	reservations := NewReservations(repo, policy, log)
	borrowings := NewBorrowings(repo, ledger, fines, reservations, policy, log)
	members := NewMembers(repo, policy, log)
	return &Service{
		repo:         repo,
		ledger:       ledger,
		members:      members,
		borrowings:   borrowings,
		reservations: reservations,
		fines:        fines,
		notifier:     notifier,
		log:          log.Named("service"),
	}
}

func (s *Service) CreateMember(ctx context.Context, req model.CreateMemberRequest, now time.Time) (model.Member, error) {
	var m model.Member
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.members.Create(ctx, req, now)
		return err
	})
	return m, err
}

func (s *Service) GetMember(ctx context.Context, memberUid string) (model.Member, error) {
	return s.members.Get(ctx, memberUid)
}

func (s *Service) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	return s.repo.GetBook(ctx, bookUid)
}

func (s *Service) ListBooks(ctx context.Context, page, size int) ([]model.Book, error) {
	return s.repo.ListBooks(ctx, page, size)
}

func (s *Service) BorrowBook(ctx context.Context, req model.BorrowRequest, now time.Time) (model.Borrowing, error) {
	var b model.Borrowing
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.repo.GetMember(ctx, req.MemberUid)
		if err != nil {
			return err
		}
		book, err := s.repo.GetBook(ctx, req.BookUid)
		if err != nil {
			return err
		}
		b, err = s.borrowings.Borrow(ctx, member, book, now)
		return err
	})
	return b, err
}

func (s *Service) ReturnBook(ctx context.Context, borrowingUid string, returnDate, now time.Time) (model.ReturnResult, error) {
	var res model.ReturnResult
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.borrowings.Return(ctx, borrowingUid, returnDate, now)
		return err
	})
	if err != nil {
		return model.ReturnResult{}, err
	}

	if res.Fulfilled != nil {
		s.notifyReservation(ctx, *res.Fulfilled, now)
	} else {
		s.notifyBookAvailable(ctx, res.Borrowing.BookID, now)
	}
	return res, nil
}

func (s *Service) ReportLost(ctx context.Context, borrowingUid string, now time.Time) (model.ReturnResult, error) {
	var res model.ReturnResult
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = s.borrowings.MarkLost(ctx, borrowingUid, now)
		return err
	})
	if err != nil {
		return model.ReturnResult{}, err
	}
	if res.Fine != nil {
		s.notifyFine(ctx, *res.Fine, now)
	}
	return res, nil
}

func (s *Service) ReserveBook(ctx context.Context, req model.ReserveRequest, now time.Time) (model.Reservation, error) {
	var r model.Reservation
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		member, err := s.repo.GetMember(ctx, req.MemberUid)
		if err != nil {
			return err
		}
		book, err := s.repo.GetBook(ctx, req.BookUid)
		if err != nil {
			return err
		}
		r, err = s.reservations.Reserve(ctx, member, book, req.TTLDays, now)
		return err
	})
	return r, err
}

func (s *Service) CancelReservation(ctx context.Context, reservationUid string, now time.Time) error {
	return s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.reservations.Cancel(ctx, reservationUid, now)
	})
}

func (s *Service) IssueFine(ctx context.Context, req model.IssueFineRequest, now time.Time) (model.Fine, error) {
	var fine model.Fine
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetBorrowing(ctx, req.BorrowingUid)
		if err != nil {
			return err
		}
		fine, err = s.fines.Issue(ctx, b, req.Reason, req.AmountCents, now)
		return err
	})
	if err != nil {
		return model.Fine{}, err
	}
	s.notifyFine(ctx, fine, now)
	return fine, nil
}

func (s *Service) PayFine(ctx context.Context, fineUid string, amountCents int64, now time.Time) (model.Fine, error) {
	var fine model.Fine
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fine, err = s.fines.Pay(ctx, fineUid, amountCents, now)
		return err
	})
	return fine, err
}

func (s *Service) WaiveFine(ctx context.Context, fineUid string) (model.Fine, error) {
	var fine model.Fine
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fine, err = s.fines.Waive(ctx, fineUid)
		return err
	})
	return fine, err
}

func (s *Service) MemberBorrowings(ctx context.Context, memberUid string) ([]model.Borrowing, error) {
	member, err := s.repo.GetMember(ctx, memberUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMemberBorrowings(ctx, member.ID)
}

func (s *Service) MemberReservations(ctx context.Context, memberUid string) ([]model.Reservation, error) {
	member, err := s.repo.GetMember(ctx, memberUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMemberReservations(ctx, member.ID)
}

func (s *Service) MemberFines(ctx context.Context, memberUid string) ([]model.Fine, error) {
	member, err := s.repo.GetMember(ctx, memberUid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListMemberFines(ctx, member.ID)
}

// ExpireReservationsSweep and the two sweeps below are driven by the
// background loops in app.Run.
func (s *Service) ExpireReservationsSweep(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.reservations.ExpireSweep(ctx, now)
		return err
	})
	return n, err
}

func (s *Service) ClaimSweep(ctx context.Context, now time.Time) (int, error) {
	var fulfilled []model.Reservation
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		fulfilled, err = s.reservations.ClaimSweep(ctx, now)
		return err
	})
	if err != nil {
		return 0, err
	}
	for _, res := range fulfilled {
		s.notifyReservation(ctx, res, now)
	}
	return len(fulfilled), nil
}

func (s *Service) OverdueSweep(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := s.repo.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		n, err = s.borrowings.OverdueSweep(ctx, now)
		return err
	})
	return n, err
}

func (s *Service) notifyReservation(ctx context.Context, res model.Reservation, now time.Time) {
	member, err := s.repo.GetMemberByID(ctx, res.MemberID)
	if err != nil {
		s.log.Error("notifyReservation member lookup", zap.Error(err))
		return
	}
	book, err := s.repo.GetBookByID(ctx, res.BookID)
	if err != nil {
		s.log.Error("notifyReservation book lookup", zap.Error(err))
		return
	}
	s.publish(ctx, model.Notification{
		Type:           model.NotifyReservationFulfilled,
		MemberUid:      member.MemberUid,
		BookUid:        book.BookUid,
		ReservationUid: res.ReservationUid,
		OccurredAt:     now,
	})
}

func (s *Service) notifyBookAvailable(ctx context.Context, bookID int64, now time.Time) {
	book, err := s.repo.GetBookByID(ctx, bookID)
	if err != nil {
		s.log.Error("notifyBookAvailable book lookup", zap.Error(err))
		return
	}
	s.publish(ctx, model.Notification{
		Type:       model.NotifyBookAvailable,
		BookUid:    book.BookUid,
		OccurredAt: now,
	})
}

func (s *Service) notifyFine(ctx context.Context, fine model.Fine, now time.Time) {
	member, err := s.repo.GetMemberByID(ctx, fine.MemberID)
	if err != nil {
		s.log.Error("notifyFine member lookup", zap.Error(err))
		return
	}
	s.publish(ctx, model.Notification{
		Type:       model.NotifyFineIssued,
		MemberUid:  member.MemberUid,
		FineUid:    fine.FineUid,
		OccurredAt: now,
	})
}

// publish is best-effort: the transaction already committed, so a
// delivery failure is logged and retried by downstream consumers, never
// propagated to the caller.
func (s *Service) publish(ctx context.Context, n model.Notification) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Error("notify", zap.String("type", string(n.Type)), zap.Error(err))
	}
}
