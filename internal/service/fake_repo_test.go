package service_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
)

var errTxAborted = errors.New("current transaction is aborted, commands ignored until end of transaction block")

// fakeRepo is a mutex-guarded in-memory stand-in for the Postgres
// repository. Each method is atomic, mirroring the single-statement
// guarantees the real implementation gets from the database, which is
// what the concurrency tests exercise.
//
// Transactions are modeled far enough to catch statement-ordering bugs:
// WithinTransaction carries a tx marker in ctx, and a statement-level
// failure (a unique violation, as opposed to a zero-row conditional
// update) marks the transaction aborted — every later call on it fails,
// just like Postgres after SQLSTATE 23505.
type fakeRepo struct {
	mu sync.Mutex

	nextID       int64
	books        map[int64]*model.Book
	members      map[int64]*model.Member
	borrowings   map[int64]*model.Borrowing
	reservations map[int64]*model.Reservation
	fines        map[int64]*model.Fine
	seqs         map[int]int
}

type fakeTxKey struct{}

type fakeTx struct {
	aborted bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:        map[int64]*model.Book{},
		members:      map[int64]*model.Member{},
		borrowings:   map[int64]*model.Borrowing{},
		reservations: map[int64]*model.Reservation{},
		fines:        map[int64]*model.Fine{},
		seqs:         map[int]int{},
	}
}

func (f *fakeRepo) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *fakeRepo) seedBook(b model.Book) model.Book {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.books[b.ID] = &b
	return b
}

func (f *fakeRepo) seedMember(m model.Member) model.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	f.members[m.ID] = &m
	return m
}

func (f *fakeRepo) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		return fn(ctx)
	}
	return fn(context.WithValue(ctx, fakeTxKey{}, &fakeTx{}))
}

func txState(ctx context.Context) *fakeTx {
	tx, _ := ctx.Value(fakeTxKey{}).(*fakeTx)
	return tx
}

func (f *fakeRepo) guard(ctx context.Context) error {
	if tx := txState(ctx); tx != nil && tx.aborted {
		return errTxAborted
	}
	return nil
}

// abort marks the enclosing transaction aborted and passes err through.
func (f *fakeRepo) abort(ctx context.Context, err error) error {
	if tx := txState(ctx); tx != nil {
		tx.aborted = true
	}
	return err
}

func (f *fakeRepo) DecrementAvailable(ctx context.Context, bookID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return errs.ErrNotFound
	}
	if b.AvailableCopies <= 0 {
		return errs.ErrNoCopiesAvailable
	}
	b.AvailableCopies--
	return nil
}

func (f *fakeRepo) IncrementAvailable(ctx context.Context, bookID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.books[bookID]
	if !ok {
		return errs.ErrNotFound
	}
	if b.AvailableCopies >= b.TotalCopies {
		return errs.Integrityf("increment would exceed total_copies for book %d", bookID)
	}
	b.AvailableCopies++
	return nil
}

func (f *fakeRepo) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	if err := f.guard(ctx); err != nil {
		return model.Book{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.books {
		if b.BookUid == bookUid {
			return *b, nil
		}
	}
	return model.Book{}, errs.ErrNotFound
}

func (f *fakeRepo) GetBookByID(ctx context.Context, bookID int64) (model.Book, error) {
	if err := f.guard(ctx); err != nil {
		return model.Book{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.books[bookID]; ok {
		return *b, nil
	}
	return model.Book{}, errs.ErrNotFound
}

func (f *fakeRepo) ListBooks(ctx context.Context, _, _ int) ([]model.Book, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Book
	for _, b := range f.books {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) CreateMember(ctx context.Context, m model.Member) (model.Member, error) {
	if err := f.guard(ctx); err != nil {
		return model.Member{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.MembershipNo == m.MembershipNo {
			return model.Member{}, f.abort(ctx, errs.Integrityf("membership_no collision on %s", m.MembershipNo))
		}
	}
	m.ID = f.id()
	f.members[m.ID] = &m
	return m, nil
}

func (f *fakeRepo) GetMember(ctx context.Context, memberUid string) (model.Member, error) {
	if err := f.guard(ctx); err != nil {
		return model.Member{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.MemberUid == memberUid {
			return *m, nil
		}
	}
	return model.Member{}, errs.ErrNotFound
}

func (f *fakeRepo) GetMemberByID(ctx context.Context, memberID int64) (model.Member, error) {
	if err := f.guard(ctx); err != nil {
		return model.Member{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := f.members[memberID]; ok {
		return *m, nil
	}
	return model.Member{}, errs.ErrNotFound
}

func (f *fakeRepo) NextMembershipSeq(ctx context.Context, year int) (int, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seqs[year]++
	return f.seqs[year], nil
}

func (f *fakeRepo) UnpaidFineTotal(ctx context.Context, memberID int64) (int64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var total int64
	for _, fine := range f.fines {
		if fine.MemberID == memberID && fine.Status == model.FineUnpaid {
			total += fine.AmountCents
		}
	}
	return total, nil
}

func (f *fakeRepo) CreateBorrowing(ctx context.Context, b model.Borrowing) (model.Borrowing, error) {
	if err := f.guard(ctx); err != nil {
		return model.Borrowing{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.id()
	f.borrowings[b.ID] = &b
	return b, nil
}

func (f *fakeRepo) GetBorrowing(ctx context.Context, borrowingUid string) (model.Borrowing, error) {
	if err := f.guard(ctx); err != nil {
		return model.Borrowing{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.borrowings {
		if b.BorrowingUid == borrowingUid {
			return *b, nil
		}
	}
	return model.Borrowing{}, errs.ErrNotFound
}

func (f *fakeRepo) MarkReturned(ctx context.Context, borrowingID int64, returnDate time.Time) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrowings[borrowingID]
	if !ok || !b.Open() {
		return errs.ErrBorrowingClosed
	}
	b.Status = model.BorrowingReturned
	b.ReturnDate = &returnDate
	return nil
}

func (f *fakeRepo) MarkLost(ctx context.Context, borrowingID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrowings[borrowingID]
	if !ok || !b.Open() {
		return errs.ErrBorrowingClosed
	}
	b.Status = model.BorrowingLost
	return nil
}

func (f *fakeRepo) MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, b := range f.borrowings {
		if b.Status == model.BorrowingBorrowed && b.DueDate.Before(asOf) {
			b.Status = model.BorrowingOverdue
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) SetBorrowingFineAmount(ctx context.Context, borrowingID, amountCents int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.borrowings[borrowingID]
	if !ok {
		return errs.ErrNotFound
	}
	b.FineAmountCents = amountCents
	return nil
}

func (f *fakeRepo) ListMemberBorrowings(ctx context.Context, memberID int64) ([]model.Borrowing, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Borrowing
	for _, b := range f.borrowings {
		if b.MemberID == memberID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return model.Reservation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.reservations {
		if existing.MemberID == r.MemberID && existing.BookID == r.BookID && existing.Status == model.ReservationActive {
			return model.Reservation{}, f.abort(ctx, errs.ErrDuplicateActiveReservation)
		}
	}
	r.ID = f.id()
	f.reservations[r.ID] = &r
	return r, nil
}

func (f *fakeRepo) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return model.Reservation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.ReservationUid == reservationUid {
			return *r, nil
		}
	}
	return model.Reservation{}, errs.ErrNotFound
}

func (f *fakeRepo) ActiveReservationForPair(ctx context.Context, memberID, bookID int64) (model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return model.Reservation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reservations {
		if r.MemberID == memberID && r.BookID == bookID && r.Status == model.ReservationActive {
			return *r, nil
		}
	}
	return model.Reservation{}, errs.ErrNotFound
}

func (f *fakeRepo) OldestActiveReservation(ctx context.Context, bookID int64, now time.Time) (model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return model.Reservation{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var candidates []*model.Reservation
	for _, r := range f.reservations {
		if r.BookID == bookID && r.Status == model.ReservationActive && r.ExpiryDate.After(now) {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return model.Reservation{}, errs.ErrNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].ReservationDate.Equal(candidates[j].ReservationDate) {
			return candidates[i].ID < candidates[j].ID
		}
		return candidates[i].ReservationDate.Before(candidates[j].ReservationDate)
	})
	return *candidates[0], nil
}

func (f *fakeRepo) FulfillReservation(ctx context.Context, reservationID int64, now, claimDeadline time.Time) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[reservationID]
	if !ok || r.Status != model.ReservationActive {
		return errs.ErrReservationClosed
	}
	r.Status = model.ReservationFulfilled
	r.FulfilledDate = &now
	r.ClaimDeadline = &claimDeadline
	return nil
}

func (f *fakeRepo) CancelReservation(ctx context.Context, reservationID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	return f.closeReservation(reservationID, model.ReservationCancelled)
}

func (f *fakeRepo) ExpireReservation(ctx context.Context, reservationID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	return f.closeReservation(reservationID, model.ReservationExpired)
}

func (f *fakeRepo) closeReservation(reservationID int64, to model.ReservationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reservations[reservationID]
	if !ok || r.Status != model.ReservationActive {
		return errs.ErrReservationClosed
	}
	r.Status = to
	return nil
}

func (f *fakeRepo) ExpireActiveBefore(ctx context.Context, now time.Time) (int64, error) {
	if err := f.guard(ctx); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.reservations {
		if r.Status == model.ReservationActive && r.ExpiryDate.Before(now) {
			r.Status = model.ReservationExpired
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ExpireUnclaimedBefore(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.Status == model.ReservationFulfilled && r.ClaimDeadline != nil && r.ClaimDeadline.Before(now) {
			r.Status = model.ReservationExpired
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListMemberReservations(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Reservation
	for _, r := range f.reservations {
		if r.MemberID == memberID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpsertOverdueFine(ctx context.Context, fine model.Fine) (model.Fine, error) {
	if err := f.guard(ctx); err != nil {
		return model.Fine{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.fines {
		if existing.BorrowingID == fine.BorrowingID && existing.Reason == model.FineOverdue {
			if existing.Status == model.FineUnpaid {
				existing.AmountCents = fine.AmountCents
			}
			return *existing, nil
		}
	}
	fine.ID = f.id()
	f.fines[fine.ID] = &fine
	return fine, nil
}

func (f *fakeRepo) CreateFine(ctx context.Context, fine model.Fine) (model.Fine, error) {
	if err := f.guard(ctx); err != nil {
		return model.Fine{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fine.ID = f.id()
	f.fines[fine.ID] = &fine
	return fine, nil
}

func (f *fakeRepo) GetFine(ctx context.Context, fineUid string) (model.Fine, error) {
	if err := f.guard(ctx); err != nil {
		return model.Fine{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, fine := range f.fines {
		if fine.FineUid == fineUid {
			return *fine, nil
		}
	}
	return model.Fine{}, errs.ErrNotFound
}

func (f *fakeRepo) PayFine(ctx context.Context, fineID int64, paidDate time.Time) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fine, ok := f.fines[fineID]
	if !ok || fine.Status != model.FineUnpaid {
		return errs.ErrInvalidFineState
	}
	fine.Status = model.FinePaid
	fine.PaidDate = &paidDate
	return nil
}

func (f *fakeRepo) WaiveFine(ctx context.Context, fineID int64) error {
	if err := f.guard(ctx); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	fine, ok := f.fines[fineID]
	if !ok || fine.Status != model.FineUnpaid {
		return errs.ErrInvalidFineState
	}
	fine.Status = model.FineWaived
	return nil
}

func (f *fakeRepo) ListMemberFines(ctx context.Context, memberID int64) ([]model.Fine, error) {
	if err := f.guard(ctx); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Fine
	for _, fine := range f.fines {
		if fine.MemberID == memberID {
			out = append(out, *fine)
		}
	}
	return out, nil
}
