package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/model"
)

type Repository interface {
	// WithinTransaction runs fn inside a single database transaction.
	// Nested calls join the transaction already carried by ctx.
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// inventory
	DecrementAvailable(ctx context.Context, bookID int64) error
	IncrementAvailable(ctx context.Context, bookID int64) error
	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	GetBookByID(ctx context.Context, bookID int64) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) ([]model.Book, error)

	// members
	CreateMember(ctx context.Context, m model.Member) (model.Member, error)
	GetMember(ctx context.Context, memberUid string) (model.Member, error)
	GetMemberByID(ctx context.Context, memberID int64) (model.Member, error)
	NextMembershipSeq(ctx context.Context, year int) (int, error)
	UnpaidFineTotal(ctx context.Context, memberID int64) (int64, error)

	// borrowings
	CreateBorrowing(ctx context.Context, b model.Borrowing) (model.Borrowing, error)
	GetBorrowing(ctx context.Context, borrowingUid string) (model.Borrowing, error)
	MarkReturned(ctx context.Context, borrowingID int64, returnDate time.Time) error
	MarkLost(ctx context.Context, borrowingID int64) error
	MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error)
	SetBorrowingFineAmount(ctx context.Context, borrowingID, amountCents int64) error
	ListMemberBorrowings(ctx context.Context, memberID int64) ([]model.Borrowing, error)

	// reservations
	CreateReservation(ctx context.Context, r model.Reservation) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error)
	ActiveReservationForPair(ctx context.Context, memberID, bookID int64) (model.Reservation, error)
	OldestActiveReservation(ctx context.Context, bookID int64, now time.Time) (model.Reservation, error)
	FulfillReservation(ctx context.Context, reservationID int64, now, claimDeadline time.Time) error
	CancelReservation(ctx context.Context, reservationID int64) error
	ExpireReservation(ctx context.Context, reservationID int64) error
	ExpireActiveBefore(ctx context.Context, now time.Time) (int64, error)
	ExpireUnclaimedBefore(ctx context.Context, now time.Time) ([]model.Reservation, error)
	ListMemberReservations(ctx context.Context, memberID int64) ([]model.Reservation, error)

	// fines
	UpsertOverdueFine(ctx context.Context, f model.Fine) (model.Fine, error)
	CreateFine(ctx context.Context, f model.Fine) (model.Fine, error)
	GetFine(ctx context.Context, fineUid string) (model.Fine, error)
	PayFine(ctx context.Context, fineID int64, paidDate time.Time) error
	WaiveFine(ctx context.Context, fineID int64) error
	ListMemberFines(ctx context.Context, memberID int64) ([]model.Fine, error)
}

type repository struct {
	db  *sqlx.DB
	log *zap.Logger
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	return &repository{
		db:  db,
		log: log.Named("repo"),
	}, nil
}

const (
	booksTableName        = `books`
	membersTableName      = `members`
	borrowingsTableName   = `borrowings`
	reservationsTableName = `reservations`
	finesTableName        = `fines`
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type txKey struct{}

func (r *repository) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Error("tx rollback", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit()
}

// ext returns the transaction carried by ctx, falling back to the pool.
func (r *repository) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return r.db
}
