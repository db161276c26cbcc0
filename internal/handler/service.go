package handler

import (
	"context"
	"time"

	"github.com/ostanin/lending-service/internal/model"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go -package=service_mocks

type LendingService interface {
	CreateMember(ctx context.Context, req model.CreateMemberRequest, now time.Time) (model.Member, error)
	GetMember(ctx context.Context, memberUid string) (model.Member, error)
	MemberBorrowings(ctx context.Context, memberUid string) ([]model.Borrowing, error)
	MemberReservations(ctx context.Context, memberUid string) ([]model.Reservation, error)
	MemberFines(ctx context.Context, memberUid string) ([]model.Fine, error)

	GetBook(ctx context.Context, bookUid string) (model.Book, error)
	ListBooks(ctx context.Context, page, size int) ([]model.Book, error)

	BorrowBook(ctx context.Context, req model.BorrowRequest, now time.Time) (model.Borrowing, error)
	ReturnBook(ctx context.Context, borrowingUid string, returnDate, now time.Time) (model.ReturnResult, error)
	ReportLost(ctx context.Context, borrowingUid string, now time.Time) (model.ReturnResult, error)

	ReserveBook(ctx context.Context, req model.ReserveRequest, now time.Time) (model.Reservation, error)
	CancelReservation(ctx context.Context, reservationUid string, now time.Time) error

	IssueFine(ctx context.Context, req model.IssueFineRequest, now time.Time) (model.Fine, error)
	PayFine(ctx context.Context, fineUid string, amountCents int64, now time.Time) (model.Fine, error)
	WaiveFine(ctx context.Context, fineUid string) (model.Fine, error)
}
