package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
)

// CreateReservation relies on the partial unique index over
// (member_id, book_id) where status = 'ACTIVE': the uniqueness check is
// atomic with the insert, so racing duplicates cannot both land.
func (r *repository) CreateReservation(ctx context.Context, res model.Reservation) (model.Reservation, error) {
	q, args, err := qb.Insert(reservationsTableName).
		Columns("reservation_uid", "member_id", "book_id", "status", "reservation_date", "expiry_date").
		Values(res.ReservationUid, res.MemberID, res.BookID, res.Status, res.ReservationDate, res.ExpiryDate).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Reservation{}, err
	}

	var created model.Reservation
	if err := sqlx.GetContext(ctx, r.ext(ctx), &created, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return model.Reservation{}, errs.ErrDuplicateActiveReservation
		}
		r.log.Error("CreateReservation", zap.String("q", q), zap.Any("args", args))
		return model.Reservation{}, err
	}
	return created, nil
}

func (r *repository) GetReservation(ctx context.Context, reservationUid string) (model.Reservation, error) {
	return r.getReservation(ctx, sq.Eq{"reservation_uid": reservationUid}, "")
}

func (r *repository) ActiveReservationForPair(ctx context.Context, memberID, bookID int64) (model.Reservation, error) {
	return r.getReservation(ctx, sq.Eq{
		"member_id": memberID,
		"book_id":   bookID,
		"status":    model.ReservationActive,
	}, "")
}

// OldestActiveReservation picks the next reservation in line for a freed
// copy: FIFO by reservation_date, ties broken by id. Rows whose expiry
// already passed are excluded even before the sweep gets to them.
func (r *repository) OldestActiveReservation(ctx context.Context, bookID int64, now time.Time) (model.Reservation, error) {
	return r.getReservation(ctx, sq.And{
		sq.Eq{"book_id": bookID, "status": model.ReservationActive},
		sq.Gt{"expiry_date": now},
	}, "reservation_date, id")
}

func (r *repository) getReservation(ctx context.Context, pred sq.Sqlizer, orderBy string) (model.Reservation, error) {
	q := qb.Select("id", "reservation_uid", "member_id", "book_id", "status", "reservation_date", "expiry_date", "fulfilled_date", "claim_deadline").
		From(reservationsTableName).
		Where(pred).
		Limit(1)
	if orderBy != "" {
		q = q.OrderBy(orderBy)
	}
	query, args, err := q.ToSql()
	if err != nil {
		return model.Reservation{}, err
	}

	var res model.Reservation
	if err := sqlx.GetContext(ctx, r.ext(ctx), &res, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Reservation{}, errs.ErrNotFound
		}
		return model.Reservation{}, err
	}
	return res, nil
}

func (r *repository) FulfillReservation(ctx context.Context, reservationID int64, now, claimDeadline time.Time) error {
	q := fmt.Sprintf(`
update %s
    set status = 'FULFILLED', fulfilled_date = $2, claim_deadline = $3
where id = $1 and status = 'ACTIVE'`, reservationsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, reservationID, now, claimDeadline)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrReservationClosed
	}
	return nil
}

func (r *repository) CancelReservation(ctx context.Context, reservationID int64) error {
	return r.closeReservation(ctx, reservationID, model.ReservationCancelled)
}

func (r *repository) ExpireReservation(ctx context.Context, reservationID int64) error {
	return r.closeReservation(ctx, reservationID, model.ReservationExpired)
}

func (r *repository) closeReservation(ctx context.Context, reservationID int64, to model.ReservationStatus) error {
	q := fmt.Sprintf(`
update %s
    set status = $2
where id = $1 and status = 'ACTIVE'`, reservationsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, reservationID, to)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrReservationClosed
	}
	return nil
}

func (r *repository) ExpireActiveBefore(ctx context.Context, now time.Time) (int64, error) {
	q := fmt.Sprintf(`
update %s
    set status = 'EXPIRED'
where status = 'ACTIVE' and expiry_date < $1`, reservationsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ExpireUnclaimedBefore expires fulfilled reservations whose claim window
// elapsed and returns them so the caller can hand the copy to the next
// reservation in line.
func (r *repository) ExpireUnclaimedBefore(ctx context.Context, now time.Time) ([]model.Reservation, error) {
	q := fmt.Sprintf(`
update %s
    set status = 'EXPIRED'
where status = 'FULFILLED' and claim_deadline < $1
returning id, reservation_uid, member_id, book_id, status, reservation_date, expiry_date, fulfilled_date, claim_deadline`,
		reservationsTableName)

	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, q, now); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListMemberReservations(ctx context.Context, memberID int64) ([]model.Reservation, error) {
	q, args, err := qb.Select("id", "reservation_uid", "member_id", "book_id", "status", "reservation_date", "expiry_date", "fulfilled_date", "claim_deadline").
		From(reservationsTableName).
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("reservation_date desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Reservation
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}
