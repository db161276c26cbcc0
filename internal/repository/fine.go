package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
)

// UpsertOverdueFine issues or re-assesses the single overdue fine a
// borrowing may carry. The partial unique index on (borrowing_id) where
// reason = 'OVERDUE' makes re-assessment an update, never a duplicate;
// a fine already paid or waived is left untouched.
func (r *repository) UpsertOverdueFine(ctx context.Context, f model.Fine) (model.Fine, error) {
	q := fmt.Sprintf(`
insert into %s (fine_uid, borrowing_id, member_id, amount_cents, reason, status, issued_date)
values ($1, $2, $3, $4, 'OVERDUE', 'UNPAID', $5)
on conflict (borrowing_id) where reason = 'OVERDUE'
do update set amount_cents = excluded.amount_cents
where %s.status = 'UNPAID'
returning id, fine_uid, borrowing_id, member_id, amount_cents, reason, status, issued_date, paid_date`,
		finesTableName, finesTableName)

	var upserted model.Fine
	err := sqlx.GetContext(ctx, r.ext(ctx), &upserted, q,
		f.FineUid, f.BorrowingID, f.MemberID, f.AmountCents, f.IssuedDate.Format(time.DateOnly))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// settled fine: keep it as issued
			return r.getFine(ctx, sq.Eq{"borrowing_id": f.BorrowingID, "reason": model.FineOverdue})
		}
		r.log.Error("UpsertOverdueFine", zap.Error(err))
		return model.Fine{}, err
	}
	return upserted, nil
}

func (r *repository) CreateFine(ctx context.Context, f model.Fine) (model.Fine, error) {
	q, args, err := qb.Insert(finesTableName).
		Columns("fine_uid", "borrowing_id", "member_id", "amount_cents", "reason", "status", "issued_date").
		Values(f.FineUid, f.BorrowingID, f.MemberID, f.AmountCents, f.Reason, f.Status, f.IssuedDate.Format(time.DateOnly)).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Fine{}, err
	}

	var created model.Fine
	if err := sqlx.GetContext(ctx, r.ext(ctx), &created, q, args...); err != nil {
		r.log.Error("CreateFine", zap.String("q", q), zap.Any("args", args))
		return model.Fine{}, err
	}
	return created, nil
}

func (r *repository) GetFine(ctx context.Context, fineUid string) (model.Fine, error) {
	return r.getFine(ctx, sq.Eq{"fine_uid": fineUid})
}

func (r *repository) getFine(ctx context.Context, pred sq.Eq) (model.Fine, error) {
	q, args, err := qb.Select("id", "fine_uid", "borrowing_id", "member_id", "amount_cents", "reason", "status", "issued_date", "paid_date").
		From(finesTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Fine{}, err
	}

	var f model.Fine
	if err := sqlx.GetContext(ctx, r.ext(ctx), &f, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Fine{}, errs.ErrNotFound
		}
		return model.Fine{}, err
	}
	return f, nil
}

func (r *repository) PayFine(ctx context.Context, fineID int64, paidDate time.Time) error {
	q := fmt.Sprintf(`
update %s
    set status = 'PAID', paid_date = $2
where id = $1 and status = 'UNPAID'`, finesTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, fineID, paidDate.Format(time.DateOnly))
	if err != nil {
		return err
	}
	return r.requireFineTransition(res)
}

func (r *repository) WaiveFine(ctx context.Context, fineID int64) error {
	q := fmt.Sprintf(`
update %s
    set status = 'WAIVED'
where id = $1 and status = 'UNPAID'`, finesTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, fineID)
	if err != nil {
		return err
	}
	return r.requireFineTransition(res)
}

func (r *repository) requireFineTransition(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrInvalidFineState
	}
	return nil
}

func (r *repository) ListMemberFines(ctx context.Context, memberID int64) ([]model.Fine, error) {
	q, args, err := qb.Select("id", "fine_uid", "borrowing_id", "member_id", "amount_cents", "reason", "status", "issued_date", "paid_date").
		From(finesTableName).
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("issued_date desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Fine
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}
