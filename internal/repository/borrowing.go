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

func (r *repository) CreateBorrowing(ctx context.Context, b model.Borrowing) (model.Borrowing, error) {
	q, args, err := qb.Insert(borrowingsTableName).
		Columns("borrowing_uid", "member_id", "book_id", "borrow_date", "due_date", "status", "fine_amount_cents").
		Values(b.BorrowingUid, b.MemberID, b.BookID,
			b.BorrowDate.Format(time.DateOnly), b.DueDate.Format(time.DateOnly), b.Status, b.FineAmountCents).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}

	var created model.Borrowing
	if err := sqlx.GetContext(ctx, r.ext(ctx), &created, q, args...); err != nil {
		r.log.Error("CreateBorrowing", zap.String("q", q), zap.Any("args", args))
		return model.Borrowing{}, err
	}
	return created, nil
}

func (r *repository) GetBorrowing(ctx context.Context, borrowingUid string) (model.Borrowing, error) {
	q, args, err := qb.Select("id", "borrowing_uid", "member_id", "book_id", "borrow_date", "due_date", "return_date", "status", "fine_amount_cents").
		From(borrowingsTableName).
		Where(sq.Eq{"borrowing_uid": borrowingUid}).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Borrowing{}, err
	}

	var b model.Borrowing
	if err := sqlx.GetContext(ctx, r.ext(ctx), &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Borrowing{}, errs.ErrNotFound
		}
		return model.Borrowing{}, err
	}
	return b, nil
}

// MarkReturned closes the borrowing. The status guard is inside the
// UPDATE so a concurrent double-return is rejected, not applied twice.
func (r *repository) MarkReturned(ctx context.Context, borrowingID int64, returnDate time.Time) error {
	q := fmt.Sprintf(`
update %s
    set status = 'RETURNED', return_date = $2
where id = $1 and status in ('BORROWED', 'OVERDUE')`, borrowingsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, borrowingID, returnDate.Format(time.DateOnly))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrBorrowingClosed
	}
	return nil
}

func (r *repository) MarkLost(ctx context.Context, borrowingID int64) error {
	q := fmt.Sprintf(`
update %s
    set status = 'LOST'
where id = $1 and status in ('BORROWED', 'OVERDUE')`, borrowingsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, borrowingID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrBorrowingClosed
	}
	return nil
}

// MarkOverdueBefore materializes the derived overdue flag for reporting.
// Decisions never rely on it; EffectiveStatus recomputes lazily.
func (r *repository) MarkOverdueBefore(ctx context.Context, asOf time.Time) (int64, error) {
	q := fmt.Sprintf(`
update %s
    set status = 'OVERDUE'
where status = 'BORROWED' and due_date < $1`, borrowingsTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, asOf.Format(time.DateOnly))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *repository) SetBorrowingFineAmount(ctx context.Context, borrowingID, amountCents int64) error {
	q, args, err := qb.Update(borrowingsTableName).
		Set("fine_amount_cents", amountCents).
		Where(sq.Eq{"id": borrowingID}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = r.ext(ctx).ExecContext(ctx, q, args...)
	return err
}

func (r *repository) ListMemberBorrowings(ctx context.Context, memberID int64) ([]model.Borrowing, error) {
	q, args, err := qb.Select("id", "borrowing_uid", "member_id", "book_id", "borrow_date", "due_date", "return_date", "status", "fine_amount_cents").
		From(borrowingsTableName).
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("borrow_date desc", "id desc").
		ToSql()
	if err != nil {
		return nil, err
	}
	var items []model.Borrowing
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &items, q, args...); err != nil {
		return nil, err
	}
	return items, nil
}
