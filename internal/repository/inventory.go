package repository

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/errs"
	"github.com/ostanin/lending-service/internal/model"
)

// DecrementAvailable takes one copy off the shelf. The guard condition is
// part of the UPDATE itself, so two borrowers racing for the last copy
// resolve to exactly one winner.
func (r *repository) DecrementAvailable(ctx context.Context, bookID int64) error {
	q := fmt.Sprintf(`
update %s
    set available_copies = available_copies - 1
where id = $1 and available_copies > 0`, booksTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetBookByID(ctx, bookID); err != nil {
			return err
		}
		return errs.ErrNoCopiesAvailable
	}
	return nil
}

// IncrementAvailable puts a copy back, never past total_copies. A bounded
// update that matches no row on an existing book means the counters were
// already at the ceiling: a broken guard, not a business outcome.
func (r *repository) IncrementAvailable(ctx context.Context, bookID int64) error {
	q := fmt.Sprintf(`
update %s
    set available_copies = available_copies + 1
where id = $1 and available_copies < total_copies`, booksTableName)

	res, err := r.ext(ctx).ExecContext(ctx, q, bookID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetBookByID(ctx, bookID); err != nil {
			return err
		}
		err := errs.Integrityf("increment would exceed total_copies for book %d", bookID)
		r.log.Error("IncrementAvailable", zap.Error(err))
		return err
	}
	return nil
}

func (r *repository) GetBook(ctx context.Context, bookUid string) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"book_uid": bookUid})
}

func (r *repository) GetBookByID(ctx context.Context, bookID int64) (model.Book, error) {
	return r.getBook(ctx, sq.Eq{"id": bookID})
}

func (r *repository) getBook(ctx context.Context, pred sq.Eq) (model.Book, error) {
	query, args, err := qb.Select("id", "book_uid", "isbn", "title", "author_id", "publisher_id", "total_copies", "available_copies").
		From(booksTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Book{}, err
	}

	var book model.Book
	if err := sqlx.GetContext(ctx, r.ext(ctx), &book, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Book{}, errs.ErrNotFound
		}
		return model.Book{}, err
	}
	return book, nil
}

func (r *repository) ListBooks(ctx context.Context, page, size int) ([]model.Book, error) {
	q := qb.Select("id", "book_uid", "isbn", "title", "author_id", "publisher_id", "total_copies", "available_copies").
		From(booksTableName).
		OrderBy("id")

	if page != 0 && size != 0 {
		q = q.Limit(uint64(size)).Offset(uint64((page - 1) * size))
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var books []model.Book
	if err := sqlx.SelectContext(ctx, r.ext(ctx), &books, query, args...); err != nil {
		return nil, err
	}
	return books, nil
}
