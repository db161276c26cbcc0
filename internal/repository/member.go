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

func (r *repository) CreateMember(ctx context.Context, m model.Member) (model.Member, error) {
	q, args, err := qb.Insert(membersTableName).
		Columns("member_uid", "membership_no", "name", "email", "status", "start_date", "expiry_date").
		Values(m.MemberUid, m.MembershipNo, m.Name, m.Email, m.Status,
			m.StartDate.Format(time.DateOnly), m.ExpiryDate.Format(time.DateOnly)).
		Suffix("returning *").
		ToSql()
	if err != nil {
		return model.Member{}, err
	}

	var created model.Member
	if err := sqlx.GetContext(ctx, r.ext(ctx), &created, q, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == "members_membership_no_key" {
			// the allocator is serialized; hitting this means the guard is broken
			ierr := errs.Integrityf("membership_no collision on %s", m.MembershipNo)
			r.log.Error("CreateMember", zap.Error(ierr))
			return model.Member{}, ierr
		}
		return model.Member{}, err
	}
	return created, nil
}

func (r *repository) GetMember(ctx context.Context, memberUid string) (model.Member, error) {
	return r.getMember(ctx, sq.Eq{"member_uid": memberUid})
}

func (r *repository) GetMemberByID(ctx context.Context, memberID int64) (model.Member, error) {
	return r.getMember(ctx, sq.Eq{"id": memberID})
}

func (r *repository) getMember(ctx context.Context, pred sq.Eq) (model.Member, error) {
	q, args, err := qb.Select("id", "member_uid", "membership_no", "name", "email", "status", "start_date", "expiry_date").
		From(membersTableName).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return model.Member{}, err
	}

	var m model.Member
	if err := sqlx.GetContext(ctx, r.ext(ctx), &m, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Member{}, errs.ErrNotFound
		}
		return model.Member{}, err
	}
	return m, nil
}

// NextMembershipSeq hands out the next per-year sequence number. The
// upsert takes a row lock on the year, so concurrent registrations are
// serialized by the database rather than by an in-process mutex.
func (r *repository) NextMembershipSeq(ctx context.Context, year int) (int, error) {
	q := `
insert into membership_sequences (year, seq) values ($1, 1)
on conflict (year) do update set seq = membership_sequences.seq + 1
returning seq`

	var seq int
	if err := r.ext(ctx).QueryRowxContext(ctx, q, year).Scan(&seq); err != nil {
		return 0, err
	}
	return seq, nil
}

func (r *repository) UnpaidFineTotal(ctx context.Context, memberID int64) (int64, error) {
	q := fmt.Sprintf(`
select coalesce(sum(amount_cents), 0) from %s
where member_id = $1 and status = 'UNPAID'`, finesTableName)

	var total int64
	if err := r.ext(ctx).QueryRowxContext(ctx, q, memberID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}
