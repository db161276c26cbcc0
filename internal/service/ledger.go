package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/ostanin/lending-service/internal/repository"
)

// Ledger is the single authority over copy counts. No other component
// writes available_copies.
type Ledger struct {
	repo repository.Repository
	log  *zap.Logger
}

func NewLedger(repo repository.Repository, log *zap.Logger) *Ledger {
	return &Ledger{
		repo: repo,
		log:  log.Named("ledger"),
	}
}

// TryDecrement claims one copy, or fails with ErrNoCopiesAvailable.
// The check and the write are one atomic statement.
func (l *Ledger) TryDecrement(ctx context.Context, bookID int64) error {
	return l.repo.DecrementAvailable(ctx, bookID)
}

// Increment releases one copy back. Exceeding total_copies surfaces as
// an integrity violation from the repository.
func (l *Ledger) Increment(ctx context.Context, bookID int64) error {
	return l.repo.IncrementAvailable(ctx, bookID)
}
