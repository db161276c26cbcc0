package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ostanin/lending-service/config"
	"github.com/ostanin/lending-service/internal/model"
	"github.com/ostanin/lending-service/internal/repository"
)

type Members struct {
	repo   repository.Repository
	policy config.Policy
	log    *zap.Logger
}

func NewMembers(repo repository.Repository, policy config.Policy, log *zap.Logger) *Members {
	return &Members{
		repo:   repo,
		policy: policy,
		log:    log.Named("members"),
	}
}

// NextID allocates the next membership number for the year. The per-year
// sequence row serializes concurrent registrations, so a bare
// read-then-format race cannot produce duplicates.
func (s *Members) NextID(ctx context.Context, year int) (string, error) {
	seq, err := s.repo.NextMembershipSeq(ctx, year)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LIB-%d-%05d", year, seq), nil
}

func (s *Members) Create(ctx context.Context, req model.CreateMemberRequest, now time.Time) (model.Member, error) {
	membershipNo, err := s.NextID(ctx, now.Year())
	if err != nil {
		return model.Member{}, err
	}
	return s.repo.CreateMember(ctx, model.Member{
		MemberUid:    uuid.NewString(),
		MembershipNo: membershipNo,
		Name:         req.Name,
		Email:        req.Email,
		Status:       model.MemberActive,
		StartDate:    now,
		ExpiryDate:   now.AddDate(s.policy.MembershipYears, 0, 0),
	})
}

func (s *Members) Get(ctx context.Context, memberUid string) (model.Member, error) {
	return s.repo.GetMember(ctx, memberUid)
}
