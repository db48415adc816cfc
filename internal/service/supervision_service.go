package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const pointsFirstFollow = 5

type SupervisionService interface {
	// Follow is idempotent; the first follow of a servant awards points.
	Follow(ctx context.Context, userUID string, servantID uint64) (*model.Supervision, error)
	Unfollow(ctx context.Context, userUID string, servantID uint64) error
	ListMine(ctx context.Context, userUID string) ([]model.Supervision, error)
}

type supervisionService struct {
	repo        repository.SupervisionRepository
	servantRepo repository.CivilServantRepository
	ledger      LedgerService
	log         *zap.Logger
}

func NewSupervisionService(repo repository.SupervisionRepository, servantRepo repository.CivilServantRepository, ledger LedgerService, log *zap.Logger) SupervisionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &supervisionService{repo: repo, servantRepo: servantRepo, ledger: ledger, log: log}
}

func (s *supervisionService) Follow(ctx context.Context, userUID string, servantID uint64) (*model.Supervision, error) {
	if _, err := s.servantRepo.FindByID(ctx, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	sv, created, err := s.repo.FindOrCreate(ctx, userUID, servantID)
	if err != nil {
		return nil, err
	}
	if created {
		if _, err := s.ledger.Award(ctx, userUID, pointsFirstFollow, "started supervision",
			fmt.Sprintf("%d", servantID), "supervision"); err != nil {
			s.log.Warn("follow points not awarded", zap.String("user", userUID), zap.Error(err))
		}
	}
	return sv, nil
}

func (s *supervisionService) Unfollow(ctx context.Context, userUID string, servantID uint64) error {
	if err := s.repo.Deactivate(ctx, userUID, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *supervisionService) ListMine(ctx context.Context, userUID string) ([]model.Supervision, error) {
	return s.repo.ListActiveByUser(ctx, userUID)
}
