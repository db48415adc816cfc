package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"gorm.io/gorm"
)

type PunchCardService interface {
	Record(ctx context.Context, servantID uint64, date time.Time, status model.PunchCardStatus, checkIn, checkOut *time.Time, notes string) (*model.PunchCard, error)
	ListByServant(ctx context.Context, servantID uint64, from, to time.Time) ([]model.PunchCard, error)
}

type punchCardService struct {
	repo        repository.PunchCardRepository
	servantRepo repository.CivilServantRepository
}

func NewPunchCardService(repo repository.PunchCardRepository, servantRepo repository.CivilServantRepository) PunchCardService {
	return &punchCardService{repo: repo, servantRepo: servantRepo}
}

func (s *punchCardService) Record(ctx context.Context, servantID uint64, date time.Time, status model.PunchCardStatus, checkIn, checkOut *time.Time, notes string) (*model.PunchCard, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: invalid attendance status", ErrInvalidInput)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if checkIn != nil && checkOut != nil && checkOut.Before(*checkIn) {
		return nil, fmt.Errorf("%w: check-out before check-in", ErrInvalidInput)
	}
	if _, err := s.servantRepo.FindByID(ctx, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	pc := &model.PunchCard{
		CivilServantID: servantID,
		Date:           date.Truncate(24 * time.Hour),
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Status:         status,
		Notes:          notes,
	}
	if err := s.repo.Upsert(ctx, pc); err != nil {
		return nil, err
	}
	return pc, nil
}

func (s *punchCardService) ListByServant(ctx context.Context, servantID uint64, from, to time.Time) ([]model.PunchCard, error) {
	if _, err := s.servantRepo.FindByID(ctx, servantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.repo.ListByServant(ctx, servantID, from, to)
}
