package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"gorm.io/gorm"
)

type ServantService interface {
	Create(ctx context.Context, s *model.CivilServant) (*model.CivilServant, error)
	Get(ctx context.Context, id uint64) (*model.CivilServant, error)
	List(ctx context.Context, f repository.ServantFilter, limit, offset int) ([]model.CivilServant, int64, error)
	Update(ctx context.Context, id uint64, apply func(*model.CivilServant)) (*model.CivilServant, error)
}

type servantService struct {
	repo repository.CivilServantRepository
}

func NewServantService(repo repository.CivilServantRepository) ServantService {
	return &servantService{repo: repo}
}

func (s *servantService) Create(ctx context.Context, sv *model.CivilServant) (*model.CivilServant, error) {
	sv.Name = strings.TrimSpace(sv.Name)
	sv.Position = strings.TrimSpace(sv.Position)
	sv.Department = strings.TrimSpace(sv.Department)
	if sv.Name == "" || sv.Position == "" || sv.Department == "" {
		return nil, fmt.Errorf("%w: name, position and department are required", ErrInvalidInput)
	}
	if err := s.repo.Create(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}

func (s *servantService) Get(ctx context.Context, id uint64) (*model.CivilServant, error) {
	sv, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sv, nil
}

func (s *servantService) List(ctx context.Context, f repository.ServantFilter, limit, offset int) ([]model.CivilServant, int64, error) {
	return s.repo.List(ctx, f, limit, offset)
}

func (s *servantService) Update(ctx context.Context, id uint64, apply func(*model.CivilServant)) (*model.CivilServant, error) {
	sv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(sv)
	if err := s.repo.Save(ctx, sv); err != nil {
		return nil, err
	}
	return sv, nil
}
