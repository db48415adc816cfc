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

type SettingService interface {
	Set(ctx context.Context, s *model.Setting) error
	Get(ctx context.Context, key string) (*model.Setting, error)
	ListPublic(ctx context.Context) ([]model.Setting, error)
}

type settingService struct {
	repo repository.SettingRepository
}

func NewSettingService(repo repository.SettingRepository) SettingService {
	return &settingService{repo: repo}
}

func (s *settingService) Set(ctx context.Context, st *model.Setting) error {
	st.Key = strings.TrimSpace(st.Key)
	if st.Key == "" {
		return fmt.Errorf("%w: key is required", ErrInvalidInput)
	}
	return s.repo.Upsert(ctx, st)
}

func (s *settingService) Get(ctx context.Context, key string) (*model.Setting, error) {
	st, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return st, nil
}

func (s *settingService) ListPublic(ctx context.Context) ([]model.Setting, error) {
	return s.repo.ListPublic(ctx)
}
