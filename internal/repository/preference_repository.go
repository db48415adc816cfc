package repository

import (
	"context"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type PreferenceRepository interface {
	GetByUser(ctx context.Context, userUID string) (*model.UserPreferences, error)
	Create(ctx context.Context, p *model.UserPreferences) error
	Save(ctx context.Context, p *model.UserPreferences) error
	SetDB(db *gorm.DB)
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(db *gorm.DB) PreferenceRepository {
	return &preferenceRepository{db: db}
}

func (r *preferenceRepository) GetByUser(ctx context.Context, userUID string) (*model.UserPreferences, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var p model.UserPreferences
	if err := r.db.WithContext(ctx).Where("user_uid = ?", userUID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *preferenceRepository) Create(ctx context.Context, p *model.UserPreferences) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *preferenceRepository) Save(ctx context.Context, p *model.UserPreferences) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *preferenceRepository) SetDB(db *gorm.DB) {
	r.db = db
}
