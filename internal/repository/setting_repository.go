package repository

import (
	"context"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type SettingRepository interface {
	Upsert(ctx context.Context, s *model.Setting) error
	GetByKey(ctx context.Context, key string) (*model.Setting, error)
	ListPublic(ctx context.Context) ([]model.Setting, error)
	SetDB(db *gorm.DB)
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) Upsert(ctx context.Context, s *model.Setting) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.Setting
		res := tx.Where("key_name = ?", s.Key).Attrs(s).FirstOrCreate(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			s.ID = existing.ID
			return nil
		}
		s.ID = existing.ID
		s.CreatedAt = existing.CreatedAt
		return tx.Save(s).Error
	})
}

func (r *settingRepository) GetByKey(ctx context.Context, key string) (*model.Setting, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.Setting
	if err := r.db.WithContext(ctx).Where("key_name = ?", key).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingRepository) ListPublic(ctx context.Context) ([]model.Setting, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Setting
	if err := r.db.WithContext(ctx).
		Where("is_public = ?", true).
		Order("group_name ASC, key_name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settingRepository) SetDB(db *gorm.DB) {
	r.db = db
}
