package repository

import (
	"context"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

// ServantFilter narrows List; empty fields match everything.
type ServantFilter struct {
	Department string
	Position   string
	Location   string
}

type CivilServantRepository interface {
	Create(ctx context.Context, s *model.CivilServant) error
	FindByID(ctx context.Context, id uint64) (*model.CivilServant, error)
	List(ctx context.Context, f ServantFilter, limit, offset int) ([]model.CivilServant, int64, error)
	Save(ctx context.Context, s *model.CivilServant) error
	SetDB(db *gorm.DB)
}

type civilServantRepository struct {
	db *gorm.DB
}

func NewCivilServantRepository(db *gorm.DB) CivilServantRepository {
	return &civilServantRepository{db: db}
}

func (r *civilServantRepository) Create(ctx context.Context, s *model.CivilServant) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *civilServantRepository) FindByID(ctx context.Context, id uint64) (*model.CivilServant, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.CivilServant
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *civilServantRepository) List(ctx context.Context, f ServantFilter, limit, offset int) ([]model.CivilServant, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.CivilServant{})
	if f.Department != "" {
		q = q.Where("department = ?", f.Department)
	}
	if f.Position != "" {
		q = q.Where("position = ?", f.Position)
	}
	if f.Location != "" {
		q = q.Where("location = ?", f.Location)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.CivilServant
	if err := q.Order("name ASC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *civilServantRepository) Save(ctx context.Context, s *model.CivilServant) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *civilServantRepository) SetDB(db *gorm.DB) {
	r.db = db
}
