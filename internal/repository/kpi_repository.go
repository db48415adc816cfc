package repository

import (
	"context"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type KPIRepository interface {
	Create(ctx context.Context, k *model.KPI) error
	FindByID(ctx context.Context, id uint64) (*model.KPI, error)
	ListByServant(ctx context.Context, servantID uint64, limit, offset int) ([]model.KPI, int64, error)
	Save(ctx context.Context, k *model.KPI) error
	CreateUpdate(ctx context.Context, u *model.KPIUpdate) error
	ListUpdates(ctx context.Context, kpiID uint64) ([]model.KPIUpdate, error)
	// CountOnTarget reports how many of the servant's KPIs meet their target.
	CountOnTarget(ctx context.Context, servantID uint64) (onTarget, total int64, err error)
	SetDB(db *gorm.DB)
}

type kpiRepository struct {
	db *gorm.DB
}

func NewKPIRepository(db *gorm.DB) KPIRepository {
	return &kpiRepository{db: db}
}

func (r *kpiRepository) Create(ctx context.Context, k *model.KPI) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(k).Error
}

func (r *kpiRepository) FindByID(ctx context.Context, id uint64) (*model.KPI, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var k model.KPI
	if err := r.db.WithContext(ctx).First(&k, id).Error; err != nil {
		return nil, err
	}
	return &k, nil
}

func (r *kpiRepository) ListByServant(ctx context.Context, servantID uint64, limit, offset int) ([]model.KPI, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.KPI{}).Where("civil_servant_id = ?", servantID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.KPI
	if err := q.Order("deadline ASC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *kpiRepository) Save(ctx context.Context, k *model.KPI) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(k).Error
}

func (r *kpiRepository) CreateUpdate(ctx context.Context, u *model.KPIUpdate) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *kpiRepository) ListUpdates(ctx context.Context, kpiID uint64) ([]model.KPIUpdate, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.KPIUpdate
	if err := r.db.WithContext(ctx).
		Where("kpi_id = ?", kpiID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *kpiRepository) CountOnTarget(ctx context.Context, servantID uint64) (int64, int64, error) {
	if r.db == nil {
		return 0, 0, ErrDBNotReady
	}
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.KPI{}).
		Where("civil_servant_id = ?", servantID).
		Count(&total).Error; err != nil {
		return 0, 0, err
	}
	var onTarget int64
	if err := r.db.WithContext(ctx).
		Model(&model.KPI{}).
		Where("civil_servant_id = ? AND current >= target", servantID).
		Count(&onTarget).Error; err != nil {
		return 0, 0, err
	}
	return onTarget, total, nil
}

func (r *kpiRepository) SetDB(db *gorm.DB) {
	r.db = db
}
