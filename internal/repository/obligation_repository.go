package repository

import (
	"context"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type ObligationRepository interface {
	Create(ctx context.Context, o *model.Obligation) error
	FindByID(ctx context.Context, id uint64) (*model.Obligation, error)
	ListByServant(ctx context.Context, servantID uint64, status model.ObligationStatus, limit, offset int) ([]model.Obligation, int64, error)
	Save(ctx context.Context, o *model.Obligation) error
	CreateUpdate(ctx context.Context, u *model.ObligationUpdate) error
	ListUpdates(ctx context.Context, obligationID uint64) ([]model.ObligationUpdate, error)
	// ListExpired returns open obligations whose deadline passed before cutoff.
	ListExpired(ctx context.Context, cutoff time.Time) ([]model.Obligation, error)
	// CountByStatus returns per-status obligation counts for a servant.
	CountByStatus(ctx context.Context, servantID uint64) (map[model.ObligationStatus]int64, error)
	SetDB(db *gorm.DB)
}

type obligationRepository struct {
	db *gorm.DB
}

func NewObligationRepository(db *gorm.DB) ObligationRepository {
	return &obligationRepository{db: db}
}

func (r *obligationRepository) Create(ctx context.Context, o *model.Obligation) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *obligationRepository) FindByID(ctx context.Context, id uint64) (*model.Obligation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Obligation
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *obligationRepository) ListByServant(ctx context.Context, servantID uint64, status model.ObligationStatus, limit, offset int) ([]model.Obligation, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.Obligation{}).Where("civil_servant_id = ?", servantID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Obligation
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *obligationRepository) Save(ctx context.Context, o *model.Obligation) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *obligationRepository) CreateUpdate(ctx context.Context, u *model.ObligationUpdate) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *obligationRepository) ListUpdates(ctx context.Context, obligationID uint64) ([]model.ObligationUpdate, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.ObligationUpdate
	if err := r.db.WithContext(ctx).
		Where("obligation_id = ?", obligationID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *obligationRepository) ListExpired(ctx context.Context, cutoff time.Time) ([]model.Obligation, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Obligation
	if err := r.db.WithContext(ctx).
		Where("deadline IS NOT NULL AND deadline < ? AND status IN ?", cutoff,
			[]model.ObligationStatus{model.ObligationStatusPending, model.ObligationStatusInProgress}).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

type statusCount struct {
	Status model.ObligationStatus
	Cnt    int64
}

func (r *obligationRepository) CountByStatus(ctx context.Context, servantID uint64) (map[model.ObligationStatus]int64, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&model.Obligation{}).
		Select("status, COUNT(*) AS cnt").
		Where("civil_servant_id = ?", servantID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[model.ObligationStatus]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Cnt
	}
	return out, nil
}

func (r *obligationRepository) SetDB(db *gorm.DB) {
	r.db = db
}
