package repository

import (
	"context"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type PunchCardRepository interface {
	// Upsert writes the attendance record for (servant, date), replacing any
	// existing row for that date.
	Upsert(ctx context.Context, pc *model.PunchCard) error
	ListByServant(ctx context.Context, servantID uint64, from, to time.Time) ([]model.PunchCard, error)
	// AttendanceRate is the share of PRESENT/LATE days among recorded days,
	// 0 when nothing is recorded.
	AttendanceRate(ctx context.Context, servantID uint64) (float64, error)
	SetDB(db *gorm.DB)
}

type punchCardRepository struct {
	db *gorm.DB
}

func NewPunchCardRepository(db *gorm.DB) PunchCardRepository {
	return &punchCardRepository{db: db}
}

func (r *punchCardRepository) Upsert(ctx context.Context, pc *model.PunchCard) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.PunchCard
		res := tx.Where("civil_servant_id = ? AND date = ?", pc.CivilServantID, pc.Date).
			Attrs(pc).
			FirstOrCreate(&existing)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			pc.ID = existing.ID
			return nil
		}
		pc.ID = existing.ID
		pc.CreatedAt = existing.CreatedAt
		return tx.Save(pc).Error
	})
}

func (r *punchCardRepository) ListByServant(ctx context.Context, servantID uint64, from, to time.Time) ([]model.PunchCard, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	q := r.db.WithContext(ctx).Where("civil_servant_id = ?", servantID)
	if !from.IsZero() {
		q = q.Where("date >= ?", from)
	}
	if !to.IsZero() {
		q = q.Where("date <= ?", to)
	}
	var list []model.PunchCard
	if err := q.Order("date DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *punchCardRepository) AttendanceRate(ctx context.Context, servantID uint64) (float64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PunchCard{}).
		Where("civil_servant_id = ?", servantID).
		Count(&total).Error; err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}
	var present int64
	if err := r.db.WithContext(ctx).
		Model(&model.PunchCard{}).
		Where("civil_servant_id = ? AND status IN ?", servantID,
			[]model.PunchCardStatus{model.PunchCardStatusPresent, model.PunchCardStatusLate}).
		Count(&present).Error; err != nil {
		return 0, err
	}
	return float64(present) / float64(total), nil
}

func (r *punchCardRepository) SetDB(db *gorm.DB) {
	r.db = db
}
