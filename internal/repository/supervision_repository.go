package repository

import (
	"context"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type SupervisionRepository interface {
	// FindOrCreate returns the supervision row for (user, servant), creating
	// or reactivating it as needed. created reports whether the pair was new.
	FindOrCreate(ctx context.Context, userUID string, servantID uint64) (sv *model.Supervision, created bool, err error)
	Deactivate(ctx context.Context, userUID string, servantID uint64) error
	ListActiveByUser(ctx context.Context, userUID string) ([]model.Supervision, error)
	// ActiveSupervisorUIDs powers notification fan-out for a servant.
	ActiveSupervisorUIDs(ctx context.Context, servantID uint64) ([]string, error)
	SetDB(db *gorm.DB)
}

type supervisionRepository struct {
	db *gorm.DB
}

func NewSupervisionRepository(db *gorm.DB) SupervisionRepository {
	return &supervisionRepository{db: db}
}

func (r *supervisionRepository) FindOrCreate(ctx context.Context, userUID string, servantID uint64) (*model.Supervision, bool, error) {
	if r.db == nil {
		return nil, false, ErrDBNotReady
	}
	var sv model.Supervision
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_uid = ? AND civil_servant_id = ?", userUID, servantID).
			Attrs(&model.Supervision{IsActive: true}).
			FirstOrCreate(&sv, &model.Supervision{UserUID: userUID, CivilServantID: servantID})
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		if !created && !sv.IsActive {
			sv.IsActive = true
			return tx.Model(&sv).Update("is_active", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &sv, created, nil
}

func (r *supervisionRepository) Deactivate(ctx context.Context, userUID string, servantID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	res := r.db.WithContext(ctx).
		Model(&model.Supervision{}).
		Where("user_uid = ? AND civil_servant_id = ? AND is_active = ?", userUID, servantID, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *supervisionRepository) ListActiveByUser(ctx context.Context, userUID string) ([]model.Supervision, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Supervision
	if err := r.db.WithContext(ctx).
		Where("user_uid = ? AND is_active = ?", userUID, true).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *supervisionRepository) ActiveSupervisorUIDs(ctx context.Context, servantID uint64) ([]string, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var uids []string
	if err := r.db.WithContext(ctx).
		Model(&model.Supervision{}).
		Where("civil_servant_id = ? AND is_active = ?", servantID, true).
		Pluck("user_uid", &uids).Error; err != nil {
		return nil, err
	}
	return uids, nil
}

func (r *supervisionRepository) SetDB(db *gorm.DB) {
	r.db = db
}
