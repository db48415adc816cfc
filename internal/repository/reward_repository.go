package repository

import (
	"context"
	"errors"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

// ErrStockExhausted reports a failed stock guard on DecrementStock.
var ErrStockExhausted = errors.New("stock exhausted")

type RewardRepository interface {
	Create(ctx context.Context, rw *model.Reward) error
	FindByID(ctx context.Context, id uint64) (*model.Reward, error)
	ListActive(ctx context.Context, category model.RewardCategory, limit, offset int) ([]model.Reward, int64, error)
	Save(ctx context.Context, rw *model.Reward) error
	// DecrementStock takes one unit off a finite stock; ErrStockExhausted when
	// the guard (stock > 0) does not hold. No-op for unlimited rewards.
	DecrementStock(ctx context.Context, id uint64) error
	IncrementStock(ctx context.Context, id uint64) error

	CreateRedemption(ctx context.Context, rd *model.RewardRedemption) error
	FindRedemption(ctx context.Context, id uint64) (*model.RewardRedemption, error)
	SaveRedemption(ctx context.Context, rd *model.RewardRedemption) error
	ListRedemptionsByUser(ctx context.Context, userUID string, limit int) ([]model.RewardRedemption, error)
	SetDB(db *gorm.DB)
}

type rewardRepository struct {
	db *gorm.DB
}

func NewRewardRepository(db *gorm.DB) RewardRepository {
	return &rewardRepository{db: db}
}

func (r *rewardRepository) Create(ctx context.Context, rw *model.Reward) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(rw).Error
}

func (r *rewardRepository) FindByID(ctx context.Context, id uint64) (*model.Reward, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rw model.Reward
	if err := r.db.WithContext(ctx).First(&rw, id).Error; err != nil {
		return nil, err
	}
	return &rw, nil
}

func (r *rewardRepository) ListActive(ctx context.Context, category model.RewardCategory, limit, offset int) ([]model.Reward, int64, error) {
	if r.db == nil {
		return nil, 0, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	q := r.db.WithContext(ctx).Model(&model.Reward{}).Where("is_active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var list []model.Reward
	if err := q.Order("point_cost ASC").Limit(limit).Offset(offset).Find(&list).Error; err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *rewardRepository) Save(ctx context.Context, rw *model.Reward) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(rw).Error
}

func (r *rewardRepository) DecrementStock(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	// Only finite stocks get the guarded decrement. Setting a NULL stock to
	// NULL counts as zero affected rows on MySQL's default changed-rows
	// reporting, which would misread unlimited as exhausted.
	res := r.db.WithContext(ctx).
		Model(&model.Reward{}).
		Where("id = ? AND stock IS NOT NULL AND stock > 0", id).
		Update("stock", gorm.Expr("stock - 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}
	var rw model.Reward
	if err := r.db.WithContext(ctx).Select("stock").First(&rw, id).Error; err != nil {
		return err
	}
	if rw.Stock == nil {
		return nil
	}
	return ErrStockExhausted
}

func (r *rewardRepository) IncrementStock(ctx context.Context, id uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.Reward{}).
		Where("id = ? AND stock IS NOT NULL", id).
		Update("stock", gorm.Expr("stock + 1")).Error
}

func (r *rewardRepository) CreateRedemption(ctx context.Context, rd *model.RewardRedemption) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Create(rd).Error
}

func (r *rewardRepository) FindRedemption(ctx context.Context, id uint64) (*model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rd model.RewardRedemption
	if err := r.db.WithContext(ctx).First(&rd, id).Error; err != nil {
		return nil, err
	}
	return &rd, nil
}

func (r *rewardRepository) SaveRedemption(ctx context.Context, rd *model.RewardRedemption) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Save(rd).Error
}

func (r *rewardRepository) ListRedemptionsByUser(ctx context.Context, userUID string, limit int) ([]model.RewardRedemption, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.RewardRedemption
	if err := r.db.WithContext(ctx).
		Where("user_uid = ?", userUID).
		Order("created_at DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *rewardRepository) SetDB(db *gorm.DB) {
	r.db = db
}
