package repository

import (
	"context"
	"errors"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

var (
	ErrDBNotReady = errors.New("database not initialized")

	// ErrInsufficientFunds reports a failed balance guard on Spend or Refund.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// TransactionFields carries the append-only log entry written alongside a
// balance mutation. Amount and type are filled in by the repository.
type TransactionFields struct {
	Reason        string
	ReferenceID   string
	ReferenceType string
}

type LedgerRepository interface {
	// GetOrCreate returns the ledger for uid, creating it with the starting
	// grant and a single EARNED transaction when absent. The unique index on
	// user_uid plus the conditional create keeps this to one ledger per user
	// even under concurrent first access.
	GetOrCreate(ctx context.Context, uid string, grant int64, grantReason string) (*model.CitizenPoints, error)
	GetByUser(ctx context.Context, uid string) (*model.CitizenPoints, error)
	// Award increments balance and total_earned and appends an EARNED
	// transaction, all in one DB transaction.
	Award(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error)
	// Spend decrements balance and increments total_spent behind a
	// balance >= amount guard; ErrInsufficientFunds on guard failure.
	Spend(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error)
	// Refund reverses a prior spend: balance += amount, total_spent -= amount,
	// REFUNDED transaction appended.
	Refund(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error)
	ListTransactions(ctx context.Context, ledgerID uint64, limit int) ([]model.PointTransaction, error)
	SetDB(db *gorm.DB)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetOrCreate(ctx context.Context, uid string, grant int64, grantReason string) (*model.CitizenPoints, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ledger model.CitizenPoints
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_uid = ?", uid).
			Attrs(&model.CitizenPoints{Balance: grant, TotalEarned: grant}).
			FirstOrCreate(&ledger, &model.CitizenPoints{UserUID: uid})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		return tx.Create(&model.PointTransaction{
			CitizenPointsID: ledger.ID,
			Type:            model.TransactionEarned,
			Amount:          grant,
			Reason:          grantReason,
			ReferenceType:   "system",
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) GetByUser(ctx context.Context, uid string) (*model.CitizenPoints, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ledger model.CitizenPoints
	if err := r.db.WithContext(ctx).Where("user_uid = ?", uid).First(&ledger).Error; err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) Award(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ledger model.CitizenPoints
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_uid = ?", uid).First(&ledger).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CitizenPoints{}).
			Where("id = ?", ledger.ID).
			Updates(map[string]interface{}{
				"balance":      gorm.Expr("balance + ?", amount),
				"total_earned": gorm.Expr("total_earned + ?", amount),
			}).Error; err != nil {
			return err
		}
		if err := tx.Create(&model.PointTransaction{
			CitizenPointsID: ledger.ID,
			Type:            model.TransactionEarned,
			Amount:          amount,
			Reason:          f.Reason,
			ReferenceID:     f.ReferenceID,
			ReferenceType:   f.ReferenceType,
		}).Error; err != nil {
			return err
		}
		return tx.First(&ledger, ledger.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) Spend(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ledger model.CitizenPoints
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_uid = ?", uid).First(&ledger).Error; err != nil {
			return err
		}
		res := tx.Model(&model.CitizenPoints{}).
			Where("id = ? AND balance >= ?", ledger.ID, amount).
			Updates(map[string]interface{}{
				"balance":     gorm.Expr("balance - ?", amount),
				"total_spent": gorm.Expr("total_spent + ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Create(&model.PointTransaction{
			CitizenPointsID: ledger.ID,
			Type:            model.TransactionSpent,
			Amount:          amount,
			Reason:          f.Reason,
			ReferenceID:     f.ReferenceID,
			ReferenceType:   f.ReferenceType,
		}).Error; err != nil {
			return err
		}
		return tx.First(&ledger, ledger.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) Refund(ctx context.Context, uid string, amount int64, f TransactionFields) (*model.CitizenPoints, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var ledger model.CitizenPoints
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_uid = ?", uid).First(&ledger).Error; err != nil {
			return err
		}
		res := tx.Model(&model.CitizenPoints{}).
			Where("id = ? AND total_spent >= ?", ledger.ID, amount).
			Updates(map[string]interface{}{
				"balance":     gorm.Expr("balance + ?", amount),
				"total_spent": gorm.Expr("total_spent - ?", amount),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInsufficientFunds
		}
		if err := tx.Create(&model.PointTransaction{
			CitizenPointsID: ledger.ID,
			Type:            model.TransactionRefunded,
			Amount:          amount,
			Reason:          f.Reason,
			ReferenceID:     f.ReferenceID,
			ReferenceType:   f.ReferenceType,
		}).Error; err != nil {
			return err
		}
		return tx.First(&ledger, ledger.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &ledger, nil
}

func (r *ledgerRepository) ListTransactions(ctx context.Context, ledgerID uint64, limit int) ([]model.PointTransaction, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var list []model.PointTransaction
	if err := r.db.WithContext(ctx).
		Where("citizen_points_id = ?", ledgerID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ledgerRepository) SetDB(db *gorm.DB) {
	r.db = db
}
