package model

import "time"

// CitizenPoints is the per-user point ledger. balance == total_earned - total_spent
// must hold after every committed operation; the service layer enforces it.
type CitizenPoints struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID     string    `gorm:"column:user_uid;size:128;uniqueIndex;not null"`
	Balance     int64     `gorm:"column:balance;not null;default:0"`
	TotalEarned int64     `gorm:"column:total_earned;not null;default:0"`
	TotalSpent  int64     `gorm:"column:total_spent;not null;default:0"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (CitizenPoints) TableName() string {
	return "citizen_points"
}

type TransactionType string

const (
	TransactionEarned   TransactionType = "EARNED"
	TransactionSpent    TransactionType = "SPENT"
	TransactionRefunded TransactionType = "REFUNDED"
)

// PointTransaction is append-only; rows are never mutated or deleted.
type PointTransaction struct {
	ID              uint64          `gorm:"primaryKey;autoIncrement"`
	CitizenPointsID uint64          `gorm:"column:citizen_points_id;index;not null"`
	Type            TransactionType `gorm:"column:type;size:16;index;not null"`
	Amount          int64           `gorm:"column:amount;not null"`
	Reason          string          `gorm:"column:reason;size:255;not null"`
	ReferenceID     string          `gorm:"column:reference_id;size:128"`
	ReferenceType   string          `gorm:"column:reference_type;size:64"`
	CreatedAt       time.Time       `gorm:"autoCreateTime"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}
