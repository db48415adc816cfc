package model

import "time"

// Supervision links a citizen to a civil servant they follow. One row per pair;
// unfollow flips IsActive instead of deleting.
type Supervision struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	UserUID        string    `gorm:"column:user_uid;size:128;uniqueIndex:idx_supervision_user_servant;not null"`
	CivilServantID uint64    `gorm:"column:civil_servant_id;uniqueIndex:idx_supervision_user_servant;index;not null"`
	IsActive       bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Supervision) TableName() string {
	return "supervisions"
}
