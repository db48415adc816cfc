package model

import "time"

type RewardCategory string

const (
	RewardCategoryDigitalBadge RewardCategory = "DIGITAL_BADGE"
	RewardCategoryNFTMedal     RewardCategory = "NFT_MEDAL"
	RewardCategoryPhysicalItem RewardCategory = "PHYSICAL_ITEM"
	RewardCategoryExperience   RewardCategory = "EXPERIENCE"
)

func (c RewardCategory) Valid() bool {
	switch c {
	case RewardCategoryDigitalBadge, RewardCategoryNFTMedal,
		RewardCategoryPhysicalItem, RewardCategoryExperience:
		return true
	}
	return false
}

// Reward is a catalog entry. Stock nil means unlimited.
type Reward struct {
	ID          uint64         `gorm:"primaryKey;autoIncrement"`
	Title       string         `gorm:"column:title;size:255;not null"`
	Description string         `gorm:"column:description;type:text;not null"`
	PointCost   int64          `gorm:"column:point_cost;index;not null"`
	Category    RewardCategory `gorm:"column:category;size:32;index;not null"`
	IsActive    bool           `gorm:"column:is_active;not null;default:true"`
	Stock       *int64         `gorm:"column:stock"`
	Image       string         `gorm:"column:image;type:text"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
}

func (Reward) TableName() string {
	return "rewards"
}

type RedemptionStatus string

const (
	RedemptionStatusPending    RedemptionStatus = "PENDING"
	RedemptionStatusProcessing RedemptionStatus = "PROCESSING"
	RedemptionStatusCompleted  RedemptionStatus = "COMPLETED"
	RedemptionStatusCancelled  RedemptionStatus = "CANCELLED"
)

type RewardRedemption struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	RewardID     uint64           `gorm:"column:reward_id;index;not null"`
	UserUID      string           `gorm:"column:user_uid;size:128;index;not null"`
	PointsSpent  int64            `gorm:"column:points_spent;not null"`
	Status       RedemptionStatus `gorm:"column:status;size:32;index;not null"`
	Code         string           `gorm:"column:code;size:64;uniqueIndex;not null"`
	DeliveryInfo string           `gorm:"column:delivery_info;type:text"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime"`
}

func (RewardRedemption) TableName() string {
	return "reward_redemptions"
}
