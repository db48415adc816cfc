package model

import "time"

type ObligationCategory string

const (
	ObligationCategoryCampaignPromise  ObligationCategory = "CAMPAIGN_PROMISE"
	ObligationCategoryWorkObligation   ObligationCategory = "WORK_OBLIGATION"
	ObligationCategoryPublicCommitment ObligationCategory = "PUBLIC_COMMITMENT"
)

type ObligationStatus string

const (
	ObligationStatusPending    ObligationStatus = "PENDING"
	ObligationStatusInProgress ObligationStatus = "IN_PROGRESS"
	ObligationStatusCompleted  ObligationStatus = "COMPLETED"
	ObligationStatusOverdue    ObligationStatus = "OVERDUE"
	ObligationStatusCancelled  ObligationStatus = "CANCELLED"
)

func (s ObligationStatus) Valid() bool {
	switch s {
	case ObligationStatusPending, ObligationStatusInProgress, ObligationStatusCompleted,
		ObligationStatusOverdue, ObligationStatusCancelled:
		return true
	}
	return false
}

// Terminal statuses never transition again; OVERDUE can still be completed.
func (s ObligationStatus) Terminal() bool {
	return s == ObligationStatusCompleted || s == ObligationStatusCancelled
}

type Obligation struct {
	ID             uint64             `gorm:"primaryKey;autoIncrement"`
	CivilServantID uint64             `gorm:"column:civil_servant_id;index;not null"`
	Title          string             `gorm:"column:title;size:255;not null"`
	Description    string             `gorm:"column:description;type:text;not null"`
	Category       ObligationCategory `gorm:"column:category;size:32;index;not null"`
	Status         ObligationStatus   `gorm:"column:status;size:32;index;not null"`
	Deadline       *time.Time         `gorm:"column:deadline;index"`
	Evidence       []string           `gorm:"column:evidence;serializer:json"`
	CreatedBy      string             `gorm:"column:created_by;size:128;index;not null"`
	CreatedAt      time.Time          `gorm:"autoCreateTime"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime"`
}

func (Obligation) TableName() string {
	return "obligations"
}

type ObligationUpdate struct {
	ID           uint64           `gorm:"primaryKey;autoIncrement"`
	ObligationID uint64           `gorm:"column:obligation_id;index;not null"`
	Status       ObligationStatus `gorm:"column:status;size:32;not null"`
	Notes        string           `gorm:"column:notes;type:text"`
	Evidence     []string         `gorm:"column:evidence;serializer:json"`
	UpdatedBy    string           `gorm:"column:updated_by;size:128;index;not null"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
}

func (ObligationUpdate) TableName() string {
	return "obligation_updates"
}
