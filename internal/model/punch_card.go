package model

import "time"

type PunchCardStatus string

const (
	PunchCardStatusPresent    PunchCardStatus = "PRESENT"
	PunchCardStatusAbsent     PunchCardStatus = "ABSENT"
	PunchCardStatusLate       PunchCardStatus = "LATE"
	PunchCardStatusEarlyLeave PunchCardStatus = "EARLY_LEAVE"
	PunchCardStatusHoliday    PunchCardStatus = "HOLIDAY"
)

func (s PunchCardStatus) Valid() bool {
	switch s {
	case PunchCardStatusPresent, PunchCardStatusAbsent, PunchCardStatusLate,
		PunchCardStatusEarlyLeave, PunchCardStatusHoliday:
		return true
	}
	return false
}

// PunchCard is one attendance record per servant per calendar date.
type PunchCard struct {
	ID             uint64          `gorm:"primaryKey;autoIncrement"`
	CivilServantID uint64          `gorm:"column:civil_servant_id;uniqueIndex:idx_punch_servant_date;not null"`
	Date           time.Time       `gorm:"column:date;type:date;uniqueIndex:idx_punch_servant_date;not null"`
	CheckIn        *time.Time      `gorm:"column:check_in"`
	CheckOut       *time.Time      `gorm:"column:check_out"`
	Status         PunchCardStatus `gorm:"column:status;size:32;index;not null"`
	Notes          string          `gorm:"column:notes;type:text"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (PunchCard) TableName() string {
	return "punch_cards"
}
