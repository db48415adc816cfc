package model

import "time"

type KPI struct {
	ID             uint64    `gorm:"primaryKey;autoIncrement"`
	CivilServantID uint64    `gorm:"column:civil_servant_id;index;not null"`
	Title          string    `gorm:"column:title;size:255;not null"`
	Description    string    `gorm:"column:description;type:text"`
	Target         float64   `gorm:"column:target;not null"`
	Current        float64   `gorm:"column:current;not null;default:0"`
	Unit           string    `gorm:"column:unit;size:64;not null"`
	Deadline       time.Time `gorm:"column:deadline;index;not null"`
	CreatedBy      string    `gorm:"column:created_by;size:128;index;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (KPI) TableName() string {
	return "kpis"
}

type KPIUpdate struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	KPIID         uint64    `gorm:"column:kpi_id;index;not null"`
	PreviousValue float64   `gorm:"column:previous_value;not null"`
	NewValue      float64   `gorm:"column:new_value;not null"`
	Notes         string    `gorm:"column:notes;type:text"`
	Evidence      []string  `gorm:"column:evidence;serializer:json"`
	UpdatedBy     string    `gorm:"column:updated_by;size:128;index;not null"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
}

func (KPIUpdate) TableName() string {
	return "kpi_updates"
}
