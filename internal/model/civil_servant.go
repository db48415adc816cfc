package model

import "time"

type CivilServant struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;size:255;not null"`
	Position     string    `gorm:"column:position;size:255;index;not null"`
	Department   string    `gorm:"column:department;size:255;index;not null"`
	Location     string    `gorm:"column:location;size:255;index"`
	ProfileImage string    `gorm:"column:profile_image;type:text"`
	ContactEmail string    `gorm:"column:contact_email;size:255"`
	ContactPhone string    `gorm:"column:contact_phone;size:64"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (CivilServant) TableName() string {
	return "civil_servants"
}
