package model

import "time"

// Setting is a key/value system setting. IsPublic rows are readable without auth.
type Setting struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	Key         string    `gorm:"column:key_name;size:128;uniqueIndex;not null"`
	Value       string    `gorm:"column:value;type:text;not null"`
	Description string    `gorm:"column:description;size:255"`
	Group       string    `gorm:"column:group_name;size:64;index"`
	IsPublic    bool      `gorm:"column:is_public;not null;default:false"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Setting) TableName() string {
	return "settings"
}
