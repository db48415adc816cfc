package model

import "time"

type NotificationType string

const (
	NotificationDeadline    NotificationType = "DEADLINE"
	NotificationUpdate      NotificationType = "UPDATE"
	NotificationAchievement NotificationType = "ACHIEVEMENT"
	NotificationSystem      NotificationType = "SYSTEM"
)

func (t NotificationType) Valid() bool {
	switch t {
	case NotificationDeadline, NotificationUpdate, NotificationAchievement, NotificationSystem:
		return true
	}
	return false
}

// Notification rows are never deleted; ReadAt nil means unread, set once.
type Notification struct {
	ID            uint64           `gorm:"primaryKey;autoIncrement"`
	UserUID       string           `gorm:"column:user_uid;size:128;index;not null"`
	Title         string           `gorm:"column:title;size:255;not null"`
	Message       string           `gorm:"column:message;type:text;not null"`
	Type          NotificationType `gorm:"column:type;size:32;index;not null"`
	ReferenceID   string           `gorm:"column:reference_id;size:128"`
	ReferenceType string           `gorm:"column:reference_type;size:64"`
	ReadAt        *time.Time       `gorm:"column:read_at"`
	CreatedAt     time.Time        `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n Notification) Read() bool {
	return n.ReadAt != nil
}
