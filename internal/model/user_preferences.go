package model

import "time"

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark || t == ThemeSystem
}

// PreferencesVersion is the current schema version of UserPreferences.
// Version 0 rows carry the notification switches as a legacy JSON blob in
// LegacyNotifications and are migrated on read.
const PreferencesVersion = 1

type UserPreferences struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	UserUID  string `gorm:"column:user_uid;size:128;uniqueIndex;not null"`
	Version  int    `gorm:"column:version;not null;default:0"`
	Language string `gorm:"column:language;size:16;not null;default:en"`
	Theme    Theme  `gorm:"column:theme;size:16;not null;default:system"`

	DeadlineReminders   bool `gorm:"column:deadline_reminders;not null;default:true"`
	ObligationUpdates   bool `gorm:"column:obligation_updates;not null;default:true"`
	KPIAlerts           bool `gorm:"column:kpi_alerts;not null;default:true"`
	SystemNotifications bool `gorm:"column:system_notifications;not null;default:true"`
	EmailNotifications  bool `gorm:"column:email_notifications;not null;default:false"`
	PushNotifications   bool `gorm:"column:push_notifications;not null;default:false"`

	DashboardLayout string `gorm:"column:dashboard_layout;size:64;not null;default:default"`

	// LegacyNotifications holds the pre-versioning JSON settings blob.
	// Kept only until the row is migrated to Version 1.
	LegacyNotifications string `gorm:"column:legacy_notifications;type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}
