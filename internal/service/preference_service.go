package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PreferencesUpdate carries the full set of editable preference fields.
// ErrInvalidPreferences reports a theme or language the platform does not support.
var ErrInvalidPreferences = errors.New("invalid preferences")

type PreferencesUpdate struct {
	Language            string
	Theme               model.Theme
	DeadlineReminders   bool
	ObligationUpdates   bool
	KPIAlerts           bool
	SystemNotifications bool
	EmailNotifications  bool
	PushNotifications   bool
	DashboardLayout     string
}

type PreferenceService interface {
	// GetOrCreate returns the user's preferences, creating defaults on first
	// access and migrating legacy version-0 rows in place.
	GetOrCreate(ctx context.Context, userUID string) (*model.UserPreferences, error)
	Update(ctx context.Context, userUID string, u PreferencesUpdate) (*model.UserPreferences, error)
}

type preferenceService struct {
	repo repository.PreferenceRepository
	log  *zap.Logger
}

func NewPreferenceService(repo repository.PreferenceRepository, log *zap.Logger) PreferenceService {
	if log == nil {
		log = zap.NewNop()
	}
	return &preferenceService{repo: repo, log: log}
}

func defaultPreferences(userUID string) *model.UserPreferences {
	return &model.UserPreferences{
		UserUID:             userUID,
		Version:             model.PreferencesVersion,
		Language:            "en",
		Theme:               model.ThemeSystem,
		DeadlineReminders:   true,
		ObligationUpdates:   true,
		KPIAlerts:           true,
		SystemNotifications: true,
		EmailNotifications:  false,
		PushNotifications:   false,
		DashboardLayout:     "default",
	}
}

func (s *preferenceService) GetOrCreate(ctx context.Context, userUID string) (*model.UserPreferences, error) {
	p, err := s.repo.GetByUser(ctx, userUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = defaultPreferences(userUID)
			if createErr := s.repo.Create(ctx, p); createErr != nil {
				return nil, createErr
			}
			return p, nil
		}
		return nil, err
	}
	if p.Version < model.PreferencesVersion {
		migrateLegacy(p)
		if saveErr := s.repo.Save(ctx, p); saveErr != nil {
			// Serve the migrated view anyway; the write is retried next read.
			s.log.Warn("preference migration not persisted", zap.String("user", userUID), zap.Error(saveErr))
		}
	}
	return p, nil
}

// legacyNotificationBlob is the shape of the pre-versioning JSON settings.
type legacyNotificationBlob struct {
	DeadlineReminders   *bool `json:"deadlineReminders"`
	ObligationUpdates   *bool `json:"obligationUpdates"`
	KPIAlerts           *bool `json:"kpiAlerts"`
	SystemNotifications *bool `json:"systemNotifications"`
	EmailNotifications  *bool `json:"emailNotifications"`
	PushNotifications   *bool `json:"pushNotifications"`
}

// migrateLegacy upgrades a version-0 row to the typed schema. Unknown or
// malformed blobs fall back to the defaults; set fields are carried over.
func migrateLegacy(p *model.UserPreferences) {
	def := defaultPreferences(p.UserUID)
	p.DeadlineReminders = def.DeadlineReminders
	p.ObligationUpdates = def.ObligationUpdates
	p.KPIAlerts = def.KPIAlerts
	p.SystemNotifications = def.SystemNotifications
	p.EmailNotifications = def.EmailNotifications
	p.PushNotifications = def.PushNotifications

	if p.LegacyNotifications != "" {
		var blob legacyNotificationBlob
		if err := json.Unmarshal([]byte(p.LegacyNotifications), &blob); err == nil {
			if blob.DeadlineReminders != nil {
				p.DeadlineReminders = *blob.DeadlineReminders
			}
			if blob.ObligationUpdates != nil {
				p.ObligationUpdates = *blob.ObligationUpdates
			}
			if blob.KPIAlerts != nil {
				p.KPIAlerts = *blob.KPIAlerts
			}
			if blob.SystemNotifications != nil {
				p.SystemNotifications = *blob.SystemNotifications
			}
			if blob.EmailNotifications != nil {
				p.EmailNotifications = *blob.EmailNotifications
			}
			if blob.PushNotifications != nil {
				p.PushNotifications = *blob.PushNotifications
			}
		}
	}

	if p.Language == "" {
		p.Language = def.Language
	}
	if !p.Theme.Valid() {
		p.Theme = def.Theme
	}
	if p.DashboardLayout == "" {
		p.DashboardLayout = def.DashboardLayout
	}
	p.LegacyNotifications = ""
	p.Version = model.PreferencesVersion
}

func (s *preferenceService) Update(ctx context.Context, userUID string, u PreferencesUpdate) (*model.UserPreferences, error) {
	if !u.Theme.Valid() {
		return nil, ErrInvalidPreferences
	}
	if u.Language == "" {
		return nil, ErrInvalidPreferences
	}
	p, err := s.GetOrCreate(ctx, userUID)
	if err != nil {
		return nil, err
	}
	p.Language = u.Language
	p.Theme = u.Theme
	p.DeadlineReminders = u.DeadlineReminders
	p.ObligationUpdates = u.ObligationUpdates
	p.KPIAlerts = u.KPIAlerts
	p.SystemNotifications = u.SystemNotifications
	p.EmailNotifications = u.EmailNotifications
	p.PushNotifications = u.PushNotifications
	if u.DashboardLayout != "" {
		p.DashboardLayout = u.DashboardLayout
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}
