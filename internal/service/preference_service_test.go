package service

import (
	"context"
	"testing"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type stubPreferenceRepo struct {
	rows  map[string]*model.UserPreferences
	saves int
}

func newStubPreferenceRepo() *stubPreferenceRepo {
	return &stubPreferenceRepo{rows: map[string]*model.UserPreferences{}}
}

func (r *stubPreferenceRepo) GetByUser(_ context.Context, userUID string) (*model.UserPreferences, error) {
	p, ok := r.rows[userUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPreferenceRepo) Create(_ context.Context, p *model.UserPreferences) error {
	cp := *p
	r.rows[p.UserUID] = &cp
	return nil
}

func (r *stubPreferenceRepo) Save(_ context.Context, p *model.UserPreferences) error {
	r.saves++
	cp := *p
	r.rows[p.UserUID] = &cp
	return nil
}

func (r *stubPreferenceRepo) SetDB(_ *gorm.DB) {}

func TestPreferencesDefaultsOnFirstAccess(t *testing.T) {
	svc := NewPreferenceService(newStubPreferenceRepo(), nil)

	p, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p.Version != model.PreferencesVersion {
		t.Fatalf("version = %d, want %d", p.Version, model.PreferencesVersion)
	}
	if !p.DeadlineReminders || !p.ObligationUpdates || p.EmailNotifications {
		t.Fatalf("defaults = %+v", p)
	}
	if p.Theme != model.ThemeSystem || p.Language != "en" {
		t.Fatalf("theme/language = %s/%s", p.Theme, p.Language)
	}
}

func TestPreferencesLegacyMigration(t *testing.T) {
	repo := newStubPreferenceRepo()
	repo.rows["user-1"] = &model.UserPreferences{
		UserUID:             "user-1",
		Version:             0,
		Language:            "uk",
		Theme:               "dark",
		LegacyNotifications: `{"deadlineReminders":false,"emailNotifications":true}`,
	}
	svc := NewPreferenceService(repo, nil)

	p, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if p.Version != model.PreferencesVersion {
		t.Fatalf("version = %d, want %d", p.Version, model.PreferencesVersion)
	}
	// Fields present in the blob carry over; the rest take defaults.
	if p.DeadlineReminders {
		t.Fatalf("deadlineReminders should be false from legacy blob")
	}
	if !p.EmailNotifications {
		t.Fatalf("emailNotifications should be true from legacy blob")
	}
	if !p.ObligationUpdates || !p.KPIAlerts {
		t.Fatalf("unset switches should default on: %+v", p)
	}
	if p.Language != "uk" || p.Theme != model.ThemeDark {
		t.Fatalf("typed columns lost in migration: %s/%s", p.Language, p.Theme)
	}
	if p.LegacyNotifications != "" {
		t.Fatalf("legacy blob not cleared")
	}
	// The migrated row was persisted.
	if repo.rows["user-1"].Version != model.PreferencesVersion {
		t.Fatalf("migration not saved")
	}
}

func TestPreferencesMalformedLegacyBlob(t *testing.T) {
	repo := newStubPreferenceRepo()
	repo.rows["user-1"] = &model.UserPreferences{
		UserUID:             "user-1",
		Version:             0,
		LegacyNotifications: `{not json`,
	}
	svc := NewPreferenceService(repo, nil)

	p, err := svc.GetOrCreate(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if !p.DeadlineReminders || !p.SystemNotifications || p.PushNotifications {
		t.Fatalf("malformed blob should yield defaults: %+v", p)
	}
	if p.Theme != model.ThemeSystem || p.Language != "en" {
		t.Fatalf("theme/language = %s/%s, want system/en", p.Theme, p.Language)
	}
}

func TestPreferencesUpdateValidation(t *testing.T) {
	svc := NewPreferenceService(newStubPreferenceRepo(), nil)
	ctx := context.Background()

	if _, err := svc.Update(ctx, "user-1", PreferencesUpdate{Language: "en", Theme: "neon"}); err != ErrInvalidPreferences {
		t.Fatalf("bad theme err = %v, want ErrInvalidPreferences", err)
	}
	if _, err := svc.Update(ctx, "user-1", PreferencesUpdate{Theme: model.ThemeDark}); err != ErrInvalidPreferences {
		t.Fatalf("empty language err = %v, want ErrInvalidPreferences", err)
	}

	p, err := svc.Update(ctx, "user-1", PreferencesUpdate{
		Language:          "de",
		Theme:             model.ThemeDark,
		DeadlineReminders: true,
		PushNotifications: true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if p.Language != "de" || p.Theme != model.ThemeDark || !p.PushNotifications {
		t.Fatalf("updated prefs = %+v", p)
	}
}
