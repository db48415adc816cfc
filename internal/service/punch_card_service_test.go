package service

import (
	"context"
	"testing"
	"time"

	"github.com/civitrack/civitrack-backend/internal/model"
	"gorm.io/gorm"
)

type stubPunchCardRepo struct {
	rows map[string]*model.PunchCard
}

func newStubPunchCardRepo() *stubPunchCardRepo {
	return &stubPunchCardRepo{rows: map[string]*model.PunchCard{}}
}

func punchKey(servantID uint64, date time.Time) string {
	return date.Format("2006-01-02") + "/" + string(rune(servantID))
}

func (r *stubPunchCardRepo) Upsert(_ context.Context, pc *model.PunchCard) error {
	key := punchKey(pc.CivilServantID, pc.Date)
	if existing, ok := r.rows[key]; ok {
		pc.ID = existing.ID
	} else {
		pc.ID = uint64(len(r.rows) + 1)
	}
	cp := *pc
	r.rows[key] = &cp
	return nil
}

func (r *stubPunchCardRepo) ListByServant(_ context.Context, servantID uint64, from, to time.Time) ([]model.PunchCard, error) {
	var out []model.PunchCard
	for _, pc := range r.rows {
		if pc.CivilServantID == servantID && !pc.Date.Before(from) && !pc.Date.After(to) {
			out = append(out, *pc)
		}
	}
	return out, nil
}

func (r *stubPunchCardRepo) AttendanceRate(_ context.Context, servantID uint64) (float64, error) {
	var present, total float64
	for _, pc := range r.rows {
		if pc.CivilServantID != servantID {
			continue
		}
		total++
		if pc.Status == model.PunchCardStatusPresent || pc.Status == model.PunchCardStatusLate {
			present++
		}
	}
	if total == 0 {
		return 0, nil
	}
	return present / total, nil
}

func (r *stubPunchCardRepo) SetDB(_ *gorm.DB) {}

func TestPunchCardRecordValidation(t *testing.T) {
	svc := NewPunchCardService(newStubPunchCardRepo(), newStubServantRepo(1))
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Record(ctx, 1, day, "NAPPING", nil, nil, ""); err == nil {
		t.Fatal("invalid status accepted")
	}
	if _, err := svc.Record(ctx, 1, time.Time{}, model.PunchCardStatusPresent, nil, nil, ""); err == nil {
		t.Fatal("zero date accepted")
	}

	in := day.Add(9 * time.Hour)
	out := day.Add(8 * time.Hour)
	if _, err := svc.Record(ctx, 1, day, model.PunchCardStatusPresent, &in, &out, ""); err == nil {
		t.Fatal("check-out before check-in accepted")
	}

	if _, err := svc.Record(ctx, 404, day, model.PunchCardStatusPresent, nil, nil, ""); err != ErrNotFound {
		t.Fatalf("unknown servant err = %v, want ErrNotFound", err)
	}
}

func TestPunchCardUpsertSameDay(t *testing.T) {
	repo := newStubPunchCardRepo()
	svc := NewPunchCardService(repo, newStubServantRepo(1))
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first, err := svc.Record(ctx, 1, day, model.PunchCardStatusLate, nil, nil, "traffic")
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	// A second record for the same day replaces, never duplicates.
	second, err := svc.Record(ctx, 1, day, model.PunchCardStatusPresent, nil, nil, "corrected")
	if err != nil {
		t.Fatalf("second Record: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("new row created for same day: %d != %d", second.ID, first.ID)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(repo.rows))
	}

	cards, err := svc.ListByServant(ctx, 1, day.AddDate(0, 0, -1), day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("ListByServant: %v", err)
	}
	if len(cards) != 1 || cards[0].Status != model.PunchCardStatusPresent {
		t.Fatalf("cards = %+v", cards)
	}
}
