package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/civitrack/civitrack-backend/internal/ai"
	"github.com/civitrack/civitrack-backend/internal/model"
)

type stubScorer struct {
	score float64
	err   error
	got   ai.TrackRecord
}

func (s *stubScorer) Score(_ context.Context, tr ai.TrackRecord) (float64, error) {
	s.got = tr
	return s.score, s.err
}

func TestTransparencyUnavailableWithoutScorer(t *testing.T) {
	svc := NewTransparencyService(newStubServantRepo(1), newStubObligationRepo(), newStubKPIRepo(), newStubPunchCardRepo(), nil)
	if _, _, err := svc.ScoreServant(context.Background(), 1); err != ErrScoringUnavailable {
		t.Fatalf("err = %v, want ErrScoringUnavailable", err)
	}
}

func TestTransparencyAssemblesTrackRecord(t *testing.T) {
	ctx := context.Background()
	obligations := newStubObligationRepo()
	kpis := newStubKPIRepo()
	punches := newStubPunchCardRepo()
	scorer := &stubScorer{score: 72}
	svc := NewTransparencyService(newStubServantRepo(1), obligations, kpis, punches, scorer)

	for _, status := range []model.ObligationStatus{
		model.ObligationStatusCompleted,
		model.ObligationStatusCompleted,
		model.ObligationStatusOverdue,
		model.ObligationStatusPending,
	} {
		if err := obligations.Create(ctx, &model.Obligation{CivilServantID: 1, Status: status}); err != nil {
			t.Fatalf("seed obligation: %v", err)
		}
	}
	if err := kpis.Create(ctx, &model.KPI{CivilServantID: 1, Target: 10, Current: 12}); err != nil {
		t.Fatalf("seed kpi: %v", err)
	}
	if err := kpis.Create(ctx, &model.KPI{CivilServantID: 1, Target: 10, Current: 3}); err != nil {
		t.Fatalf("seed kpi: %v", err)
	}
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	for i, status := range []model.PunchCardStatus{
		model.PunchCardStatusPresent, model.PunchCardStatusLate, model.PunchCardStatusAbsent, model.PunchCardStatusPresent,
	} {
		if err := punches.Upsert(ctx, &model.PunchCard{CivilServantID: 1, Date: day.AddDate(0, 0, i), Status: status}); err != nil {
			t.Fatalf("seed punch card: %v", err)
		}
	}

	score, tr, err := svc.ScoreServant(ctx, 1)
	if err != nil {
		t.Fatalf("ScoreServant: %v", err)
	}
	if score != 72 {
		t.Fatalf("score = %g, want 72", score)
	}
	if tr.ObligationsTotal != 4 || tr.ObligationsCompleted != 2 || tr.ObligationsOverdue != 1 {
		t.Fatalf("obligation counts = %+v", tr)
	}
	if tr.KPIsOnTarget != 1 || tr.KPIsTotal != 2 {
		t.Fatalf("kpi counts = %d/%d", tr.KPIsOnTarget, tr.KPIsTotal)
	}
	if tr.AttendanceRate != 0.75 {
		t.Fatalf("attendance = %g, want 0.75", tr.AttendanceRate)
	}
	if scorer.got.Name == "" {
		t.Fatalf("servant identity not passed to scorer")
	}
}

func TestTransparencyScorerFailure(t *testing.T) {
	scorer := &stubScorer{err: errors.New("model timeout")}
	svc := NewTransparencyService(newStubServantRepo(1), newStubObligationRepo(), newStubKPIRepo(), newStubPunchCardRepo(), scorer)
	if _, _, err := svc.ScoreServant(context.Background(), 1); err != ErrScoringUnavailable {
		t.Fatalf("err = %v, want ErrScoringUnavailable", err)
	}

	if _, _, err := svc.ScoreServant(context.Background(), 404); err != ErrNotFound {
		t.Fatalf("unknown servant err = %v, want ErrNotFound", err)
	}
}
