package service

import (
	"context"
	"errors"

	"github.com/civitrack/civitrack-backend/internal/ai"
	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
)

var ErrScoringUnavailable = errors.New("scoring unavailable")

// Scorer is implemented by ai.TransparencyClient.
type Scorer interface {
	Score(ctx context.Context, tr ai.TrackRecord) (float64, error)
}

type TransparencyService interface {
	// ScoreServant assembles the servant's tracked record and asks the
	// scorer for a 0-100 accountability score.
	ScoreServant(ctx context.Context, servantID uint64) (float64, ai.TrackRecord, error)
}

type transparencyService struct {
	servants    repository.CivilServantRepository
	obligations repository.ObligationRepository
	kpis        repository.KPIRepository
	punchCards  repository.PunchCardRepository
	scorer      Scorer
}

func NewTransparencyService(
	servants repository.CivilServantRepository,
	obligations repository.ObligationRepository,
	kpis repository.KPIRepository,
	punchCards repository.PunchCardRepository,
	scorer Scorer,
) TransparencyService {
	return &transparencyService{
		servants:    servants,
		obligations: obligations,
		kpis:        kpis,
		punchCards:  punchCards,
		scorer:      scorer,
	}
}

func (s *transparencyService) ScoreServant(ctx context.Context, servantID uint64) (float64, ai.TrackRecord, error) {
	var tr ai.TrackRecord
	if s.scorer == nil {
		return 0, tr, ErrScoringUnavailable
	}
	sv, err := s.servants.FindByID(ctx, servantID)
	if err != nil {
		return 0, tr, ErrNotFound
	}

	counts, err := s.obligations.CountByStatus(ctx, servantID)
	if err != nil {
		return 0, tr, err
	}
	onTarget, kpiTotal, err := s.kpis.CountOnTarget(ctx, servantID)
	if err != nil {
		return 0, tr, err
	}
	rate, err := s.punchCards.AttendanceRate(ctx, servantID)
	if err != nil {
		return 0, tr, err
	}

	var obligationsTotal int64
	for _, n := range counts {
		obligationsTotal += n
	}
	tr = ai.TrackRecord{
		Name:                 sv.Name,
		Position:             sv.Position,
		Department:           sv.Department,
		ObligationsTotal:     obligationsTotal,
		ObligationsCompleted: counts[model.ObligationStatusCompleted],
		ObligationsOverdue:   counts[model.ObligationStatusOverdue],
		KPIsOnTarget:         onTarget,
		KPIsTotal:            kpiTotal,
		AttendanceRate:       rate,
	}
	score, err := s.scorer.Score(ctx, tr)
	if err != nil {
		return 0, tr, ErrScoringUnavailable
	}
	return score, tr, nil
}
