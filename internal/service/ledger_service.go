package service

import (
	"context"
	"errors"
	"sync"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

const (
	welcomeGrant  = 100
	welcomeReason = "welcome bonus"
)

type LedgerService interface {
	// GetOrCreate returns the user's ledger, seeding the welcome grant on
	// first access.
	GetOrCreate(ctx context.Context, uid string) (*model.CitizenPoints, error)
	Get(ctx context.Context, uid string) (*model.CitizenPoints, error)
	Award(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error)
	Spend(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error)
	Refund(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error)
	RecentTransactions(ctx context.Context, uid string, limit int) ([]model.PointTransaction, error)
}

type ledgerService struct {
	repo  repository.LedgerRepository
	locks userLocks
}

func NewLedgerService(repo repository.LedgerRepository) LedgerService {
	return &ledgerService{repo: repo}
}

// userLocks serializes read-modify-write sequences per user so two concurrent
// operations on the same ledger cannot interleave. Mutexes are retained for
// the process lifetime; the set of active users is small enough for that.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func (l *userLocks) lock(uid string) func() {
	l.mu.Lock()
	if l.m == nil {
		l.m = make(map[string]*sync.Mutex)
	}
	um, ok := l.m[uid]
	if !ok {
		um = &sync.Mutex{}
		l.m[uid] = um
	}
	l.mu.Unlock()
	um.Lock()
	return um.Unlock
}

func (s *ledgerService) GetOrCreate(ctx context.Context, uid string) (*model.CitizenPoints, error) {
	if uid == "" {
		return nil, ErrNotFound
	}
	unlock := s.locks.lock(uid)
	defer unlock()
	return s.repo.GetOrCreate(ctx, uid, welcomeGrant, welcomeReason)
}

func (s *ledgerService) Get(ctx context.Context, uid string) (*model.CitizenPoints, error) {
	ledger, err := s.repo.GetByUser(ctx, uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ledger, nil
}

func (s *ledgerService) Award(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := s.locks.lock(uid)
	defer unlock()
	ledger, err := s.repo.Award(ctx, uid, amount, repository.TransactionFields{
		Reason:        reason,
		ReferenceID:   refID,
		ReferenceType: refType,
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ledger, nil
}

func (s *ledgerService) Spend(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := s.locks.lock(uid)
	defer unlock()
	ledger, err := s.repo.Spend(ctx, uid, amount, repository.TransactionFields{
		Reason:        reason,
		ReferenceID:   refID,
		ReferenceType: refType,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientBalance
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ledger, nil
}

func (s *ledgerService) Refund(ctx context.Context, uid string, amount int64, reason, refID, refType string) (*model.CitizenPoints, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	unlock := s.locks.lock(uid)
	defer unlock()
	ledger, err := s.repo.Refund(ctx, uid, amount, repository.TransactionFields{
		Reason:        reason,
		ReferenceID:   refID,
		ReferenceType: refType,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, ErrInsufficientBalance
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ledger, nil
}

func (s *ledgerService) RecentTransactions(ctx context.Context, uid string, limit int) ([]model.PointTransaction, error) {
	ledger, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, ledger.ID, limit)
}
