package service

import (
	"context"
	"sync"
	"testing"

	"github.com/civitrack/civitrack-backend/internal/model"
	"github.com/civitrack/civitrack-backend/internal/repository"
	"gorm.io/gorm"
)

// stubLedgerRepo mirrors the repository's guard semantics in memory.
type stubLedgerRepo struct {
	mu      sync.Mutex
	ledgers map[string]*model.CitizenPoints
	txns    []model.PointTransaction
	nextID  uint64
}

func newStubLedgerRepo() *stubLedgerRepo {
	return &stubLedgerRepo{ledgers: map[string]*model.CitizenPoints{}, nextID: 1}
}

func (r *stubLedgerRepo) GetOrCreate(_ context.Context, uid string, grant int64, grantReason string) (*model.CitizenPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l, ok := r.ledgers[uid]; ok {
		cp := *l
		return &cp, nil
	}
	l := &model.CitizenPoints{ID: r.nextID, UserUID: uid, Balance: grant, TotalEarned: grant}
	r.nextID++
	r.ledgers[uid] = l
	r.txns = append(r.txns, model.PointTransaction{
		CitizenPointsID: l.ID, Type: model.TransactionEarned, Amount: grant, Reason: grantReason,
	})
	cp := *l
	return &cp, nil
}

func (r *stubLedgerRepo) GetByUser(_ context.Context, uid string) (*model.CitizenPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *stubLedgerRepo) Award(_ context.Context, uid string, amount int64, f repository.TransactionFields) (*model.CitizenPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	l.Balance += amount
	l.TotalEarned += amount
	r.txns = append(r.txns, model.PointTransaction{
		CitizenPointsID: l.ID, Type: model.TransactionEarned, Amount: amount, Reason: f.Reason,
	})
	cp := *l
	return &cp, nil
}

func (r *stubLedgerRepo) Spend(_ context.Context, uid string, amount int64, f repository.TransactionFields) (*model.CitizenPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if l.Balance < amount {
		return nil, repository.ErrInsufficientFunds
	}
	l.Balance -= amount
	l.TotalSpent += amount
	r.txns = append(r.txns, model.PointTransaction{
		CitizenPointsID: l.ID, Type: model.TransactionSpent, Amount: amount, Reason: f.Reason,
	})
	cp := *l
	return &cp, nil
}

func (r *stubLedgerRepo) Refund(_ context.Context, uid string, amount int64, f repository.TransactionFields) (*model.CitizenPoints, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.ledgers[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if l.TotalSpent < amount {
		return nil, repository.ErrInsufficientFunds
	}
	l.Balance += amount
	l.TotalSpent -= amount
	r.txns = append(r.txns, model.PointTransaction{
		CitizenPointsID: l.ID, Type: model.TransactionRefunded, Amount: amount, Reason: f.Reason,
	})
	cp := *l
	return &cp, nil
}

func (r *stubLedgerRepo) ListTransactions(_ context.Context, ledgerID uint64, limit int) ([]model.PointTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.PointTransaction
	for i := len(r.txns) - 1; i >= 0 && len(out) < limit; i-- {
		if r.txns[i].CitizenPointsID == ledgerID {
			out = append(out, r.txns[i])
		}
	}
	return out, nil
}

func (r *stubLedgerRepo) SetDB(_ *gorm.DB) {}

func TestLedgerWelcomeGrant(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	l, err := svc.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if l.Balance != 100 || l.TotalEarned != 100 || l.TotalSpent != 0 {
		t.Fatalf("got balance=%d earned=%d spent=%d, want 100/100/0", l.Balance, l.TotalEarned, l.TotalSpent)
	}

	// Second access must not grant again.
	l2, err := svc.GetOrCreate(ctx, "user-1")
	if err != nil {
		t.Fatalf("second GetOrCreate: %v", err)
	}
	if l2.Balance != 100 {
		t.Fatalf("balance after re-access = %d, want 100", l2.Balance)
	}
	if len(repo.txns) != 1 {
		t.Fatalf("transactions = %d, want 1", len(repo.txns))
	}
	if repo.txns[0].Reason != "welcome bonus" || repo.txns[0].Type != model.TransactionEarned {
		t.Fatalf("welcome txn = %+v", repo.txns[0])
	}
}

func TestLedgerAwardAndSpend(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	l, err := svc.Award(ctx, "user-1", 50, "obligation created", "1", "obligation")
	if err != nil {
		t.Fatalf("Award: %v", err)
	}
	if l.Balance != 150 || l.TotalEarned != 150 {
		t.Fatalf("after award balance=%d earned=%d, want 150/150", l.Balance, l.TotalEarned)
	}

	l, err = svc.Spend(ctx, "user-1", 120, "reward redemption", "2", "reward")
	if err != nil {
		t.Fatalf("Spend: %v", err)
	}
	if l.Balance != 30 || l.TotalSpent != 120 {
		t.Fatalf("after spend balance=%d spent=%d, want 30/120", l.Balance, l.TotalSpent)
	}
	if l.Balance != l.TotalEarned-l.TotalSpent {
		t.Fatalf("invariant broken: %d != %d - %d", l.Balance, l.TotalEarned, l.TotalSpent)
	}
}

func TestLedgerSpendInsufficient(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Spend(ctx, "user-1", 500, "reward redemption", "", ""); err != ErrInsufficientBalance {
		t.Fatalf("err = %v, want ErrInsufficientBalance", err)
	}

	// A failed spend must leave the ledger untouched.
	l, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if l.Balance != 100 || l.TotalSpent != 0 {
		t.Fatalf("state changed after failed spend: balance=%d spent=%d", l.Balance, l.TotalSpent)
	}
	if len(repo.txns) != 1 {
		t.Fatalf("transactions = %d, want 1 (no SPENT row)", len(repo.txns))
	}
}

func TestLedgerInvalidAmounts(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	for _, amount := range []int64{0, -10} {
		if _, err := svc.Award(ctx, "user-1", amount, "x", "", ""); err != ErrInvalidAmount {
			t.Errorf("Award(%d) err = %v, want ErrInvalidAmount", amount, err)
		}
		if _, err := svc.Spend(ctx, "user-1", amount, "x", "", ""); err != ErrInvalidAmount {
			t.Errorf("Spend(%d) err = %v, want ErrInvalidAmount", amount, err)
		}
		if _, err := svc.Refund(ctx, "user-1", amount, "x", "", ""); err != ErrInvalidAmount {
			t.Errorf("Refund(%d) err = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if len(repo.txns) != 0 {
		t.Fatalf("transactions written for invalid amounts: %d", len(repo.txns))
	}
}

func TestLedgerUnknownUser(t *testing.T) {
	svc := NewLedgerService(newStubLedgerRepo())
	if _, err := svc.Get(context.Background(), "ghost"); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	if _, err := svc.Award(context.Background(), "ghost", 10, "x", "", ""); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLedgerConcurrentAwards(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()
	if _, err := svc.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}

	const workers = 20
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := svc.Award(ctx, "user-1", 5, "obligation status update", "", ""); err != nil {
				t.Errorf("Award: %v", err)
			}
		}()
	}
	wg.Wait()

	l, err := svc.Get(ctx, "user-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := int64(100 + workers*5)
	if l.Balance != want {
		t.Fatalf("balance = %d, want %d", l.Balance, want)
	}
	if l.Balance != l.TotalEarned-l.TotalSpent {
		t.Fatalf("invariant broken: %d != %d - %d", l.Balance, l.TotalEarned, l.TotalSpent)
	}
}

func TestLedgerRefund(t *testing.T) {
	repo := newStubLedgerRepo()
	svc := NewLedgerService(repo)
	ctx := context.Background()

	if _, err := svc.GetOrCreate(ctx, "user-1"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := svc.Spend(ctx, "user-1", 60, "reward redemption", "", ""); err != nil {
		t.Fatalf("Spend: %v", err)
	}
	l, err := svc.Refund(ctx, "user-1", 60, "redemption cancelled", "", "")
	if err != nil {
		t.Fatalf("Refund: %v", err)
	}
	if l.Balance != 100 || l.TotalSpent != 0 {
		t.Fatalf("after refund balance=%d spent=%d, want 100/0", l.Balance, l.TotalSpent)
	}
}
