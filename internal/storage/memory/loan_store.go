package memory

import (
	"context"
	"fmt"
	"sync"

	interfaces "github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// MemoryLoanStore keeps loans and their payments in memory.
type MemoryLoanStore struct {
	mu       sync.Mutex
	loans    map[string]models.Loan
	payments map[string][]models.Payment // by loan id
}

func NewMemoryLoanStore() *MemoryLoanStore {
	return &MemoryLoanStore{
		loans:    make(map[string]models.Loan),
		payments: make(map[string][]models.Payment),
	}
}

func (m *MemoryLoanStore) SaveLoan(ctx context.Context, loan models.Loan) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.loans[loan.ID]; exists {
		return fmt.Errorf("%w: loan %s already exists", models.ErrInvalidArgument, loan.ID)
	}
	m.loans[loan.ID] = loan
	return nil
}

func (m *MemoryLoanStore) GetLoan(ctx context.Context, loanID string) (models.Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loan, ok := m.loans[loanID]
	if !ok {
		return models.Loan{}, fmt.Errorf("loan %s: %w", loanID, models.ErrNotFound)
	}
	return loan, nil
}

func (m *MemoryLoanStore) SavePayment(ctx context.Context, loan models.Loan, payment models.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.loans[loan.ID]; !ok {
		return fmt.Errorf("loan %s: %w", loan.ID, models.ErrNotFound)
	}
	m.loans[loan.ID] = loan
	m.payments[loan.ID] = append(m.payments[loan.ID], payment)
	return nil
}

func (m *MemoryLoanStore) ListPayments(ctx context.Context, loanID string) ([]models.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := make([]models.Payment, len(m.payments[loanID]))
	copy(copied, m.payments[loanID])
	return copied, nil
}

var _ interfaces.LoanStore = (*MemoryLoanStore)(nil)
