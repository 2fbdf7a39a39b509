package loan

import (
	"errors"
	"sync"

	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

// Ticket identifies one input snapshot handed to Recomputer.
type Ticket uint64

// Recomputer keeps the financials of the most recent input snapshot. When
// recomputations run concurrently, a result is accepted only if no newer
// snapshot has been issued since its ticket.
type Recomputer struct {
	mu     sync.Mutex
	issued Ticket
	latest models.LoanFinancials
	has    bool
}

// Begin registers a new input snapshot.
func (r *Recomputer) Begin() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.issued++
	return r.issued
}

// Commit stores fin if t is still the newest ticket. It reports whether the
// result was kept.
func (r *Recomputer) Commit(t Ticket, fin models.LoanFinancials) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t != r.issued {
		return false
	}
	r.latest = fin
	r.has = true
	return true
}

// Latest returns the last accepted financials.
func (r *Recomputer) Latest() (models.LoanFinancials, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest, r.has
}

// Recompute runs the whole cycle for terms. Incomplete terms leave the
// previous value in place and are not reported as an error.
func (r *Recomputer) Recompute(terms models.LoanTerms) (models.LoanFinancials, bool, error) {
	t := r.Begin()
	fin, err := ComputeLoanFinancials(terms)
	if errors.Is(err, models.ErrIncomplete) {
		prev, ok := r.Latest()
		return prev, ok, nil
	}
	if err != nil {
		return models.LoanFinancials{}, false, err
	}
	if !r.Commit(t, fin) {
		prev, ok := r.Latest()
		return prev, ok, nil
	}
	return fin, true, nil
}
