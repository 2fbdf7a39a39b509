package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	interfaces "github.com/sheikh-saqib/microfinance-ledger/internal/interfaces"
	"github.com/sheikh-saqib/microfinance-ledger/internal/models"
)

func (s *Store) SaveLoan(ctx context.Context, loan models.Loan) error {
	const query = `INSERT INTO loans (id, client_id, principal, rate_percent, term_length, term_unit, start_date,
	interest_amount, total_repayment, balance_due, due_date, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, s.q(query),
		loan.ID, loan.ClientID, loan.Principal, loan.RatePercent, loan.TermLength, string(loan.TermUnit),
		loan.StartDate.String(), loan.InterestAmount, loan.TotalRepayment, loan.BalanceDue,
		loan.DueDate.String(), string(loan.Status), loan.CreatedAt.UTC())
	return err
}

func (s *Store) GetLoan(ctx context.Context, loanID string) (models.Loan, error) {
	const query = `SELECT id, client_id, principal, rate_percent, term_length, term_unit, start_date,
	interest_amount, total_repayment, balance_due, due_date, status, created_at
	FROM loans WHERE id = ?`

	var l models.Loan
	err := s.db.QueryRowContext(ctx, s.q(query), loanID).Scan(
		&l.ID, &l.ClientID, &l.Principal, &l.RatePercent, &l.TermLength, &l.TermUnit, dateColumn{&l.StartDate},
		&l.InterestAmount, &l.TotalRepayment, &l.BalanceDue, dateColumn{&l.DueDate}, &l.Status, timeColumn{&l.CreatedAt},
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Loan{}, fmt.Errorf("loan %s: %w", loanID, models.ErrNotFound)
	}
	if err != nil {
		return models.Loan{}, err
	}
	return l, nil
}

func (s *Store) SavePayment(ctx context.Context, loan models.Loan, payment models.Payment) (err error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	const update = `UPDATE loans SET balance_due = ?, status = ? WHERE id = ?`
	res, err := dbTx.ExecContext(ctx, s.q(update), loan.BalanceDue, string(loan.Status), loan.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = fmt.Errorf("loan %s: %w", loan.ID, models.ErrNotFound)
		return err
	}

	const insert = `INSERT INTO payments (id, loan_id, amount, paid_on, balance_after, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	_, err = dbTx.ExecContext(ctx, s.q(insert),
		payment.ID, payment.LoanID, payment.Amount, payment.PaidOn.String(), payment.BalanceAfter, payment.CreatedAt.UTC())
	if err != nil {
		return err
	}
	return dbTx.Commit()
}

func (s *Store) ListPayments(ctx context.Context, loanID string) ([]models.Payment, error) {
	const query = `SELECT id, loan_id, amount, paid_on, balance_after, created_at
	FROM payments WHERE loan_id = ? ORDER BY seq`

	rows, err := s.db.QueryContext(ctx, s.q(query), loanID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, dateColumn{&p.PaidOn}, &p.BalanceAfter, timeColumn{&p.CreatedAt}); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

var _ interfaces.LoanStore = (*Store)(nil)
