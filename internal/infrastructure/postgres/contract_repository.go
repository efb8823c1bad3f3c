package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estate-hub/estate-hub/internal/domain/contract"
)

const contractColumns = `id, contract_id, code, asset_id, investor_id, investor_email, status, annual_amount, vat_rate, duration_years, total_amount, start_date, end_date, installment_count, installment_frequency, cancellation_justification, cancelled_at, created_at, updated_at`

const installmentColumns = `id, installment_id, contract_id, sequence, amount_due, due_date, status, payment_date, partial_amount, remaining_balance, created_at`

// ContractRepository implements contract.Repository.
type ContractRepository struct {
	pool *pgxpool.Pool
}

func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

func (r *ContractRepository) Create(ctx context.Context, c *contract.Contract) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO contracts
		(contract_id, code, asset_id, investor_id, investor_email, status, annual_amount, vat_rate, duration_years, total_amount, start_date, end_date, installment_count, installment_frequency, cancellation_justification, cancelled_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)
	`, c.ContractID, c.Code, c.AssetID, c.InvestorID, c.InvestorEmail, c.Status,
		c.AnnualAmount, c.VATRate, c.DurationYears, c.TotalAmount, c.StartDate, c.EndDate,
		c.InstallmentCount, c.InstallmentFrequency, c.CancellationJustification, c.CancelledAt,
		c.CreatedAt, c.UpdatedAt)
	return err
}

func (r *ContractRepository) Update(ctx context.Context, c *contract.Contract) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE contracts
		SET status=$1, cancellation_justification=$2, cancelled_at=$3, updated_at=$4
		WHERE contract_id=$5
	`, c.Status, c.CancellationJustification, c.CancelledAt, c.UpdatedAt, c.ContractID)
	return err
}

func (r *ContractRepository) GetByID(ctx context.Context, contractID uuid.UUID) (*contract.Contract, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+contractColumns+` FROM contracts WHERE contract_id=$1`, contractID)
	c, err := scanContract(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT `+installmentColumns+` FROM installments WHERE contract_id=$1 ORDER BY sequence`, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	c.Installments, err = collectInstallments(rows)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ContractRepository) List(ctx context.Context, filter contract.Filter, limit, offset int) ([]*contract.Contract, error) {
	query := `SELECT ` + contractColumns + ` FROM contracts`
	conds := []string{}
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.AssetID != nil {
		args = append(args, *filter.AssetID)
		conds = append(conds, fmt.Sprintf("asset_id=$%d", len(args)))
	}
	if filter.InvestorID != nil {
		args = append(args, *filter.InvestorID)
		conds = append(conds, fmt.Sprintf("investor_id=$%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limit, offset)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)-1, len(args))

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepository) CreateInstallments(ctx context.Context, installments []*contract.Installment) error {
	db := conn(ctx, r.pool)
	for _, i := range installments {
		_, err := db.Exec(ctx, `
			INSERT INTO installments
			(installment_id, contract_id, sequence, amount_due, due_date, status, payment_date, partial_amount, remaining_balance, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`, i.InstallmentID, i.ContractID, i.Sequence, i.AmountDue, i.DueDate, i.Status,
			i.PaymentDate, i.PartialAmount, i.RemainingBalance, i.CreatedAt)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *ContractRepository) UpdateInstallment(ctx context.Context, i *contract.Installment) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE installments
		SET status=$1, payment_date=$2, partial_amount=$3, remaining_balance=$4
		WHERE installment_id=$5
	`, i.Status, i.PaymentDate, i.PartialAmount, i.RemainingBalance, i.InstallmentID)
	return err
}

func (r *ContractRepository) ListDueInstallments(ctx context.Context, contractID *uuid.UUID, today time.Time, limit int) ([]*contract.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM installments WHERE status=$1 AND due_date < $2`
	args := []any{contract.InstallmentPending, today}
	if contractID != nil {
		args = append(args, *contractID)
		query += fmt.Sprintf(" AND contract_id=$%d", len(args))
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY due_date ASC LIMIT $%d", len(args))

	rows, err := conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectInstallments(rows)
}

func (r *ContractRepository) ListExpiringWithin(ctx context.Context, today, horizon time.Time, limit int) ([]*contract.Contract, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status=$1 AND end_date > $2 AND end_date <= $3
		ORDER BY end_date ASC
		LIMIT $4
	`, contract.StatusActive, today, horizon, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

func (r *ContractRepository) ListExpired(ctx context.Context, today time.Time, limit int) ([]*contract.Contract, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+contractColumns+` FROM contracts
		WHERE status IN ($1,$2) AND end_date <= $3
		ORDER BY end_date ASC
		LIMIT $4
	`, contract.StatusActive, contract.StatusExpiring, today, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectContracts(rows)
}

func collectContracts(rows pgx.Rows) ([]*contract.Contract, error) {
	var contracts []*contract.Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func collectInstallments(rows pgx.Rows) ([]*contract.Installment, error) {
	var installments []*contract.Installment
	for rows.Next() {
		var i contract.Installment
		if err := rows.Scan(&i.ID, &i.InstallmentID, &i.ContractID, &i.Sequence, &i.AmountDue,
			&i.DueDate, &i.Status, &i.PaymentDate, &i.PartialAmount, &i.RemainingBalance, &i.CreatedAt); err != nil {
			return nil, err
		}
		installments = append(installments, &i)
	}
	return installments, rows.Err()
}

func scanContract(row pgx.Row) (*contract.Contract, error) {
	var c contract.Contract
	err := row.Scan(&c.ID, &c.ContractID, &c.Code, &c.AssetID, &c.InvestorID, &c.InvestorEmail,
		&c.Status, &c.AnnualAmount, &c.VATRate, &c.DurationYears, &c.TotalAmount,
		&c.StartDate, &c.EndDate, &c.InstallmentCount, &c.InstallmentFrequency,
		&c.CancellationJustification, &c.CancelledAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
