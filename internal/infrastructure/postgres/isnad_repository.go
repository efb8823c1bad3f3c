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

	"github.com/estate-hub/estate-hub/internal/domain/isnad"
)

const isnadColumns = `id, form_id, reference_number, asset_id, status, current_stage, assignee_id, step_count, sla_deadline, sla_status, return_count, returned_by_stage, return_reason, cancellation_reason, cancelled_at, cancelled_by, submitted_by, completed_at, created_at, updated_at`

// IsnadRepository implements isnad.Repository.
type IsnadRepository struct {
	pool *pgxpool.Pool
}

func NewIsnadRepository(pool *pgxpool.Pool) *IsnadRepository {
	return &IsnadRepository{pool: pool}
}

func (r *IsnadRepository) Create(ctx context.Context, f *isnad.Form) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO isnad_forms
		(form_id, reference_number, asset_id, status, current_stage, assignee_id, step_count, sla_deadline, sla_status, return_count, returned_by_stage, return_reason, cancellation_reason, cancelled_at, cancelled_by, submitted_by, completed_at, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)
	`, f.FormID, f.ReferenceNumber, f.AssetID, f.Status, f.CurrentStage, f.AssigneeID, f.StepCount,
		f.SLADeadline, f.SLAStatus, f.ReturnCount, f.ReturnedByStage, f.ReturnReason,
		f.CancellationReason, f.CancelledAt, f.CancelledBy, f.SubmittedBy, f.CompletedAt, f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *IsnadRepository) Update(ctx context.Context, f *isnad.Form) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE isnad_forms
		SET status=$1, current_stage=$2, assignee_id=$3, step_count=$4, sla_deadline=$5, sla_status=$6,
		    return_count=$7, returned_by_stage=$8, return_reason=$9, cancellation_reason=$10,
		    cancelled_at=$11, cancelled_by=$12, completed_at=$13, updated_at=$14
		WHERE form_id=$15
	`, f.Status, f.CurrentStage, f.AssigneeID, f.StepCount, f.SLADeadline, f.SLAStatus,
		f.ReturnCount, f.ReturnedByStage, f.ReturnReason, f.CancellationReason,
		f.CancelledAt, f.CancelledBy, f.CompletedAt, f.UpdatedAt, f.FormID)
	return err
}

func (r *IsnadRepository) GetByID(ctx context.Context, formID uuid.UUID) (*isnad.Form, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+isnadColumns+` FROM isnad_forms WHERE form_id=$1`, formID)
	f, err := scanIsnadForm(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

func (r *IsnadRepository) List(ctx context.Context, filter isnad.Filter, limit, offset int) ([]*isnad.Form, error) {
	query := `SELECT ` + isnadColumns + ` FROM isnad_forms`
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
	if filter.SLAStatus != nil {
		args = append(args, *filter.SLAStatus)
		conds = append(conds, fmt.Sprintf("sla_status=$%d", len(args)))
	}
	if filter.Stage != nil {
		args = append(args, *filter.Stage)
		conds = append(conds, fmt.Sprintf("current_stage=$%d", len(args)))
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
	return collectIsnadForms(rows)
}

func (r *IsnadRepository) ListSLAExpired(ctx context.Context, now time.Time, limit int) ([]*isnad.Form, error) {
	rows, err := conn(ctx, r.pool).Query(ctx, `
		SELECT `+isnadColumns+` FROM isnad_forms
		WHERE sla_deadline < $1
		  AND sla_status <> $2
		  AND status NOT IN ($3,$4,$5)
		ORDER BY sla_deadline ASC
		LIMIT $6
	`, now, isnad.SLABreached, isnad.StatusApproved, isnad.StatusRejected, isnad.StatusCancelled, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectIsnadForms(rows)
}

func collectIsnadForms(rows pgx.Rows) ([]*isnad.Form, error) {
	var forms []*isnad.Form
	for rows.Next() {
		f, err := scanIsnadForm(rows)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

func scanIsnadForm(row pgx.Row) (*isnad.Form, error) {
	var f isnad.Form
	err := row.Scan(&f.ID, &f.FormID, &f.ReferenceNumber, &f.AssetID, &f.Status, &f.CurrentStage,
		&f.AssigneeID, &f.StepCount, &f.SLADeadline, &f.SLAStatus, &f.ReturnCount, &f.ReturnedByStage,
		&f.ReturnReason, &f.CancellationReason, &f.CancelledAt, &f.CancelledBy, &f.SubmittedBy,
		&f.CompletedAt, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
