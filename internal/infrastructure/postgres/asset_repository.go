package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estate-hub/estate-hub/internal/domain/asset"
)

const assetColumns = `id, asset_id, code, name, status, visible_to_investors, rejection_reason, created_by, submitted_at, completed_at, created_at, updated_at, updated_by`

// AssetRepository implements asset.Repository.
type AssetRepository struct {
	pool *pgxpool.Pool
}

func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

func (r *AssetRepository) Create(ctx context.Context, a *asset.Asset) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO assets
		(asset_id, code, name, status, visible_to_investors, rejection_reason, created_by, submitted_at, completed_at, created_at, updated_at, updated_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, a.AssetID, a.Code, a.Name, a.Status, a.VisibleToInvestors, a.RejectionReason, a.CreatedBy, a.SubmittedAt, a.CompletedAt, a.CreatedAt, a.UpdatedAt, a.UpdatedBy)
	return err
}

func (r *AssetRepository) Update(ctx context.Context, a *asset.Asset) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE assets
		SET status=$1, visible_to_investors=$2, rejection_reason=$3, submitted_at=$4, completed_at=$5, updated_at=$6, updated_by=$7
		WHERE asset_id=$8
	`, a.Status, a.VisibleToInvestors, a.RejectionReason, a.SubmittedAt, a.CompletedAt, a.UpdatedAt, a.UpdatedBy, a.AssetID)
	return err
}

func (r *AssetRepository) GetByID(ctx context.Context, assetID uuid.UUID) (*asset.Asset, error) {
	row := conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+assetColumns+` FROM assets WHERE asset_id=$1`, assetID)
	a, err := scanAsset(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return a, err
}

func (r *AssetRepository) List(ctx context.Context, filter asset.Filter, limit, offset int) ([]*asset.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM assets`
	conds := []string{}
	args := []any{}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.VisibleToInvestors != nil {
		args = append(args, *filter.VisibleToInvestors)
		conds = append(conds, fmt.Sprintf("visible_to_investors=$%d", len(args)))
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

	var assets []*asset.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(row pgx.Row) (*asset.Asset, error) {
	var a asset.Asset
	err := row.Scan(&a.ID, &a.AssetID, &a.Code, &a.Name, &a.Status, &a.VisibleToInvestors,
		&a.RejectionReason, &a.CreatedBy, &a.SubmittedAt, &a.CompletedAt, &a.CreatedAt, &a.UpdatedAt, &a.UpdatedBy)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
