package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/estate-hub/estate-hub/internal/domain/notification"
)

const notificationColumns = `notification_id, target_user_id, target_role, type, priority, title, message, action_url, related_entity, status, last_error, created_at, sent_at, failed_at`

// NotificationRepository implements notification.Repository.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		INSERT INTO notifications (`+notificationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, n.NotificationID, n.TargetUserID, n.TargetRole, n.Type, n.Priority, n.Title, n.Message,
		n.ActionURL, n.RelatedEntity, n.Status, n.LastError, n.CreatedAt, n.SentAt, n.FailedAt)
	return err
}

func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	_, err := conn(ctx, r.pool).Exec(ctx, `
		UPDATE notifications
		SET status=$2, last_error=$3, sent_at=$4, failed_at=$5
		WHERE notification_id=$1
	`, n.NotificationID, n.Status, n.LastError, n.SentAt, n.FailedAt)
	return err
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	row := conn(ctx, r.pool).QueryRow(ctx, `
		SELECT `+notificationColumns+` FROM notifications WHERE notification_id=$1
	`, id)
	n, err := scanNotification(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return n, err
}

func (r *NotificationRepository) List(ctx context.Context, filter notification.Filter, limit, offset int) ([]*notification.Notification, error) {
	var conds []string
	var args []any
	if filter.TargetUserID != nil {
		args = append(args, *filter.TargetUserID)
		conds = append(conds, fmt.Sprintf("target_user_id=$%d", len(args)))
	}
	if filter.TargetRole != nil {
		args = append(args, *filter.TargetRole)
		conds = append(conds, fmt.Sprintf("target_role=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status=$%d", len(args)))
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications`
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

	var out []*notification.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func scanNotification(row pgx.Row) (*notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(&n.NotificationID, &n.TargetUserID, &n.TargetRole, &n.Type, &n.Priority,
		&n.Title, &n.Message, &n.ActionURL, &n.RelatedEntity, &n.Status, &n.LastError,
		&n.CreatedAt, &n.SentAt, &n.FailedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
