package postgresql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/postgresql/db"
)

//Notification represents the repository used for reading due-soon
//alerts. Alerts are written as a side effect of Task creation, the
//only mutation allowed here is the read flag toggle.
type Notification struct {
	pool *pgxpool.Pool
}

//NewNotification instantiates the Notification repository
func NewNotification(pool *pgxpool.Pool) *Notification {
	return &Notification{
		pool: pool,
	}
}

//List returns the requester's notifications, unread first, newest
//first within each group.
func (n *Notification) List(ctx context.Context, userID uuid.UUID) ([]internal.Notification, error) {
	defer newOTELSpan(ctx, "Notification.List").End()

	rows, err := n.pool.Query(ctx,
		`SELECT id, user_id, task_id, message, read, created_at
		 FROM notifications
		 WHERE user_id = $1
		 ORDER BY read, created_at DESC`,
		userID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var res []internal.Notification

	for rows.Next() {
		var rec db.Notification

		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.TaskID, &rec.Message, &rec.Read, &rec.CreatedAt); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Scan")
		}

		res = append(res, internal.Notification{
			ID:        rec.ID,
			UserID:    rec.UserID,
			TaskID:    rec.TaskID,
			Message:   rec.Message,
			Read:      rec.Read,
			CreatedAt: rec.CreatedAt.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return res, nil
}

//MarkRead flips the requester's notification to read
func (n *Notification) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Notification.MarkRead").End()

	tag, err := n.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Exec update notification")
	}

	if tag.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "notification not found")
	}

	return nil
}
