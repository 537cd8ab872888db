package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/postgresql/db"
)

const taskColumns = `id, user_id, title, description, due_date, priority, status, recurrence, next_due_date, completed_at, category_id, created_at`

//Task represents the repository used for persisting Task records.
//Every mutation runs the row change, the audit history append and the
//conditional due-soon notification inside one transaction: either the
//whole unit commits or none of it does.
type Task struct {
	pool *pgxpool.Pool
}

//NewTask instantiates the Task repository
func NewTask(pool *pgxpool.Pool) *Task {
	return &Task{
		pool: pool,
	}
}

//Create inserts a new Task owned by params.UserID together with its
//"created" history entry and, when the due date falls inside the
//due-soon window, the owner's notification.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	now := time.Now().UTC()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	if params.CategoryID != nil {
		if err := categoryExists(ctx, tx, params.UserID, *params.CategoryID); err != nil {
			return internal.Task{}, err
		}
	}

	rec := db.Task{
		ID:          uuid.New(),
		UserID:      params.UserID,
		Title:       params.Title,
		Description: newNullString(params.Description),
		DueDate:     sql.NullTime{Time: params.DueDate, Valid: true},
		Priority:    newPriority(params.Priority),
		Status:      db.StatusPending,
		Recurrence:  newRecurrence(params.Recurrence),
		NextDueDate: newNullTime(params.Recurrence.NextDueDate(params.DueDate)),
		CategoryID:  newNullUUID(params.CategoryID),
		CreatedAt:   sql.NullTime{Time: now, Valid: true},
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		rec.ID,
		rec.UserID,
		rec.Title,
		rec.Description,
		rec.DueDate,
		rec.Priority,
		rec.Status,
		rec.Recurrence,
		rec.NextDueDate,
		rec.CompletedAt,
		rec.CategoryID,
		rec.CreatedAt,
	); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec insert task")
	}

	details := internal.HistoryDetails(internal.ActionCreated, params.Title)
	if err := insertHistory(ctx, tx, rec.ID, params.UserID, newAction(internal.ActionCreated), details, now); err != nil {
		return internal.Task{}, err
	}

	if internal.DueSoon(params.DueDate, now) {
		if err := insertNotification(ctx, tx, params.UserID, rec.ID, internal.DueSoonMessage(params.Title), now); err != nil {
			return internal.Task{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	task, err := convertTask(rec)
	if err != nil {
		return internal.Task{}, err
	}

	return task, nil
}

//Find returns the requester's Task, rows owned by anyone else behave
//as not found.
func (t *Task) Find(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	row := t.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID)

	rec, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "scanTask")
	}

	return convertTask(rec)
}

//List returns the requester's Tasks narrowed down by the received
//filters.
func (t *Task) List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	query := `SELECT t.id, t.user_id, t.title, t.description, t.due_date, t.priority, t.status,
		t.recurrence, t.next_due_date, t.completed_at, t.category_id, t.created_at FROM tasks t`

	if filters.Category != nil {
		query += ` INNER JOIN categories c ON c.id = t.category_id`
	}

	query += ` WHERE t.user_id = $1`
	args := []interface{}{userID}

	if filters.Status != nil {
		args = append(args, newStatus(*filters.Status))
		query += fmt.Sprintf(" AND t.status = $%d", len(args))
	}

	if filters.Priority != nil {
		args = append(args, newPriority(*filters.Priority))
		query += fmt.Sprintf(" AND t.priority = $%d", len(args))
	}

	if filters.DueBefore != nil {
		args = append(args, *filters.DueBefore)
		query += fmt.Sprintf(" AND t.due_date <= $%d", len(args))
	}

	if filters.Category != nil {
		args = append(args, *filters.Category)
		query += fmt.Sprintf(" AND c.name ILIKE '%%' || $%d || '%%'", len(args))
	}

	switch filters.OrderBy {
	case internal.OrderByPriority:
		query += ` ORDER BY CASE t.priority WHEN 'high' THEN 0 WHEN 'medium' THEN 1 ELSE 2 END, t.due_date`
	case internal.OrderByCreatedAt:
		query += ` ORDER BY t.created_at DESC`
	default:
		query += ` ORDER BY t.due_date`
	}

	rows, err := t.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var res []internal.Task

	for rows.Next() {
		rec, err := scanTask(rows)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "scanTask")
		}

		task, err := convertTask(rec)
		if err != nil {
			return nil, err
		}

		res = append(res, task)
	}

	if err := rows.Err(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return res, nil
}

//Update overwrites the requester's Task fields and appends the
//"updated" history entry in the same transaction. The completion
//timestamp is owned by ToggleComplete and never changes here.
func (t *Task) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	now := time.Now().UTC()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	if params.CategoryID != nil {
		if err := categoryExists(ctx, tx, userID, *params.CategoryID); err != nil {
			return internal.Task{}, err
		}
	}

	row := tx.QueryRow(ctx,
		`UPDATE tasks SET
			title = $1,
			description = $2,
			due_date = $3,
			priority = $4,
			status = $5,
			recurrence = $6,
			next_due_date = $7,
			category_id = $8
		 WHERE id = $9 AND user_id = $10
		 RETURNING `+taskColumns,
		params.Title,
		newNullString(params.Description),
		params.DueDate,
		newPriority(params.Priority),
		newStatus(params.Status),
		newRecurrence(params.Recurrence),
		newNullTime(params.Recurrence.NextDueDate(params.DueDate)),
		newNullUUID(params.CategoryID),
		id,
		userID,
	)

	rec, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "scanTask")
	}

	details := internal.HistoryDetails(internal.ActionUpdated, params.Title)
	if err := insertHistory(ctx, tx, id, userID, newAction(internal.ActionUpdated), details, now); err != nil {
		return internal.Task{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	return convertTask(rec)
}

//Delete removes the requester's Task for good, appending the "deleted"
//history entry first. History rows carry the owner directly and have
//no cascading foreign key, so the audit trail survives the deletion.
func (t *Task) Delete(ctx context.Context, userID, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	now := time.Now().UTC()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	var title string
	if err := tx.QueryRow(ctx,
		`SELECT title FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID).Scan(&title); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.QueryRow select title")
	}

	details := internal.HistoryDetails(internal.ActionDeleted, title)
	if err := insertHistory(ctx, tx, id, userID, newAction(internal.ActionDeleted), details, now); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, userID); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec delete task")
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	return nil
}

//ToggleComplete flips the requester's Task in or out of the completed
//state, stamping or clearing the completion time, recomputing the next
//occurrence date and appending the "status_changed" history entry.
func (t *Task) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ToggleComplete").End()

	now := time.Now().UTC()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	row := tx.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id, userID)

	rec, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.Task{}, internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")
		}
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "scanTask")
	}

	task, err := convertTask(rec)
	if err != nil {
		return internal.Task{}, err
	}

	status, completedAt := internal.ToggleStatus(task.Status, now)
	nextDueDate := task.Recurrence.NextDueDate(task.DueDate)

	if _, err := tx.Exec(ctx,
		`UPDATE tasks SET status = $1, completed_at = $2, next_due_date = $3 WHERE id = $4 AND user_id = $5`,
		newStatus(status),
		newNullTime(completedAt),
		newNullTime(nextDueDate),
		id,
		userID,
	); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec update status")
	}

	details := internal.StatusChangedDetails(task.Title, status)
	if err := insertHistory(ctx, tx, id, userID, newAction(internal.ActionStatusChanged), details, now); err != nil {
		return internal.Task{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	task.Status = status
	task.CompletedAt = completedAt
	task.NextDueDate = nextDueDate

	return task, nil
}

//History returns the audit trail of one of the requester's tasks in
//reverse chronological order. Entries of already deleted tasks remain
//readable because they carry the owner themselves.
func (t *Task) History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error) {
	defer newOTELSpan(ctx, "Task.History").End()

	rows, err := t.pool.Query(ctx,
		`SELECT id, task_id, user_id, action, details, change_time
		 FROM task_history
		 WHERE task_id = $1 AND user_id = $2
		 ORDER BY change_time DESC`,
		taskID, userID)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Query")
	}
	defer rows.Close()

	var res []internal.TaskHistory

	for rows.Next() {
		var rec db.TaskHistory

		if err := rows.Scan(&rec.ID, &rec.TaskID, &rec.UserID, &rec.Action, &rec.Details, &rec.ChangeTime); err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Scan")
		}

		action, err := convertAction(rec.Action)
		if err != nil {
			return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertAction")
		}

		res = append(res, internal.TaskHistory{
			ID:         rec.ID,
			TaskID:     rec.TaskID,
			UserID:     rec.UserID,
			Action:     action,
			Details:    rec.Details,
			ChangeTime: rec.ChangeTime.Time,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "rows.Err")
	}

	return res, nil
}

func scanTask(row pgx.Row) (db.Task, error) {
	var rec db.Task

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Title,
		&rec.Description,
		&rec.DueDate,
		&rec.Priority,
		&rec.Status,
		&rec.Recurrence,
		&rec.NextDueDate,
		&rec.CompletedAt,
		&rec.CategoryID,
		&rec.CreatedAt,
	)

	return rec, err
}

func insertHistory(ctx context.Context, tx db.DBTX, taskID, userID uuid.UUID, action db.Action, details string, now time.Time) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO task_history (id, task_id, user_id, action, details, change_time)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), taskID, userID, action, details, now); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec insert history")
	}

	return nil
}

func insertNotification(ctx context.Context, tx db.DBTX, userID, taskID uuid.UUID, message string, now time.Time) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO notifications (id, user_id, task_id, message, read, created_at)
		 VALUES ($1, $2, $3, $4, FALSE, $5)`,
		uuid.New(), userID, taskID, message, now); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Exec insert notification")
	}

	return nil
}

func categoryExists(ctx context.Context, tx db.DBTX, userID, categoryID uuid.UUID) error {
	var one int

	if err := tx.QueryRow(ctx,
		`SELECT 1 FROM categories WHERE id = $1 AND user_id = $2`,
		categoryID, userID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return internal.NewErrorf(internal.ErrorCodeNotFound, "category not found")
		}
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.QueryRow select category")
	}

	return nil
}
