package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/postgresql/db"
)

const otelName = "github.com/taskhive/taskhive-api/internal/postgresql"

// unique_violation
const pgErrCodeUniqueViolation = "23505"

func convertPriority(p db.Priority) (internal.Priority, error) {
	switch p {
	case db.PriorityLow:
		return internal.PriorityLow, nil
	case db.PriorityMedium:
		return internal.PriorityMedium, nil
	case db.PriorityHigh:
		return internal.PriorityHigh, nil
	}

	return internal.Priority(-1), fmt.Errorf("unknown value: %s", p)
}

func newPriority(p internal.Priority) db.Priority {
	switch p {
	case internal.PriorityLow:
		return db.PriorityLow
	case internal.PriorityMedium:
		return db.PriorityMedium
	case internal.PriorityHigh:
		return db.PriorityHigh
	}
	return "invalid"
}

func convertStatus(s db.Status) (internal.Status, error) {
	switch s {
	case db.StatusPending:
		return internal.StatusPending, nil
	case db.StatusInProgress:
		return internal.StatusInProgress, nil
	case db.StatusCompleted:
		return internal.StatusCompleted, nil
	case db.StatusCancelled:
		return internal.StatusCancelled, nil
	}

	return internal.Status(-1), fmt.Errorf("unknown value: %s", s)
}

func newStatus(s internal.Status) db.Status {
	switch s {
	case internal.StatusPending:
		return db.StatusPending
	case internal.StatusInProgress:
		return db.StatusInProgress
	case internal.StatusCompleted:
		return db.StatusCompleted
	case internal.StatusCancelled:
		return db.StatusCancelled
	}
	return "invalid"
}

func convertRecurrence(r db.Recurrence) (internal.Recurrence, error) {
	switch r {
	case db.RecurrenceNone:
		return internal.RecurrenceNone, nil
	case db.RecurrenceDaily:
		return internal.RecurrenceDaily, nil
	case db.RecurrenceWeekly:
		return internal.RecurrenceWeekly, nil
	case db.RecurrenceMonthly:
		return internal.RecurrenceMonthly, nil
	}

	return internal.Recurrence(-1), fmt.Errorf("unknown value: %s", r)
}

func newRecurrence(r internal.Recurrence) db.Recurrence {
	switch r {
	case internal.RecurrenceNone:
		return db.RecurrenceNone
	case internal.RecurrenceDaily:
		return db.RecurrenceDaily
	case internal.RecurrenceWeekly:
		return db.RecurrenceWeekly
	case internal.RecurrenceMonthly:
		return db.RecurrenceMonthly
	}
	return "invalid"
}

func convertAction(a db.Action) (internal.Action, error) {
	switch a {
	case db.ActionCreated:
		return internal.ActionCreated, nil
	case db.ActionUpdated:
		return internal.ActionUpdated, nil
	case db.ActionDeleted:
		return internal.ActionDeleted, nil
	case db.ActionStatusChanged:
		return internal.ActionStatusChanged, nil
	}

	return internal.Action(-1), fmt.Errorf("unknown value: %s", a)
}

func newAction(a internal.Action) db.Action {
	switch a {
	case internal.ActionCreated:
		return db.ActionCreated
	case internal.ActionUpdated:
		return db.ActionUpdated
	case internal.ActionDeleted:
		return db.ActionDeleted
	case internal.ActionStatusChanged:
		return db.ActionStatusChanged
	}
	return "invalid"
}

// newNullString creates a sql.NullString, empty means absent.
func newNullString(s string) sql.NullString {
	return sql.NullString{
		String: s,
		Valid:  s != "",
	}
}

// newNullTime creates a sql.NullTime from a *time.Time.
func newNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{
		Time:  *t,
		Valid: true,
	}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	res := t.Time
	return &res
}

func newNullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{
		UUID:  *id,
		Valid: true,
	}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	res := id.UUID
	return &res
}

func convertTask(t db.Task) (internal.Task, error) {
	priority, err := convertPriority(t.Priority)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertPriority")
	}

	status, err := convertStatus(t.Status)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertStatus")
	}

	recurrence, err := convertRecurrence(t.Recurrence)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "convertRecurrence")
	}

	return internal.Task{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description.String,
		DueDate:     t.DueDate.Time,
		Priority:    priority,
		Status:      status,
		Recurrence:  recurrence,
		NextDueDate: timePtr(t.NextDueDate),
		CompletedAt: timePtr(t.CompletedAt),
		CategoryID:  uuidPtr(t.CategoryID),
		CreatedAt:   t.CreatedAt.Time,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemPostgreSQL)

	return span
}
