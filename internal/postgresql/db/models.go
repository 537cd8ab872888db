package db

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

//DBTX is satisfied by both pgxpool.Pool and pgx.Tx, repositories run
//against either one so a mutation and its side effects can share a
//single transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Recurrence string

const (
	RecurrenceNone    Recurrence = "none"
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
)

type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionDeleted       Action = "deleted"
	ActionStatusChanged Action = "status_changed"
)

type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description sql.NullString
	DueDate     sql.NullTime
	Priority    Priority
	Status      Status
	Recurrence  Recurrence
	NextDueDate sql.NullTime
	CompletedAt sql.NullTime
	CategoryID  uuid.NullUUID
	CreatedAt   sql.NullTime
}

type Category struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Name   string
}

type TaskHistory struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	UserID     uuid.UUID
	Action     Action
	Details    string
	ChangeTime sql.NullTime
}

type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    uuid.UUID
	Message   string
	Read      bool
	CreatedAt sql.NullTime
}
