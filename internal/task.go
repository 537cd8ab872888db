package internal

import (
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

//Priority indicates how important a Task is
type Priority int8

const (
	PriorityLow Priority = iota
	PriorityMedium
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityMedium:
		return "medium"
	case PriorityHigh:
		return "high"
	}
	return "invalid"
}

//ParsePriority normalizes the received value to the canonical lowercase
//casing, unknown values are rejected as invalid arguments.
func ParsePriority(s string) (Priority, error) {
	switch strings.ToLower(s) {
	case "low":
		return PriorityLow, nil
	case "medium":
		return PriorityMedium, nil
	case "high":
		return PriorityHigh, nil
	}
	return Priority(-1), NewErrorf(ErrorCodeInvalidArgument, "unknown priority: %q", s)
}

//Status indicates where in its lifecycle a Task currently is
type Status int8

const (
	StatusPending Status = iota
	StatusInProgress
	StatusCompleted
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusInProgress:
		return "in_progress"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	}
	return "invalid"
}

//ParseStatus normalizes the received value to the canonical lowercase
//casing, unknown values are rejected as invalid arguments.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(s) {
	case "pending":
		return StatusPending, nil
	case "in_progress":
		return StatusInProgress, nil
	case "completed":
		return StatusCompleted, nil
	case "cancelled":
		return StatusCancelled, nil
	}
	return Status(-1), NewErrorf(ErrorCodeInvalidArgument, "unknown status: %q", s)
}

//ToggleStatus flips a Task in or out of the completed state. Any state
//other than completed toggles to completed and stamps the completion
//time; completed toggles back to pending and clears it.
func ToggleStatus(current Status, now time.Time) (Status, *time.Time) {
	if current == StatusCompleted {
		return StatusPending, nil
	}
	return StatusCompleted, &now
}

//Recurrence is the policy governing automatic computation of a Task's
//next occurrence date.
type Recurrence int8

const (
	RecurrenceNone Recurrence = iota
	RecurrenceDaily
	RecurrenceWeekly
	RecurrenceMonthly
)

func (r Recurrence) String() string {
	switch r {
	case RecurrenceNone:
		return "none"
	case RecurrenceDaily:
		return "daily"
	case RecurrenceWeekly:
		return "weekly"
	case RecurrenceMonthly:
		return "monthly"
	}
	return "invalid"
}

//ParseRecurrence normalizes the received value to the canonical
//lowercase casing, unknown values are rejected as invalid arguments.
func ParseRecurrence(s string) (Recurrence, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return RecurrenceNone, nil
	case "daily":
		return RecurrenceDaily, nil
	case "weekly":
		return RecurrenceWeekly, nil
	case "monthly":
		return RecurrenceMonthly, nil
	}
	return Recurrence(-1), NewErrorf(ErrorCodeInvalidArgument, "unknown recurrence: %q", s)
}

//NextDueDate computes the next occurrence date for the received due
//date. It is a pure function: no side effects and no error conditions,
//policies it does not recognize behave as "none". A month is a fixed
//30-day offset, not calendar arithmetic.
func (r Recurrence) NextDueDate(dueDate time.Time) *time.Time {
	var next time.Time

	switch r {
	case RecurrenceDaily:
		next = dueDate.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		next = dueDate.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		next = dueDate.AddDate(0, 0, 30)
	default:
		return nil
	}

	return &next
}

// Task is an activity a user needs to complete by a due date.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	Status      Status
	Recurrence  Recurrence
	NextDueDate *time.Time
	CompletedAt *time.Time
	CategoryID  *uuid.UUID
	CreatedAt   time.Time
}

//CreateTaskParams defines the values required for creating a Task, the
//owner is always the resolved requester, never client supplied.
type CreateTaskParams struct {
	UserID      uuid.UUID
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	Recurrence  Recurrence
	CategoryID  *uuid.UUID
}

//Validate checks the field constraints, the due date must not be in
//the past relative to the received time; today itself is valid.
func (p CreateTaskParams) Validate(now time.Time) error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.UserID, validation.By(validUUID)),
		validation.Field(&p.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.DueDate, validation.Required, validation.By(notInThePast(now))),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

//UpdateTaskParams defines the values accepted for a full-field update.
type UpdateTaskParams struct {
	Title       string
	Description string
	DueDate     time.Time
	Priority    Priority
	Status      Status
	Recurrence  Recurrence
	CategoryID  *uuid.UUID
}

func (p UpdateTaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.DueDate, validation.Required),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

//TaskFilters narrows down and orders owner-scoped Task listings.
type TaskFilters struct {
	Status    *Status
	Priority  *Priority
	DueBefore *time.Time
	Category  *string // substring match on the category name
	OrderBy   OrderBy
}

//OrderBy defines the supported Task list orderings
type OrderBy int8

const (
	OrderByDueDate OrderBy = iota
	OrderByPriority
	OrderByCreatedAt
)

//ParseOrderBy normalizes the received value, an empty value orders by
//due date. Unknown values are rejected as invalid arguments.
func ParseOrderBy(s string) (OrderBy, error) {
	switch strings.ToLower(s) {
	case "", "due_date":
		return OrderByDueDate, nil
	case "priority":
		return OrderByPriority, nil
	case "created_at":
		return OrderByCreatedAt, nil
	}
	return OrderBy(-1), NewErrorf(ErrorCodeInvalidArgument, "unknown order_by: %q", s)
}

//SearchParams defines the full-text arguments used for searching Tasks,
//always scoped to the requesting owner.
type SearchParams struct {
	UserID   uuid.UUID
	Query    *string
	Priority *Priority
	Status   *Status
	From     int64
	Size     int64
}

//IsZero determines whether any search argument was set at all
func (a SearchParams) IsZero() bool {
	return a.Query == nil && a.Priority == nil && a.Status == nil
}

//SearchResults defines the collection of Tasks matching a search
type SearchResults struct {
	Tasks []Task
	Total int64
}

func notInThePast(now time.Time) validation.RuleFunc {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	return func(value interface{}) error {
		t, ok := value.(time.Time)
		if !ok {
			return NewErrorf(ErrorCodeInvalidArgument, "not a time value")
		}
		if t.Before(today) {
			return NewErrorf(ErrorCodeInvalidArgument, "due date must not be in the past")
		}
		return nil
	}
}

func validUUID(value interface{}) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return NewErrorf(ErrorCodeInvalidArgument, "missing identifier")
	}
	return nil
}
