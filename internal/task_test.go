package internal_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal"
)

func TestParsePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    internal.Priority
		withErr bool
	}{
		{name: "low", input: "low", want: internal.PriorityLow},
		{name: "medium", input: "medium", want: internal.PriorityMedium},
		{name: "high", input: "high", want: internal.PriorityHigh},
		{name: "mixed casing normalizes", input: "HiGh", want: internal.PriorityHigh},
		{name: "unknown value", input: "urgent", withErr: true},
		{name: "empty value", input: "", withErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := internal.ParsePriority(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if err != nil {
				var ierr *internal.Error
				if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
					t.Fatalf("expected invalid argument, got %v", err)
				}

				return
			}

			if got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    internal.Status
		withErr bool
	}{
		{name: "pending", input: "pending", want: internal.StatusPending},
		{name: "in_progress", input: "in_progress", want: internal.StatusInProgress},
		{name: "completed", input: "Completed", want: internal.StatusCompleted},
		{name: "cancelled", input: "cancelled", want: internal.StatusCancelled},
		{name: "unknown value", input: "done", withErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := internal.ParseStatus(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if !tt.withErr && got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestParseRecurrence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    internal.Recurrence
		withErr bool
	}{
		{name: "empty defaults to none", input: "", want: internal.RecurrenceNone},
		{name: "none", input: "none", want: internal.RecurrenceNone},
		{name: "daily", input: "daily", want: internal.RecurrenceDaily},
		{name: "weekly", input: "WEEKLY", want: internal.RecurrenceWeekly},
		{name: "monthly", input: "monthly", want: internal.RecurrenceMonthly},
		{name: "unknown value", input: "yearly", withErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := internal.ParseRecurrence(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if !tt.withErr && got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestRecurrenceNextDueDate(t *testing.T) {
	t.Parallel()

	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		recurrence internal.Recurrence
		want       *time.Time
	}{
		{name: "none has no next occurrence", recurrence: internal.RecurrenceNone, want: nil},
		{name: "daily adds one day", recurrence: internal.RecurrenceDaily, want: timePtr(due.AddDate(0, 0, 1))},
		{name: "weekly adds seven days", recurrence: internal.RecurrenceWeekly, want: timePtr(due.AddDate(0, 0, 7))},
		{name: "monthly adds thirty days", recurrence: internal.RecurrenceMonthly, want: timePtr(due.AddDate(0, 0, 30))},
		{name: "unrecognized behaves as none", recurrence: internal.Recurrence(-1), want: nil},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.recurrence.NextDueDate(due)

			if (got == nil) != (tt.want == nil) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}

			if got != nil && !got.Equal(*tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestToggleStatus(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("pending toggles to completed and stamps the time", func(t *testing.T) {
		t.Parallel()

		status, completedAt := internal.ToggleStatus(internal.StatusPending, now)
		if status != internal.StatusCompleted {
			t.Fatalf("expected completed, got %s", status)
		}

		if completedAt == nil || !completedAt.Equal(now) {
			t.Fatalf("expected completion time %v, got %v", now, completedAt)
		}
	})

	t.Run("in progress toggles to completed", func(t *testing.T) {
		t.Parallel()

		status, completedAt := internal.ToggleStatus(internal.StatusInProgress, now)
		if status != internal.StatusCompleted || completedAt == nil {
			t.Fatalf("expected completed with time, got %s %v", status, completedAt)
		}
	})

	t.Run("completed toggles back to pending and clears the time", func(t *testing.T) {
		t.Parallel()

		status, completedAt := internal.ToggleStatus(internal.StatusCompleted, now)
		if status != internal.StatusPending {
			t.Fatalf("expected pending, got %s", status)
		}

		if completedAt != nil {
			t.Fatalf("expected cleared completion time, got %v", completedAt)
		}
	})
}

func TestCreateTaskParamsValidate(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)

	valid := internal.CreateTaskParams{
		UserID:  uuid.New(),
		Title:   "buy groceries",
		DueDate: now.AddDate(0, 0, 1),
	}

	tests := []struct {
		name    string
		params  func() internal.CreateTaskParams
		withErr bool
	}{
		{
			name:   "valid",
			params: func() internal.CreateTaskParams { return valid },
		},
		{
			name: "due today is valid",
			params: func() internal.CreateTaskParams {
				p := valid
				p.DueDate = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
				return p
			},
		},
		{
			name: "due yesterday is rejected",
			params: func() internal.CreateTaskParams {
				p := valid
				p.DueDate = now.AddDate(0, 0, -1)
				return p
			},
			withErr: true,
		},
		{
			name: "missing title",
			params: func() internal.CreateTaskParams {
				p := valid
				p.Title = ""
				return p
			},
			withErr: true,
		},
		{
			name: "missing owner",
			params: func() internal.CreateTaskParams {
				p := valid
				p.UserID = uuid.Nil
				return p
			},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params().Validate(now)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if err != nil {
				var ierr *internal.Error
				if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
					t.Fatalf("expected invalid argument, got %v", err)
				}
			}
		})
	}
}

func TestParseOrderBy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    internal.OrderBy
		withErr bool
	}{
		{name: "empty defaults to due date", input: "", want: internal.OrderByDueDate},
		{name: "due_date", input: "due_date", want: internal.OrderByDueDate},
		{name: "priority", input: "priority", want: internal.OrderByPriority},
		{name: "created_at", input: "created_at", want: internal.OrderByCreatedAt},
		{name: "unknown value", input: "title", withErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := internal.ParseOrderBy(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if !tt.withErr && got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
