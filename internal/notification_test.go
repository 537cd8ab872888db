package internal_test

import (
	"testing"
	"time"

	"github.com/taskhive/taskhive-api/internal"
)

func TestDueSoon(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dueDate time.Time
		want    bool
	}{
		{name: "due in an hour", dueDate: now.Add(time.Hour), want: true},
		{name: "already overdue", dueDate: now.Add(-time.Hour), want: true},
		{name: "exactly on the window boundary", dueDate: now.Add(internal.DueSoonWindow), want: true},
		{name: "one second past the boundary", dueDate: now.Add(internal.DueSoonWindow + time.Second), want: false},
		{name: "due next week", dueDate: now.AddDate(0, 0, 7), want: false},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := internal.DueSoon(tt.dueDate, now); got != tt.want {
				t.Fatalf("expected %t, got %t", tt.want, got)
			}
		})
	}
}

func TestDueSoonMessage(t *testing.T) {
	t.Parallel()

	got := internal.DueSoonMessage("pay rent")
	want := "Task 'pay rent' is due soon!"

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
