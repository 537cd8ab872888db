package internal_test

import (
	"testing"

	"github.com/taskhive/taskhive-api/internal"
)

func TestParseAction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    internal.Action
		withErr bool
	}{
		{name: "created", input: "created", want: internal.ActionCreated},
		{name: "updated", input: "updated", want: internal.ActionUpdated},
		{name: "deleted", input: "Deleted", want: internal.ActionDeleted},
		{name: "status_changed", input: "status_changed", want: internal.ActionStatusChanged},
		{name: "unknown value", input: "archived", withErr: true},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := internal.ParseAction(tt.input)
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}

			if !tt.withErr && got != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHistoryDetails(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		action internal.Action
		want   string
	}{
		{name: "created", action: internal.ActionCreated, want: `Task "water plants" created.`},
		{name: "updated", action: internal.ActionUpdated, want: `Task "water plants" updated.`},
		{name: "deleted", action: internal.ActionDeleted, want: `Task "water plants" deleted.`},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := internal.HistoryDetails(tt.action, "water plants"); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStatusChangedDetails(t *testing.T) {
	t.Parallel()

	got := internal.StatusChangedDetails("water plants", internal.StatusCompleted)
	want := `Task "water plants" changed status to completed.`

	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
