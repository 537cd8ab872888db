package internal_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal"
)

func TestCreateCategoryParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  internal.CreateCategoryParams
		withErr bool
	}{
		{
			name:   "valid",
			params: internal.CreateCategoryParams{UserID: uuid.New(), Name: "errands"},
		},
		{
			name:    "missing name",
			params:  internal.CreateCategoryParams{UserID: uuid.New()},
			withErr: true,
		},
		{
			name:    "name too long",
			params:  internal.CreateCategoryParams{UserID: uuid.New(), Name: strings.Repeat("x", 101)},
			withErr: true,
		},
		{
			name:    "missing owner",
			params:  internal.CreateCategoryParams{Name: "errands"},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if (err != nil) != tt.withErr {
				t.Fatalf("expected error %t, got %s", tt.withErr, err)
			}
		})
	}
}

func TestUpdateCategoryParamsValidate(t *testing.T) {
	t.Parallel()

	if err := (internal.UpdateCategoryParams{Name: "chores"}).Validate(); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if err := (internal.UpdateCategoryParams{}).Validate(); err == nil {
		t.Fatal("expected error, got none")
	}
}
