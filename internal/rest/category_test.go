package rest_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/rest"
)

type categoryServiceStub struct {
	createFn   func(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error)
	categoryFn func(ctx context.Context, userID, id uuid.UUID) (internal.Category, error)
	listFn     func(ctx context.Context, userID uuid.UUID) ([]internal.Category, error)
	updateFn   func(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error)
	deleteFn   func(ctx context.Context, userID, id uuid.UUID) error
}

func (s *categoryServiceStub) Create(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error) {
	return s.createFn(ctx, params)
}

func (s *categoryServiceStub) Category(ctx context.Context, userID, id uuid.UUID) (internal.Category, error) {
	return s.categoryFn(ctx, userID, id)
}

func (s *categoryServiceStub) List(ctx context.Context, userID uuid.UUID) ([]internal.Category, error) {
	return s.listFn(ctx, userID)
}

func (s *categoryServiceStub) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error) {
	return s.updateFn(ctx, userID, id, params)
}

func (s *categoryServiceStub) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteFn(ctx, userID, id)
}

func newCategoryServer(svc rest.CategoryService) *httptest.Server {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(rest.RequesterID)
		rest.NewCategoryHandler(svc).Register(r)
	})

	return httptest.NewServer(router)
}

func TestCategoryHandlerCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		svc := &categoryServiceStub{
			createFn: func(_ context.Context, params internal.CreateCategoryParams) (internal.Category, error) {
				assert.Equal(t, userID, params.UserID)

				return internal.Category{ID: uuid.New(), UserID: params.UserID, Name: params.Name}, nil
			},
		}

		srv := newCategoryServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodPost, "/categories", userID.String(), rest.CreateCategoryRequest{
			Name: "errands",
		})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res rest.CreateCategoryResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "errands", res.Category.Name)
	})

	t.Run("duplicate name maps to 409", func(t *testing.T) {
		t.Parallel()

		svc := &categoryServiceStub{
			createFn: func(context.Context, internal.CreateCategoryParams) (internal.Category, error) {
				return internal.Category{}, fmt.Errorf("create: %w",
					internal.NewErrorf(internal.ErrorCodeConflict, "category already exists"))
			},
		}

		srv := newCategoryServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodPost, "/categories", userID.String(), rest.CreateCategoryRequest{
			Name: "errands",
		})

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
	})
}

func TestCategoryHandlerDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	svc := &categoryServiceStub{
		deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
			return fmt.Errorf("delete: %w",
				internal.NewErrorf(internal.ErrorCodeNotFound, "category not found"))
		},
	}

	srv := newCategoryServer(svc)
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodDelete, "/categories/"+uuid.NewString(), userID.String(), nil)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
