package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/rest"
)

type taskServiceStub struct {
	createFn  func(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	taskFn    func(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	listFn    func(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error)
	byFn      func(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error)
	updateFn  func(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error)
	deleteFn  func(ctx context.Context, userID, id uuid.UUID) error
	toggleFn  func(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	historyFn func(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error)
}

func (s *taskServiceStub) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	return s.createFn(ctx, params)
}

func (s *taskServiceStub) Task(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	return s.taskFn(ctx, userID, id)
}

func (s *taskServiceStub) List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error) {
	return s.listFn(ctx, userID, filters)
}

func (s *taskServiceStub) By(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error) {
	return s.byFn(ctx, args)
}

func (s *taskServiceStub) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error) {
	return s.updateFn(ctx, userID, id, params)
}

func (s *taskServiceStub) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.deleteFn(ctx, userID, id)
}

func (s *taskServiceStub) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	return s.toggleFn(ctx, userID, id)
}

func (s *taskServiceStub) History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error) {
	return s.historyFn(ctx, userID, taskID)
}

func newTaskServer(svc rest.TaskService) *httptest.Server {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(rest.RequesterID)
		rest.NewTaskHandler(svc).Register(r)
	})

	return httptest.NewServer(router)
}

func doRequest(t *testing.T, srv *httptest.Server, method, path, userID string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)

	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)

	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestTaskHandlerCreate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("created", func(t *testing.T) {
		t.Parallel()

		svc := &taskServiceStub{
			createFn: func(_ context.Context, params internal.CreateTaskParams) (internal.Task, error) {
				assert.Equal(t, userID, params.UserID)
				assert.Equal(t, "pay rent", params.Title)
				assert.Equal(t, internal.PriorityHigh, params.Priority)
				assert.Equal(t, internal.RecurrenceMonthly, params.Recurrence)

				return internal.Task{
					ID:       uuid.New(),
					UserID:   params.UserID,
					Title:    params.Title,
					DueDate:  params.DueDate,
					Priority: params.Priority,
				}, nil
			},
		}

		srv := newTaskServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodPost, "/tasks", userID.String(), rest.CreateTaskRequest{
			Title:      "pay rent",
			DueDate:    time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
			Priority:   "high",
			Recurrence: "monthly",
		})

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var res rest.CreateTaskResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Equal(t, "pay rent", res.Task.Title)
		assert.Equal(t, "high", res.Task.Priority)
	})

	t.Run("malformed body", func(t *testing.T) {
		t.Parallel()

		srv := newTaskServer(&taskServiceStub{})
		defer srv.Close()

		req, err := http.NewRequest(http.MethodPost, srv.URL+"/tasks", bytes.NewBufferString("{nope"))
		require.NoError(t, err)
		req.Header.Set("X-User-Id", userID.String())

		resp, err := srv.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown priority", func(t *testing.T) {
		t.Parallel()

		srv := newTaskServer(&taskServiceStub{})
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodPost, "/tasks", userID.String(), rest.CreateTaskRequest{
			Title:    "pay rent",
			DueDate:  time.Now().AddDate(0, 0, 1).Format("2006-01-02"),
			Priority: "urgent",
		})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("missing identity", func(t *testing.T) {
		t.Parallel()

		srv := newTaskServer(&taskServiceStub{})
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodPost, "/tasks", "", rest.CreateTaskRequest{})

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestTaskHandlerTask(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("not found maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &taskServiceStub{
			taskFn: func(context.Context, uuid.UUID, uuid.UUID) (internal.Task, error) {
				return internal.Task{}, fmt.Errorf("find: %w",
					internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"))
			},
		}

		srv := newTaskServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodGet, "/tasks/"+uuid.NewString(), userID.String(), nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed id", func(t *testing.T) {
		t.Parallel()

		srv := newTaskServer(&taskServiceStub{})
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodGet, "/tasks/not-a-uuid", userID.String(), nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTaskHandlerList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("filters forwarded", func(t *testing.T) {
		t.Parallel()

		svc := &taskServiceStub{
			listFn: func(_ context.Context, gotUser uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error) {
				assert.Equal(t, userID, gotUser)
				require.NotNil(t, filters.Status)
				assert.Equal(t, internal.StatusPending, *filters.Status)
				assert.Equal(t, internal.OrderByPriority, filters.OrderBy)

				return []internal.Task{{ID: uuid.New(), UserID: gotUser, Title: "one"}}, nil
			},
		}

		srv := newTaskServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodGet, "/tasks?status=pending&order_by=priority", userID.String(), nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var res rest.ListTasksResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
		assert.Len(t, res.Tasks, 1)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		t.Parallel()

		srv := newTaskServer(&taskServiceStub{})
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodGet, "/tasks?status=done", userID.String(), nil)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestTaskHandlerToggle(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()
	completedAt := time.Now()

	svc := &taskServiceStub{
		toggleFn: func(_ context.Context, gotUser, gotID uuid.UUID) (internal.Task, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, taskID, gotID)

			return internal.Task{
				ID:          taskID,
				UserID:      gotUser,
				Title:       "water plants",
				Status:      internal.StatusCompleted,
				CompletedAt: &completedAt,
			}, nil
		},
	}

	srv := newTaskServer(svc)
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodPost, "/tasks/"+taskID.String()+"/toggle", userID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res rest.ToggleTaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "completed", res.Task.Status)
	assert.NotNil(t, res.Task.CompletedAt)
}

func TestTaskHandlerHistory(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	taskID := uuid.New()

	svc := &taskServiceStub{
		historyFn: func(_ context.Context, gotUser, gotTask uuid.UUID) ([]internal.TaskHistory, error) {
			assert.Equal(t, userID, gotUser)
			assert.Equal(t, taskID, gotTask)

			return []internal.TaskHistory{
				{
					ID:      uuid.New(),
					TaskID:  gotTask,
					UserID:  gotUser,
					Action:  internal.ActionStatusChanged,
					Details: internal.StatusChangedDetails("water plants", internal.StatusCompleted),
				},
				{
					ID:      uuid.New(),
					TaskID:  gotTask,
					UserID:  gotUser,
					Action:  internal.ActionCreated,
					Details: internal.HistoryDetails(internal.ActionCreated, "water plants"),
				},
			}, nil
		},
	}

	srv := newTaskServer(svc)
	defer srv.Close()

	resp := doRequest(t, srv, http.MethodGet, "/tasks/"+taskID.String()+"/history", userID.String(), nil)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res rest.ListTaskHistoryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	require.Len(t, res.History, 2)
	assert.Equal(t, "status_changed", res.History[0].Action)
	assert.Equal(t, `Task "water plants" created.`, res.History[1].Details)
}

func TestTaskHandlerSearch(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	svc := &taskServiceStub{
		byFn: func(_ context.Context, args internal.SearchParams) (internal.SearchResults, error) {
			assert.Equal(t, userID, args.UserID)
			require.NotNil(t, args.Query)
			assert.Equal(t, "rent", *args.Query)
			assert.Equal(t, int64(10), args.Size)

			return internal.SearchResults{
				Tasks: []internal.Task{{ID: uuid.New(), UserID: args.UserID, Title: "pay rent"}},
				Total: 1,
			}, nil
		},
	}

	srv := newTaskServer(svc)
	defer srv.Close()

	query := "rent"

	resp := doRequest(t, srv, http.MethodPost, "/tasks/search", userID.String(), rest.SearchTasksRequest{
		Query: &query,
	})

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var res rest.SearchTasksResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Tasks, 1)
}

func TestTaskHandlerDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("deleted", func(t *testing.T) {
		t.Parallel()

		svc := &taskServiceStub{
			deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error { return nil },
		}

		srv := newTaskServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodDelete, "/tasks/"+uuid.NewString(), userID.String(), nil)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("someone else's task maps to 404", func(t *testing.T) {
		t.Parallel()

		svc := &taskServiceStub{
			deleteFn: func(context.Context, uuid.UUID, uuid.UUID) error {
				return fmt.Errorf("delete: %w",
					internal.NewErrorf(internal.ErrorCodeNotFound, "task not found"))
			},
		}

		srv := newTaskServer(svc)
		defer srv.Close()

		resp := doRequest(t, srv, http.MethodDelete, "/tasks/"+uuid.NewString(), userID.String(), nil)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
