package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
	"github.com/taskhive/taskhive-api/internal/service"
)

type taskRepoStub struct {
	task internal.Task
	err  error
}

func (r *taskRepoStub) Create(_ context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	if r.err != nil {
		return internal.Task{}, r.err
	}

	task := r.task
	task.UserID = params.UserID
	task.Title = params.Title

	return task, nil
}

func (r *taskRepoStub) Find(context.Context, uuid.UUID, uuid.UUID) (internal.Task, error) {
	return r.task, r.err
}

func (r *taskRepoStub) List(context.Context, uuid.UUID, internal.TaskFilters) ([]internal.Task, error) {
	return []internal.Task{r.task}, r.err
}

func (r *taskRepoStub) Update(context.Context, uuid.UUID, uuid.UUID, internal.UpdateTaskParams) (internal.Task, error) {
	return r.task, r.err
}

func (r *taskRepoStub) Delete(context.Context, uuid.UUID, uuid.UUID) error {
	return r.err
}

func (r *taskRepoStub) ToggleComplete(context.Context, uuid.UUID, uuid.UUID) (internal.Task, error) {
	return r.task, r.err
}

func (r *taskRepoStub) History(context.Context, uuid.UUID, uuid.UUID) ([]internal.TaskHistory, error) {
	return nil, r.err
}

type searchRepoStub struct {
	results internal.SearchResults
	err     error
}

func (s *searchRepoStub) Search(context.Context, internal.SearchParams) (internal.SearchResults, error) {
	return s.results, s.err
}

type msgBrokerStub struct {
	createdCalls int
	updatedCalls int
	deletedCalls int
	err          error
}

func (m *msgBrokerStub) Created(context.Context, internal.Task) error {
	m.createdCalls++
	return m.err
}

func (m *msgBrokerStub) Deleted(context.Context, uuid.UUID) error {
	m.deletedCalls++
	return m.err
}

func (m *msgBrokerStub) Updated(context.Context, internal.Task) error {
	m.updatedCalls++
	return m.err
}

func TestTaskCreate(t *testing.T) {
	t.Parallel()

	validParams := internal.CreateTaskParams{
		UserID:  uuid.New(),
		Title:   "pay rent",
		DueDate: time.Now().UTC().AddDate(0, 0, 1),
	}

	t.Run("creates and publishes", func(t *testing.T) {
		t.Parallel()

		broker := &msgBrokerStub{}
		svc := service.NewTask(zap.NewNop(), &taskRepoStub{}, &searchRepoStub{}, broker)

		task, err := svc.Create(context.Background(), validParams)
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}

		if task.Title != validParams.Title {
			t.Fatalf("expected title %q, got %q", validParams.Title, task.Title)
		}

		if broker.createdCalls != 1 {
			t.Fatalf("expected 1 created event, got %d", broker.createdCalls)
		}
	})

	t.Run("rejects invalid params before hitting the store", func(t *testing.T) {
		t.Parallel()

		params := validParams
		params.DueDate = time.Now().UTC().AddDate(0, 0, -2)

		broker := &msgBrokerStub{}
		svc := service.NewTask(zap.NewNop(), &taskRepoStub{}, &searchRepoStub{}, broker)

		_, err := svc.Create(context.Background(), params)

		var ierr *internal.Error
		if !errors.As(err, &ierr) || ierr.Code() != internal.ErrorCodeInvalidArgument {
			t.Fatalf("expected invalid argument, got %v", err)
		}

		if broker.createdCalls != 0 {
			t.Fatalf("expected no created events, got %d", broker.createdCalls)
		}
	})

	t.Run("broker failures are tolerated", func(t *testing.T) {
		t.Parallel()

		broker := &msgBrokerStub{err: errors.New("broker down")}
		svc := service.NewTask(zap.NewNop(), &taskRepoStub{}, &searchRepoStub{}, broker)

		if _, err := svc.Create(context.Background(), validParams); err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
	})

	t.Run("store failure propagates", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{err: internal.NewErrorf(internal.ErrorCodeUnknown, "down")}
		svc := service.NewTask(zap.NewNop(), repo, &searchRepoStub{}, &msgBrokerStub{})

		if _, err := svc.Create(context.Background(), validParams); err == nil {
			t.Fatal("expected error, got none")
		}
	})
}

func TestTaskToggleComplete(t *testing.T) {
	t.Parallel()

	now := time.Now()

	repo := &taskRepoStub{
		task: internal.Task{
			ID:          uuid.New(),
			Status:      internal.StatusCompleted,
			CompletedAt: &now,
		},
	}

	broker := &msgBrokerStub{}
	svc := service.NewTask(zap.NewNop(), repo, &searchRepoStub{}, broker)

	task, err := svc.ToggleComplete(context.Background(), uuid.New(), repo.task.ID)
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if task.Status != internal.StatusCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}

	if broker.updatedCalls != 1 {
		t.Fatalf("expected 1 updated event, got %d", broker.updatedCalls)
	}
}

func TestTaskDelete(t *testing.T) {
	t.Parallel()

	broker := &msgBrokerStub{}
	svc := service.NewTask(zap.NewNop(), &taskRepoStub{}, &searchRepoStub{}, broker)

	if err := svc.Delete(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("expected no error, got %s", err)
	}

	if broker.deletedCalls != 1 {
		t.Fatalf("expected 1 deleted event, got %d", broker.deletedCalls)
	}
}
