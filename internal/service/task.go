package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
)

//TaskRepository defines the datasource handling persisting Task
//records. Implementations run each mutation together with its history
//append and due-soon notification as one atomic unit.
type TaskRepository interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Find(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error)
}

//TaskSearchRepository defines the datastore handling searching Task
//records.
type TaskSearchRepository interface {
	Search(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error)
}

//TaskMessageBrokerRepository defines the datasource handling
//publishing Task events for the search indexers.
type TaskMessageBrokerRepository interface {
	Created(ctx context.Context, task internal.Task) error
	Deleted(ctx context.Context, id uuid.UUID) error
	Updated(ctx context.Context, task internal.Task) error
}

//Task defines the application service in charge of interacting with
//Tasks. Every operation receives the resolved requester identity
//explicitly, nothing is read from ambient state.
type Task struct {
	logger    *zap.Logger
	repo      TaskRepository
	search    TaskSearchRepository
	msgBroker TaskMessageBrokerRepository
}

//NewTask instantiates the Task service
func NewTask(logger *zap.Logger, repo TaskRepository, search TaskSearchRepository, msgBroker TaskMessageBrokerRepository) *Task {
	return &Task{
		logger:    logger,
		repo:      repo,
		search:    search,
		msgBroker: msgBroker,
	}
}

//Create validates and stores a new record, the owner comes from the
//resolved requester. The repository appends the "created" history
//entry and emits the due-soon notification in the same unit of work.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Create")
	defer span.End()

	if err := params.Validate(time.Now().UTC()); err != nil {
		return internal.Task{}, fmt.Errorf("params validate: %w", err)
	}

	task, err := t.repo.Create(ctx, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo create: %w", err)
	}

	// XXX: Indexing errors are ignored on purpose, the indexer
	// reconciles from the broker stream.
	if err := t.msgBroker.Created(ctx, task); err != nil {
		t.logger.Warn("msgBroker.Created failed", zap.Error(err))
	}

	return task, nil
}

//Task gets an existing Task from the datastore
func (t *Task) Task(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Task")
	defer span.End()

	task, err := t.repo.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo find: %w", err)
	}

	return task, nil
}

//List returns the requester's Tasks matching the received filters
func (t *Task) List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.List")
	defer span.End()

	res, err := t.repo.List(ctx, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}

	return res, nil
}

//By searches Tasks matching the received values
func (t *Task) By(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.By")
	defer span.End()

	res, err := t.search.Search(ctx, args)
	if err != nil {
		return internal.SearchResults{}, fmt.Errorf("search: %w", err)
	}

	return res, nil
}

//Update validates and updates an existing Task in the datastore, the
//"updated" history entry is appended in the same unit of work.
func (t *Task) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Update")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Task{}, fmt.Errorf("params validate: %w", err)
	}

	task, err := t.repo.Update(ctx, userID, id, params)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo update: %w", err)
	}

	if err := t.msgBroker.Updated(ctx, task); err != nil {
		t.logger.Warn("msgBroker.Updated failed", zap.Error(err))
	}

	return task, nil
}

//Delete removes an existing Task from the datastore, its audit trail
//stays behind.
func (t *Task) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.Delete")
	defer span.End()

	if err := t.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	if err := t.msgBroker.Deleted(ctx, id); err != nil {
		t.logger.Warn("msgBroker.Deleted failed", zap.Error(err))
	}

	return nil
}

//ToggleComplete flips an existing Task in or out of the completed
//state, recording the transition as a "status_changed" history entry.
func (t *Task) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.ToggleComplete")
	defer span.End()

	task, err := t.repo.ToggleComplete(ctx, userID, id)
	if err != nil {
		return internal.Task{}, fmt.Errorf("repo toggle complete: %w", err)
	}

	if err := t.msgBroker.Updated(ctx, task); err != nil {
		t.logger.Warn("msgBroker.Updated failed", zap.Error(err))
	}

	return task, nil
}

//History returns a Task's audit trail, newest first
func (t *Task) History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Task.History")
	defer span.End()

	res, err := t.repo.History(ctx, userID, taskID)
	if err != nil {
		return nil, fmt.Errorf("repo history: %w", err)
	}

	return res, nil
}
