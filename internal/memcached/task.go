package memcached

import (
	"context"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
)

//Task is a cache-aside decorator over the persistent Task store. Reads
//hit the cache first, every mutation goes straight through and
//invalidates or refreshes the cached entry.
type Task struct {
	client     *memcache.Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

//TaskStore defines the persistent datasource being decorated
type TaskStore interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Find(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error)
}

//NewTask instantiates the decorated Task repository
func NewTask(client *memcache.Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

func taskKey(userID, id uuid.UUID) string {
	return fmt.Sprintf("task:%s:%s", userID, id)
}

//Create stores the new record and caches it
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(task.UserID, task.ID), &task, t.expiration)

	return task, nil
}

//Find returns the cached record when present, falling back to the
//persistent store.
func (t *Task) Find(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getTask(ctx, t.client, taskKey(userID, id), &res); err == nil {
		return res, nil
	}

	res, err := t.orig.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	t.logger.Debug("Find: cache miss, setting value")

	setTask(ctx, t.client, taskKey(userID, id), &res, t.expiration)

	return res, nil
}

//List is a pass-through, collections are not cached
func (t *Task) List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error) {
	return t.orig.List(ctx, userID, filters)
}

//Update goes straight through and refreshes the cached entry
func (t *Task) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, userID, id, params)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(userID, id), &task, t.expiration)

	return task, nil
}

//Delete goes straight through and drops the cached entry
func (t *Task) Delete(ctx context.Context, userID, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, userID, id); err != nil {
		return err
	}

	deleteTask(ctx, t.client, taskKey(userID, id))

	return nil
}

//ToggleComplete goes straight through and refreshes the cached entry
func (t *Task) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ToggleComplete").End()

	task, err := t.orig.ToggleComplete(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	setTask(ctx, t.client, taskKey(userID, id), &task, t.expiration)

	return task, nil
}

//History is a pass-through, audit trails grow on every mutation and
//are always read fresh.
func (t *Task) History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error) {
	return t.orig.History(ctx, userID, taskID)
}
