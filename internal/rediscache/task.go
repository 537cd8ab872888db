// Package rediscache implements a cache-aside Task store decorator
// backed by Redis, interchangeable with the memcached one.
package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
)

const otelName = "github.com/taskhive/taskhive-api/internal/rediscache"

//Task is a cache-aside decorator over the persistent Task store
type Task struct {
	client     *redis.Client
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
func NewTask(client *redis.Client, orig TaskStore, logger *zap.Logger) *Task {
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

	t.set(ctx, taskKey(task.UserID, task.ID), task)

	return task, nil
}

//Find returns the cached record when present, falling back to the
//persistent store.
func (t *Task) Find(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	if val, err := t.client.Get(ctx, taskKey(userID, id)).Bytes(); err == nil {
		var res internal.Task
		if err := json.Unmarshal(val, &res); err == nil {
			return res, nil
		}
	}

	res, err := t.orig.Find(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	t.logger.Debug("Find: cache miss, setting value")

	t.set(ctx, taskKey(userID, id), res)

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

	t.set(ctx, taskKey(userID, id), task)

	return task, nil
}

//Delete goes straight through and drops the cached entry
func (t *Task) Delete(ctx context.Context, userID, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, userID, id); err != nil {
		return err
	}

	_ = t.client.Del(ctx, taskKey(userID, id)).Err()

	return nil
}

//ToggleComplete goes straight through and refreshes the cached entry
func (t *Task) ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ToggleComplete").End()

	task, err := t.orig.ToggleComplete(ctx, userID, id)
	if err != nil {
		return internal.Task{}, err
	}

	t.set(ctx, taskKey(userID, id), task)

	return task, nil
}

//History is a pass-through, audit trails grow on every mutation and
//are always read fresh.
func (t *Task) History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error) {
	return t.orig.History(ctx, userID, taskID)
}

func (t *Task) set(ctx context.Context, key string, task internal.Task) {
	val, err := json.Marshal(task)
	if err != nil {
		return
	}

	_ = t.client.Set(ctx, key, val, t.expiration).Err()
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemRedis)

	return span
}
