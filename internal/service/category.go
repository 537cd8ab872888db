package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/taskhive/taskhive-api/internal"
)

//CategoryRepository defines the datasource handling persisting
//Category records.
type CategoryRepository interface {
	Create(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error)
	Find(ctx context.Context, userID, id uuid.UUID) (internal.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]internal.Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

//Category defines the application service in charge of interacting
//with Categories.
type Category struct {
	logger *zap.Logger
	repo   CategoryRepository
}

//NewCategory instantiates the Category service
func NewCategory(logger *zap.Logger, repo CategoryRepository) *Category {
	return &Category{
		logger: logger,
		repo:   repo,
	}
}

//Create validates and stores a new record, the owner is always the
//resolved requester and never client supplied.
func (c *Category) Create(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Create")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Category{}, fmt.Errorf("params validate: %w", err)
	}

	category, err := c.repo.Create(ctx, params)
	if err != nil {
		return internal.Category{}, fmt.Errorf("repo create: %w", err)
	}

	return category, nil
}

//Category gets an existing Category from the datastore
func (c *Category) Category(ctx context.Context, userID, id uuid.UUID) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Category")
	defer span.End()

	category, err := c.repo.Find(ctx, userID, id)
	if err != nil {
		return internal.Category{}, fmt.Errorf("repo find: %w", err)
	}

	return category, nil
}

//List returns all of the requester's categories
func (c *Category) List(ctx context.Context, userID uuid.UUID) ([]internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.List")
	defer span.End()

	res, err := c.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}

	return res, nil
}

//Update validates and renames an existing Category
func (c *Category) Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Update")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Category{}, fmt.Errorf("params validate: %w", err)
	}

	category, err := c.repo.Update(ctx, userID, id, params)
	if err != nil {
		return internal.Category{}, fmt.Errorf("repo update: %w", err)
	}

	return category, nil
}

//Delete removes an existing Category, referencing Tasks are detached
//and survive.
func (c *Category) Delete(ctx context.Context, userID, id uuid.UUID) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Category.Delete")
	defer span.End()

	if err := c.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	return nil
}
