package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal"
)

//CategoryService defines the operations the Category handler exposes
//over HTTP.
type CategoryService interface {
	Create(ctx context.Context, params internal.CreateCategoryParams) (internal.Category, error)
	Category(ctx context.Context, userID, id uuid.UUID) (internal.Category, error)
	List(ctx context.Context, userID uuid.UUID) ([]internal.Category, error)
	Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateCategoryParams) (internal.Category, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

//CategoryHandler exposes Category operations
type CategoryHandler struct {
	svc CategoryService
}

//NewCategoryHandler instantiates the handler
func NewCategoryHandler(svc CategoryService) *CategoryHandler {
	return &CategoryHandler{
		svc: svc,
	}
}

//Register connects the handlers to the router
func (c *CategoryHandler) Register(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", c.list)
		r.Post("/", c.create)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", c.category)
			r.Put("/", c.update)
			r.Delete("/", c.delete)
		})
	})
}

//Category is a per-user named grouping for tasks
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

//NewCategory converts the domain type to its wire representation
func NewCategory(category internal.Category) Category {
	return Category{
		ID:   category.ID.String(),
		Name: category.Name,
	}
}

//CreateCategoryRequest defines the request used for creating
//categories, the owner comes from the requester identity.
type CreateCategoryRequest struct {
	Name string `json:"name"`
}

//CreateCategoryResponse defines the response returned back after
//creating categories.
type CreateCategoryResponse struct {
	Category Category `json:"category"`
}

func (c *CategoryHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	category, err := c.svc.Create(r.Context(), internal.CreateCategoryParams{
		UserID: requesterID(r),
		Name:   req.Name,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, &CreateCategoryResponse{Category: NewCategory(category)}, http.StatusCreated)
}

//ReadCategoryResponse defines the response returned back after reading
//one category.
type ReadCategoryResponse struct {
	Category Category `json:"category"`
}

func (c *CategoryHandler) category(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	category, err := c.svc.Category(r.Context(), requesterID(r), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "find failed", err)
		return
	}

	renderResponse(w, &ReadCategoryResponse{Category: NewCategory(category)}, http.StatusOK)
}

//ListCategoriesResponse defines the response returned back after
//listing categories.
type ListCategoriesResponse struct {
	Categories []Category `json:"categories"`
}

func (c *CategoryHandler) list(w http.ResponseWriter, r *http.Request) {
	categories, err := c.svc.List(r.Context(), requesterID(r))
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	res := ListCategoriesResponse{Categories: make([]Category, len(categories))}
	for i, category := range categories {
		res.Categories[i] = NewCategory(category)
	}

	renderResponse(w, &res, http.StatusOK)
}

//UpdateCategoryRequest defines the request used for renaming a
//category.
type UpdateCategoryRequest struct {
	Name string `json:"name"`
}

//UpdateCategoryResponse defines the response returned back after
//renaming a category.
type UpdateCategoryResponse struct {
	Category Category `json:"category"`
}

func (c *CategoryHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	category, err := c.svc.Update(r.Context(), requesterID(r), id, internal.UpdateCategoryParams{
		Name: req.Name,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, &UpdateCategoryResponse{Category: NewCategory(category)}, http.StatusOK)
}

func (c *CategoryHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if err := c.svc.Delete(r.Context(), requesterID(r), id); err != nil {
		renderErrorResponse(r.Context(), w, "delete failed", err)
		return
	}

	renderResponse(w, struct{}{}, http.StatusOK)
}
