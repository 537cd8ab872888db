package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskhive/taskhive-api/internal"
)

const dateLayout = "2006-01-02"

//TaskService defines the operations the Task handler exposes over HTTP
type TaskService interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Task(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	List(ctx context.Context, userID uuid.UUID, filters internal.TaskFilters) ([]internal.Task, error)
	By(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error)
	Update(ctx context.Context, userID, id uuid.UUID, params internal.UpdateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ToggleComplete(ctx context.Context, userID, id uuid.UUID) (internal.Task, error)
	History(ctx context.Context, userID, taskID uuid.UUID) ([]internal.TaskHistory, error)
}

//TaskHandler exposes Task operations, every route resolves the
//requester identity first and passes it explicitly downstream.
type TaskHandler struct {
	svc TaskService
}

//NewTaskHandler instantiates the handler
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

//Register connects the handlers to the router
func (t *TaskHandler) Register(r chi.Router) {
	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", t.list)
		r.Post("/", t.create)
		r.Post("/search", t.search)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", t.task)
			r.Put("/", t.update)
			r.Delete("/", t.delete)
			r.Post("/toggle", t.toggle)
			r.Get("/history", t.history)
		})
	})
}

// Task is an activity that needs to be completed by a due date.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueDate     string     `json:"due_date"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	Recurrence  string     `json:"recurrence"`
	NextDueDate *string    `json:"next_due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CategoryID  *string    `json:"category_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

//NewTask converts the domain type to its wire representation
func NewTask(task internal.Task) Task {
	res := Task{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate.Format(dateLayout),
		Priority:    task.Priority.String(),
		Status:      task.Status.String(),
		Recurrence:  task.Recurrence.String(),
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
	}

	if task.NextDueDate != nil {
		next := task.NextDueDate.Format(dateLayout)
		res.NextDueDate = &next
	}

	if task.CategoryID != nil {
		id := task.CategoryID.String()
		res.CategoryID = &id
	}

	return res
}

//TaskHistory is one immutable entry in a Task's audit trail
type TaskHistory struct {
	ID         string    `json:"id"`
	TaskID     string    `json:"task_id"`
	Action     string    `json:"action"`
	Details    string    `json:"details"`
	ChangeTime time.Time `json:"change_time"`
}

//CreateTaskRequest defines the request used for creating tasks
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	Priority    string  `json:"priority"`
	Recurrence  string  `json:"recurrence"`
	CategoryID  *string `json:"category_id"`
}

//CreateTaskResponse defines the response returned back after creating
//tasks.
type CreateTaskResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	params, err := newCreateParams(requesterID(r), req)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid request", err)
		return
	}

	task, err := t.svc.Create(r.Context(), params)
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, &CreateTaskResponse{Task: NewTask(task)}, http.StatusCreated)
}

func newCreateParams(userID uuid.UUID, req CreateTaskRequest) (internal.CreateTaskParams, error) {
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return internal.CreateTaskParams{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "parse due_date")
	}

	priority, err := internal.ParsePriority(req.Priority)
	if err != nil {
		return internal.CreateTaskParams{}, err
	}

	recurrence, err := internal.ParseRecurrence(req.Recurrence)
	if err != nil {
		return internal.CreateTaskParams{}, err
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return internal.CreateTaskParams{}, err
	}

	return internal.CreateTaskParams{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    priority,
		Recurrence:  recurrence,
		CategoryID:  categoryID,
	}, nil
}

//ReadTaskResponse defines the response returned back after reading one
//task.
type ReadTaskResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) task(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	task, err := t.svc.Task(r.Context(), requesterID(r), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "find failed", err)
		return
	}

	renderResponse(w, &ReadTaskResponse{Task: NewTask(task)}, http.StatusOK)
}

//ListTasksResponse defines the response returned back after listing
//tasks.
type ListTasksResponse struct {
	Tasks []Task `json:"tasks"`
}

func (t *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	filters, err := newTaskFilters(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid filters", err)
		return
	}

	tasks, err := t.svc.List(r.Context(), requesterID(r), filters)
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	res := ListTasksResponse{Tasks: make([]Task, len(tasks))}
	for i, task := range tasks {
		res.Tasks[i] = NewTask(task)
	}

	renderResponse(w, &res, http.StatusOK)
}

func newTaskFilters(r *http.Request) (internal.TaskFilters, error) {
	var filters internal.TaskFilters

	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status, err := internal.ParseStatus(v)
		if err != nil {
			return internal.TaskFilters{}, err
		}
		filters.Status = &status
	}

	if v := q.Get("priority"); v != "" {
		priority, err := internal.ParsePriority(v)
		if err != nil {
			return internal.TaskFilters{}, err
		}
		filters.Priority = &priority
	}

	if v := q.Get("due_before"); v != "" {
		dueBefore, err := time.Parse(dateLayout, v)
		if err != nil {
			return internal.TaskFilters{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "parse due_before")
		}
		filters.DueBefore = &dueBefore
	}

	if v := q.Get("category"); v != "" {
		filters.Category = &v
	}

	orderBy, err := internal.ParseOrderBy(q.Get("order_by"))
	if err != nil {
		return internal.TaskFilters{}, err
	}
	filters.OrderBy = orderBy

	return filters, nil
}

//SearchTasksRequest defines the request used for full-text searching
//tasks.
type SearchTasksRequest struct {
	Query    *string `json:"query"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
	From     int64   `json:"from"`
	Size     int64   `json:"size"`
}

//SearchTasksResponse defines the response returned back after
//searching tasks.
type SearchTasksResponse struct {
	Tasks []Task `json:"tasks"`
	Total int64  `json:"total"`
}

func (t *TaskHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	args := internal.SearchParams{
		UserID: requesterID(r),
		Query:  req.Query,
		From:   req.From,
		Size:   req.Size,
	}

	if args.Size == 0 {
		args.Size = 10
	}

	if req.Priority != nil {
		priority, err := internal.ParsePriority(*req.Priority)
		if err != nil {
			renderErrorResponse(r.Context(), w, "invalid request", err)
			return
		}
		args.Priority = &priority
	}

	if req.Status != nil {
		status, err := internal.ParseStatus(*req.Status)
		if err != nil {
			renderErrorResponse(r.Context(), w, "invalid request", err)
			return
		}
		args.Status = &status
	}

	results, err := t.svc.By(r.Context(), args)
	if err != nil {
		renderErrorResponse(r.Context(), w, "search failed", err)
		return
	}

	res := SearchTasksResponse{
		Tasks: make([]Task, len(results.Tasks)),
		Total: results.Total,
	}
	for i, task := range results.Tasks {
		res.Tasks[i] = NewTask(task)
	}

	renderResponse(w, &res, http.StatusOK)
}

//UpdateTaskRequest defines the request used for updating a task, all
//fields are overwritten.
type UpdateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	Priority    string  `json:"priority"`
	Status      string  `json:"status"`
	Recurrence  string  `json:"recurrence"`
	CategoryID  *string `json:"category_id"`
}

//UpdateTaskResponse defines the response returned back after updating
//a task.
type UpdateTaskResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	params, err := newUpdateParams(req)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid request", err)
		return
	}

	task, err := t.svc.Update(r.Context(), requesterID(r), id, params)
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, &UpdateTaskResponse{Task: NewTask(task)}, http.StatusOK)
}

func newUpdateParams(req UpdateTaskRequest) (internal.UpdateTaskParams, error) {
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return internal.UpdateTaskParams{}, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "parse due_date")
	}

	priority, err := internal.ParsePriority(req.Priority)
	if err != nil {
		return internal.UpdateTaskParams{}, err
	}

	status, err := internal.ParseStatus(req.Status)
	if err != nil {
		return internal.UpdateTaskParams{}, err
	}

	recurrence, err := internal.ParseRecurrence(req.Recurrence)
	if err != nil {
		return internal.UpdateTaskParams{}, err
	}

	categoryID, err := parseOptionalUUID(req.CategoryID)
	if err != nil {
		return internal.UpdateTaskParams{}, err
	}

	return internal.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     dueDate,
		Priority:    priority,
		Status:      status,
		Recurrence:  recurrence,
		CategoryID:  categoryID,
	}, nil
}

func (t *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if err := t.svc.Delete(r.Context(), requesterID(r), id); err != nil {
		renderErrorResponse(r.Context(), w, "delete failed", err)
		return
	}

	renderResponse(w, struct{}{}, http.StatusOK)
}

//ToggleTaskResponse defines the response returned back after toggling
//a task's completion.
type ToggleTaskResponse struct {
	Task Task `json:"task"`
}

func (t *TaskHandler) toggle(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	task, err := t.svc.ToggleComplete(r.Context(), requesterID(r), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "toggle failed", err)
		return
	}

	renderResponse(w, &ToggleTaskResponse{Task: NewTask(task)}, http.StatusOK)
}

//ListTaskHistoryResponse defines the response returned back after
//reading a task's audit trail.
type ListTaskHistoryResponse struct {
	History []TaskHistory `json:"history"`
}

func (t *TaskHandler) history(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	entries, err := t.svc.History(r.Context(), requesterID(r), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "history failed", err)
		return
	}

	res := ListTaskHistoryResponse{History: make([]TaskHistory, len(entries))}
	for i, entry := range entries {
		res.History[i] = TaskHistory{
			ID:         entry.ID.String(),
			TaskID:     entry.TaskID.String(),
			Action:     entry.Action.String(),
			Details:    entry.Details,
			ChangeTime: entry.ChangeTime,
		}
	}

	renderResponse(w, &res, http.StatusOK)
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "uuid.Parse")
	}
	return id, nil
}

func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "uuid.Parse")
	}

	return &id, nil
}
