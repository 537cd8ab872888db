package elasticsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	esv7 "github.com/elastic/go-elasticsearch/v7"
	esv7api "github.com/elastic/go-elasticsearch/v7/esapi"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.7.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskhive/taskhive-api/internal"
)

const otelName = "github.com/taskhive/taskhive-api/internal/elasticsearch"

//Task represents the repository used for searching Task records
type Task struct {
	client *esv7.Client
	index  string
}

type indexedTask struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	Recurrence  string `json:"recurrence"`
	DateDue     int64  `json:"date_due"`
	DateCreated int64  `json:"date_created"`
}

//NewTask instantiates the Task repository
func NewTask(client *esv7.Client) *Task {
	return &Task{
		client: client,
		index:  "tasks",
	}
}

//Index creates or updates a task in the index
func (t *Task) Index(ctx context.Context, task internal.Task) error {
	defer newOTELSpan(ctx, "Task.Index").End()

	body := indexedTask{
		ID:          task.ID.String(),
		UserID:      task.UserID.String(),
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority.String(),
		Status:      task.Status.String(),
		Recurrence:  task.Recurrence.String(),
		DateDue:     task.DueDate.UnixNano(),
		DateCreated: task.CreatedAt.UnixNano(),
	}

	var buf bytes.Buffer

	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.IndexRequest{
		Index:      t.index,
		Body:       &buf,
		DocumentID: body.ID,
		Refresh:    "true",
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "IndexRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "IndexRequest.Do %d", resp.StatusCode)
	}

	io.Copy(io.Discard, resp.Body) //nolint: errcheck

	return nil
}

//Delete removes a task from the index
func (t *Task) Delete(ctx context.Context, id uuid.UUID) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	req := esv7api.DeleteRequest{
		Index:      t.index,
		DocumentID: id.String(),
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.WrapErrorf(err, internal.ErrorCodeUnknown, "DeleteRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.NewErrorf(internal.ErrorCodeUnknown, "DeleteRequest.Do %d", resp.StatusCode)
	}

	io.Copy(io.Discard, resp.Body) //nolint: errcheck

	return nil
}

//Search returns the requester's tasks matching a query. The owner
//filter always applies, full-text and enum arguments widen the score.
func (t *Task) Search(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error) {
	defer newOTELSpan(ctx, "Task.Search").End()

	if args.IsZero() {
		return internal.SearchResults{}, nil
	}

	should := make([]interface{}, 0, 3)

	if args.Query != nil {
		should = append(should, map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  *args.Query,
				"fields": []string{"title", "description"},
			},
		})
	}

	if args.Priority != nil {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				"priority": args.Priority.String(),
			},
		})
	}

	if args.Status != nil {
		should = append(should, map[string]interface{}{
			"match": map[string]interface{}{
				"status": args.Status.String(),
			},
		})
	}

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": should,
				"filter": []interface{}{
					map[string]interface{}{
						"term": map[string]interface{}{
							"user_id": args.UserID.String(),
						},
					},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"id": "asc"},
		},
		"from": args.From,
		"size": args.Size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewEncoder.Encode")
	}

	req := esv7api.SearchRequest{
		Index: []string{t.index},
		Body:  &buf,
	}

	resp, err := req.Do(ctx, t.client)
	if err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "SearchRequest.Do")
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return internal.SearchResults{}, internal.NewErrorf(internal.ErrorCodeUnknown, "SearchRequest.Do %d", resp.StatusCode)
	}

	var hits struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source indexedTask `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return internal.SearchResults{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "json.NewDecoder.Decode")
	}

	res := make([]internal.Task, len(hits.Hits.Hits))

	for i, hit := range hits.Hits.Hits {
		task, err := convertIndexedTask(hit.Source)
		if err != nil {
			return internal.SearchResults{}, err
		}

		res[i] = task
	}

	return internal.SearchResults{
		Tasks: res,
		Total: hits.Hits.Total.Value,
	}, nil
}

func convertIndexedTask(src indexedTask) (internal.Task, error) {
	id, err := uuid.Parse(src.ID)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "uuid.Parse id")
	}

	userID, err := uuid.Parse(src.UserID)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "uuid.Parse user_id")
	}

	priority, err := internal.ParsePriority(src.Priority)
	if err != nil {
		return internal.Task{}, err
	}

	status, err := internal.ParseStatus(src.Status)
	if err != nil {
		return internal.Task{}, err
	}

	recurrence, err := internal.ParseRecurrence(src.Recurrence)
	if err != nil {
		return internal.Task{}, err
	}

	return internal.Task{
		ID:          id,
		UserID:      userID,
		Title:       src.Title,
		Description: src.Description,
		Priority:    priority,
		Status:      status,
		Recurrence:  recurrence,
		DueDate:     time.Unix(0, src.DateDue).UTC(),
		CreatedAt:   time.Unix(0, src.DateCreated).UTC(),
	}, nil
}

func newOTELSpan(ctx context.Context, name string) trace.Span {
	_, span := otel.Tracer(otelName).Start(ctx, name)

	span.SetAttributes(semconv.DBSystemElasticsearch)

	return span
}
