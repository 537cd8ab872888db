package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/taskhive/taskhive-api/internal/rest"
)

//client drives the REST API the way a frontend would, every request
//carries the requester identity header.
type client struct {
	http    *http.Client
	baseURL string
	userID  string
}

func main() {
	var baseURL, userID string

	flag.StringVar(&baseURL, "base-url", "http://127.0.0.1:9234", "REST Server base URL")
	flag.StringVar(&userID, "user-id", uuid.NewString(), "Requester identity")
	flag.Parse()

	initTracer()

	c := &client{
		http:    &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		baseURL: baseURL,
		userID:  userID,
	}

	ctx := context.Background()

	// Create
	var created rest.CreateTaskResponse

	err := c.do(ctx, http.MethodPost, "/tasks", rest.CreateTaskRequest{
		Title:      "Sleep early",
		DueDate:    time.Now().Add(24 * time.Hour).Format("2006-01-02"),
		Priority:   "low",
		Recurrence: "daily",
	}, &created)
	if err != nil {
		log.Fatalf("Couldn't create task: %s", err)
	}

	fmt.Printf("New Task\n\tID: %s\n", created.Task.ID)
	fmt.Printf("\tPriority: %s\n", created.Task.Priority)
	fmt.Printf("\tStatus: %s\n", created.Task.Status)
	fmt.Printf("\tDue: %s\n", created.Task.DueDate)

	// Toggle completion
	var toggled rest.ToggleTaskResponse

	if err := c.do(ctx, http.MethodPost, "/tasks/"+created.Task.ID+"/toggle", nil, &toggled); err != nil {
		log.Fatalf("Couldn't toggle task: %s", err)
	}

	fmt.Printf("Toggled Task\n\tStatus: %s\n", toggled.Task.Status)

	// Read
	var read rest.ReadTaskResponse

	if err := c.do(ctx, http.MethodGet, "/tasks/"+created.Task.ID, nil, &read); err != nil {
		log.Fatalf("Couldn't read task: %s", err)
	}

	fmt.Printf("Read Task\n\tStatus: %s\n", read.Task.Status)
	if read.Task.CompletedAt != nil {
		fmt.Printf("\tCompleted At: %s\n", read.Task.CompletedAt)
	}

	// History
	var history rest.ListTaskHistoryResponse

	if err := c.do(ctx, http.MethodGet, "/tasks/"+created.Task.ID+"/history", nil, &history); err != nil {
		log.Fatalf("Couldn't read history: %s", err)
	}

	fmt.Println("History")
	for _, entry := range history.History {
		fmt.Printf("\t%s: %s\n", entry.Action, entry.Details)
	}

	// Give the batch span processor time to flush.
	time.Sleep(10 * time.Second)
}

func (c *client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer

	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("json.Encode: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("http.NewRequestWithContext: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", c.userID)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var errRes rest.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errRes)

		return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, errRes.Error)
	}

	if out == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("json.Decode: %w", err)
	}

	return nil
}

//initTracer initializes OpenTelemetry tracing with Jaeger and stdout
//exporters.
func initTracer() {
	jaegerEndpoint := "http://localhost:14268/api/traces"

	jaegerExporter, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(jaegerEndpoint)))
	if err != nil {
		log.Fatalf("Couldn't initialize jaeger exporter: %s", err)
	}

	stdoutExporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		log.Fatalf("Couldn't initialize stdout exporter: %s", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(stdoutExporter),
		sdktrace.WithBatcher(jaegerExporter),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
}
