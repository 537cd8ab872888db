package rest

import (
	"encoding/json"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/ghodss/yaml"
	"github.com/go-chi/chi/v5"
)

//NewOpenAPI3 instantiates the OpenAPI specification for this service
func NewOpenAPI3() openapi3.T {
	swagger := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "Task Tracker API",
			Description: "Multi-user task tracking REST API with categories, recurrence, due-soon notifications and per-task audit history",
			Version:     "0.1.0",
			Contact: &openapi3.Contact{
				URL: "https://github.com/taskhive/taskhive-api",
			},
		},
		Servers: openapi3.Servers{
			&openapi3.Server{
				Description: "Local development",
				URL:         "http://0.0.0.0:9234",
			},
		},
	}

	swagger.Components = &openapi3.Components{}

	swagger.Components.Schemas = openapi3.Schemas{
		"Task": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("title", openapi3.NewStringSchema()).
				WithProperty("description", openapi3.NewStringSchema()).
				WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date")).
				WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
				WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "in_progress", "completed", "cancelled")).
				WithProperty("recurrence", openapi3.NewStringSchema().WithEnum("none", "daily", "weekly", "monthly")).
				WithProperty("next_due_date", openapi3.NewStringSchema().WithFormat("date").WithNullable()).
				WithProperty("completed_at", openapi3.NewStringSchema().WithFormat("date-time").WithNullable()).
				WithProperty("category_id", openapi3.NewUUIDSchema().WithNullable()).
				WithProperty("created_at", openapi3.NewStringSchema().WithFormat("date-time"))),
		"TaskHistory": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("task_id", openapi3.NewUUIDSchema()).
				WithProperty("action", openapi3.NewStringSchema().WithEnum("created", "updated", "deleted", "status_changed")).
				WithProperty("details", openapi3.NewStringSchema()).
				WithProperty("change_time", openapi3.NewStringSchema().WithFormat("date-time"))),
		"Category": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("name", openapi3.NewStringSchema())),
		"Notification": openapi3.NewSchemaRef("",
			openapi3.NewObjectSchema().
				WithProperty("id", openapi3.NewUUIDSchema()).
				WithProperty("task_id", openapi3.NewUUIDSchema()).
				WithProperty("message", openapi3.NewStringSchema()).
				WithProperty("read", openapi3.NewBoolSchema()).
				WithProperty("created_at", openapi3.NewStringSchema().WithFormat("date-time"))),
	}

	swagger.Components.RequestBodies = openapi3.RequestBodies{
		"CreateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating a task").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(255)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date")).
					WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
					WithProperty("recurrence", openapi3.NewStringSchema().WithEnum("none", "daily", "weekly", "monthly")).
					WithProperty("category_id", openapi3.NewUUIDSchema().WithNullable())),
		},
		"UpdateTaskRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for updating a task, all fields are overwritten").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("title", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(255)).
					WithProperty("description", openapi3.NewStringSchema()).
					WithProperty("due_date", openapi3.NewStringSchema().WithFormat("date")).
					WithProperty("priority", openapi3.NewStringSchema().WithEnum("low", "medium", "high")).
					WithProperty("status", openapi3.NewStringSchema().WithEnum("pending", "in_progress", "completed", "cancelled")).
					WithProperty("recurrence", openapi3.NewStringSchema().WithEnum("none", "daily", "weekly", "monthly")).
					WithProperty("category_id", openapi3.NewUUIDSchema().WithNullable())),
		},
		"SearchTasksRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for full-text searching tasks").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("query", openapi3.NewStringSchema().WithNullable()).
					WithProperty("priority", openapi3.NewStringSchema().WithNullable()).
					WithProperty("status", openapi3.NewStringSchema().WithNullable()).
					WithProperty("from", openapi3.NewInt64Schema()).
					WithProperty("size", openapi3.NewInt64Schema())),
		},
		"CreateCategoryRequest": &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithDescription("Request used for creating a category, the owner is the resolved requester").
				WithRequired(true).
				WithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("name", openapi3.NewStringSchema().WithMinLength(1).WithMaxLength(100))),
		},
	}

	swagger.Components.Responses = openapi3.Responses{
		"ErrorResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response when an error happened").
				WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
					WithProperty("error", openapi3.NewStringSchema()))),
		},
		"ReadTaskResponse": &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription("Response returned back after reading or mutating one task").
				WithContent(openapi3.NewContentWithJSONSchema(openapi3.NewObjectSchema().
					WithPropertyRef("task", &openapi3.SchemaRef{Ref: "#/components/schemas/Task"}))),
		},
	}

	swagger.Paths = openapi3.Paths{
		"/tasks": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTasks",
				Parameters: openapi3.Parameters{
					{Value: openapi3.NewQueryParameter("status").WithSchema(openapi3.NewStringSchema())},
					{Value: openapi3.NewQueryParameter("priority").WithSchema(openapi3.NewStringSchema())},
					{Value: openapi3.NewQueryParameter("due_before").WithSchema(openapi3.NewStringSchema().WithFormat("date"))},
					{Value: openapi3.NewQueryParameter("category").WithSchema(openapi3.NewStringSchema())},
					{Value: openapi3.NewQueryParameter("order_by").WithSchema(openapi3.NewStringSchema().WithEnum("due_date", "priority", "created_at"))},
				},
				Responses: openapi3.NewResponses(),
			},
			Post: &openapi3.Operation{
				OperationID: "CreateTask",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateTaskRequest"},
				Responses: openapi3.Responses{
					"201": &openapi3.ResponseRef{Ref: "#/components/responses/ReadTaskResponse"},
					"400": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/search": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "SearchTasks",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/SearchTasksRequest"},
				Responses:   openapi3.NewResponses(),
			},
		},
		"/tasks/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadTask",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/ReadTaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateTask",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/UpdateTaskRequest"},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/ReadTaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteTask",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
		},
		"/tasks/{id}/toggle": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "ToggleTaskCompletion",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses: openapi3.Responses{
					"200": &openapi3.ResponseRef{Ref: "#/components/responses/ReadTaskResponse"},
					"404": &openapi3.ResponseRef{Ref: "#/components/responses/ErrorResponse"},
				},
			},
		},
		"/tasks/{id}/history": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListTaskHistory",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
		},
		"/categories": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListCategories",
				Responses:   openapi3.NewResponses(),
			},
			Post: &openapi3.Operation{
				OperationID: "CreateCategory",
				RequestBody: &openapi3.RequestBodyRef{Ref: "#/components/requestBodies/CreateCategoryRequest"},
				Responses:   openapi3.NewResponses(),
			},
		},
		"/categories/{id}": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ReadCategory",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
			Put: &openapi3.Operation{
				OperationID: "UpdateCategory",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
			Delete: &openapi3.Operation{
				OperationID: "DeleteCategory",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
		},
		"/notifications": &openapi3.PathItem{
			Get: &openapi3.Operation{
				OperationID: "ListNotifications",
				Responses:   openapi3.NewResponses(),
			},
		},
		"/notifications/{id}/read": &openapi3.PathItem{
			Post: &openapi3.Operation{
				OperationID: "MarkNotificationRead",
				Parameters:  openapi3.Parameters{{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewUUIDSchema())}},
				Responses:   openapi3.NewResponses(),
			},
		},
	}

	return swagger
}

//RegisterOpenAPI connects the OpenAPI document handlers to the router
func RegisterOpenAPI(r chi.Router) {
	swagger := NewOpenAPI3()

	r.Get("/openapi3.json", func(w http.ResponseWriter, _ *http.Request) {
		renderResponse(w, &swagger, http.StatusOK)
	})

	r.Get("/openapi3.yaml", func(w http.ResponseWriter, _ *http.Request) {
		data, err := json.Marshal(&swagger)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		res, err := yaml.JSONToYAML(data)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/x-yaml")
		if _, err := w.Write(res); err != nil {
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
}
