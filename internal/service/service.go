// Package service implements the application services coordinating
// repositories, search indexing and event publishing.
package service

const otelName = "github.com/taskhive/taskhive-api/internal/service"
