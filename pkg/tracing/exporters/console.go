package exporters

import (
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
)

// NewConsoleExporter returns a human-readable stdout span exporter for local
// development.
func NewConsoleExporter() (*stdouttrace.Exporter, error) {
	return stdouttrace.New(stdouttrace.WithPrettyPrint())
}
