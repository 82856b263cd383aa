package api

import (
	_ "embed"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/testdash-io/testdash/internal/api/middleware"
)

// The API contract ships inside the binary; /api-docs serves a Swagger UI
// page pointing at the JSON rendering of it.
//
//go:embed openapi.yaml
var openAPISpec []byte

var (
	openAPIJSON     []byte
	openAPIJSONErr  error
	openAPIJSONOnce sync.Once
)

// renderOpenAPIJSON converts the embedded YAML spec to JSON once; the spec
// is immutable after build.
func renderOpenAPIJSON() ([]byte, error) {
	openAPIJSONOnce.Do(func() {
		var doc map[string]any

		if err := yaml.Unmarshal(openAPISpec, &doc); err != nil {
			openAPIJSONErr = err

			return
		}

		openAPIJSON, openAPIJSONErr = json.Marshal(doc)
	})

	return openAPIJSON, openAPIJSONErr
}

// handleOpenAPISpec serves the API contract as JSON.
// GET /api-docs/openapi.json
func (s *Server) handleOpenAPISpec(w http.ResponseWriter, r *http.Request) {
	data, err := renderOpenAPIJSON()
	if err != nil {
		s.logger.Error("Failed to render OpenAPI spec",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("error", err.Error()),
		)

		WriteErrorResponse(w, r, s.logger, InternalServerError("Failed to render OpenAPI spec"))

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		s.logger.Error("Failed to write OpenAPI spec",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
}

const docsPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>testdash API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: "/api-docs/openapi.json",
      dom_id: "#swagger-ui"
    });
  </script>
</body>
</html>
`

// handleDocsPage serves an interactive documentation page for the API.
// GET /api-docs
func (s *Server) handleDocsPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(docsPage)); err != nil {
		s.logger.Error("Failed to write docs page",
			slog.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			slog.String("error", err.Error()),
		)
	}
}
