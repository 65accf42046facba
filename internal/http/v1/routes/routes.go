package routes

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"

	"github.com/janisto/huma-greeter/internal/http/v1/greet"
	greetingsvc "github.com/janisto/huma-greeter/internal/service/greeting"
)

// Title is the OpenAPI title of the service.
const Title = "Greeting API"

// NewAPI mounts a Huma API on router. Responses carry only their declared
// fields (no $schema links), and every JSON media type in the OpenAPI
// document is mirrored as CBOR.
func NewAPI(router chi.Router, version, docsPath string) huma.API {
	cfg := huma.DefaultConfig(Title, version)
	cfg.DocsPath = docsPath
	cfg.CreateHooks = nil

	api := humachi.New(router, cfg)
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation, addCBORContent)
	return api
}

// Register wires all v1 routes into the provided API.
func Register(api huma.API, greeter greetingsvc.Service) {
	greet.Register(api, greeter)
}

func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = jsonContent
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if jsonContent, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = jsonContent
		}
		if problemContent, ok := resp.Content["application/problem+json"]; ok {
			resp.Content["application/problem+cbor"] = problemContent
		}
	}
}
