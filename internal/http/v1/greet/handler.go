package greet

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-greeter/internal/platform/logging"
	greetingsvc "github.com/janisto/huma-greeter/internal/service/greeting"
)

const path = "/greet"

// Register wires the greet route into the provided API router.
func Register(api huma.API, svc greetingsvc.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "greet",
		Method:      http.MethodGet,
		Path:        path,
		Summary:     "Introduce a name",
		Description: `Returns "Hello, my name is {name}". The name is echoed verbatim.`,
		Tags:        []string{"Greeting"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *GetInput) (*GetOutput, error) {
		g, err := svc.Greet(ctx, input.Name)
		if err != nil {
			applog.LogError(ctx, "greet failed", err)
			return nil, huma.Error500InternalServerError("internal server error")
		}
		applog.LogInfo(ctx, "greet", zap.String("path", path), zap.Int("nameLength", len(input.Name)))
		return &GetOutput{Body: Data{Message: g.Message}}, nil
	})

	markQueryRequired(api.OpenAPI(), path, "name")
}

// markQueryRequired flags a query parameter as required in the OpenAPI
// document only; presence is enforced by GetInput.Resolve.
func markQueryRequired(oapi *huma.OpenAPI, path, name string) {
	item, ok := oapi.Paths[path]
	if !ok || item.Get == nil {
		return
	}
	for _, p := range item.Get.Parameters {
		if p.In == "query" && p.Name == name {
			p.Required = true
		}
	}
}
