package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	applog "github.com/janisto/huma-greeter/internal/platform/logging"
	appmiddleware "github.com/janisto/huma-greeter/internal/platform/middleware"
	"github.com/janisto/huma-greeter/internal/platform/respond"
	"github.com/janisto/huma-greeter/internal/service/greeting"
)

func newTestRouter(docsPath string) chi.Router {
	router := chi.NewRouter()
	router.Use(
		appmiddleware.RequestID(),
		chimiddleware.RealIP,
		applog.RequestLogger(),
		respond.Recoverer(),
	)
	api := NewAPI(router, "test", docsPath)
	Register(api, greeting.NewGreeter())
	return router
}

func TestRegisterRoutesGreet(t *testing.T) {
	router := newTestRouter("")

	req := httptest.NewRequest(http.MethodGet, "/greet?name=Alice", nil)
	req.Header.Set(chimiddleware.RequestIDHeader, "routes-greet")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if strings.Contains(resp.Body.String(), "$schema") {
		t.Errorf("expected no $schema in body, got %s", resp.Body.String())
	}
}

func TestNewAPIServesOpenAPI(t *testing.T) {
	router := newTestRouter("/api-docs")

	req := httptest.NewRequest(http.MethodGet, "/openapi.json", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var doc struct {
		Info struct {
			Title   string `json:"title"`
			Version string `json:"version"`
		} `json:"info"`
		Paths map[string]json.RawMessage `json:"paths"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &doc); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if doc.Info.Title != Title {
		t.Errorf("expected title %q, got %q", Title, doc.Info.Title)
	}
	if doc.Info.Version != "test" {
		t.Errorf("expected version test, got %q", doc.Info.Version)
	}
	if _, ok := doc.Paths["/greet"]; !ok {
		t.Error("expected /greet in OpenAPI paths")
	}
}

func TestNewAPIServesDocs(t *testing.T) {
	router := newTestRouter("/api-docs")

	req := httptest.NewRequest(http.MethodGet, "/api-docs", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("expected text/html, got %s", ct)
	}
}

func TestNewAPIMirrorsCBORContent(t *testing.T) {
	router := chi.NewRouter()
	api := NewAPI(router, "test", "")
	Register(api, greeting.NewGreeter())

	op := api.OpenAPI().Paths["/greet"].Get
	ok := op.Responses["200"]
	if ok == nil || ok.Content["application/cbor"] == nil {
		t.Error("expected application/cbor content on 200 response")
	}
	unprocessable := op.Responses["422"]
	if unprocessable == nil || unprocessable.Content["application/problem+cbor"] == nil {
		t.Error("expected application/problem+cbor content on 422 response")
	}
}
