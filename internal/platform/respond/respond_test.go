package respond

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	applog "github.com/janisto/huma-greeter/internal/platform/logging"
)

func TestNotFoundHandlerReturnsProblemDetails(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json, got %q", ct)
	}
	if vary := resp.Header().Get("Vary"); vary != "Accept" {
		t.Fatalf("expected Vary: Accept, got %q", vary)
	}

	var p problem
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if p.Status != http.StatusNotFound || p.Title != "Not Found" || p.Detail != msgNotFound {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestNotFoundHandlerReturnsCBORWhenAccepted(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	req.Header.Set("Accept", "application/cbor")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+cbor" {
		t.Fatalf("expected application/problem+cbor, got %q", ct)
	}
	var p huma.ErrorModel
	if err := cbor.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal CBOR problem: %v", err)
	}
	if p.Status != http.StatusNotFound || p.Title != "Not Found" {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestNotFoundHandlerPrefersSpecificTypeOnEqualQuality(t *testing.T) {
	router := chi.NewRouter()
	router.NotFound(NotFoundHandler())

	tests := []struct {
		accept string
		want   string
	}{
		{"application/json;q=0.8, application/problem+cbor;q=0.8", contentTypeProblemCBOR},
		{"application/cbor;q=0.8, application/problem+json;q=0.8", contentTypeProblemJSON},
	}
	for _, tt := range tests {
		t.Run(tt.accept, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/nope", nil)
			req.Header.Set("Accept", tt.accept)
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if ct := resp.Header().Get("Content-Type"); ct != tt.want {
				t.Fatalf("expected %s, got %q", tt.want, ct)
			}
		})
	}
}

func TestMethodNotAllowedHandlerReturnsProblemDetails(t *testing.T) {
	router := chi.NewRouter()
	router.MethodNotAllowed(MethodNotAllowedHandler())
	router.Get("/greet", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/greet", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) || strings.Contains(allow, http.MethodPost) {
		t.Fatalf("expected Allow to list GET only, got %q", allow)
	}

	var p problem
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if p.Title != "Method Not Allowed" || !strings.Contains(p.Detail, http.MethodPost) {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestAllowedMethodsNilRouteContext(t *testing.T) {
	if got := allowedMethods(httptest.NewRequest(http.MethodGet, "/", nil)); got != nil {
		t.Fatalf("expected nil without route context, got %v", got)
	}
}

func TestRecovererReturnsProblemDetails(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recoverer())
	api := humachi.New(router, huma.DefaultConfig("Test", "test"))
	huma.Get(api, "/panic", func(context.Context, *struct{}) (*struct{}, error) {
		panic("boom")
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	var p huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if p.Title != "Internal Server Error" || p.Detail != msgInternalServerErr {
		t.Fatalf("unexpected problem: %+v", p)
	}
}

func TestRecovererRePanicsOnErrAbortHandler(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recoverer())
	router.Get("/abort", func(http.ResponseWriter, *http.Request) {
		panic(http.ErrAbortHandler)
	})

	defer func() {
		err, ok := recover().(error)
		if !ok || !errors.Is(err, http.ErrAbortHandler) {
			t.Fatalf("expected http.ErrAbortHandler to propagate, got %v", err)
		}
	}()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	t.Fatal("expected panic to propagate")
}

func TestRecovererSkipsWriteWhenHeaderAlreadyWritten(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Recoverer())
	router.Get("/partial", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("partial response"))
		panic(errors.New("late failure"))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/partial", nil))

	if resp.Code != http.StatusOK || resp.Body.String() != "partial response" {
		t.Fatalf("expected original response to be preserved, got %d %q", resp.Code, resp.Body.String())
	}
}

func TestWriteProblemIncludesErrorDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/greet", nil)
	resp := httptest.NewRecorder()

	WriteProblem(resp, req, http.StatusUnprocessableEntity, "validation failed",
		&huma.ErrorDetail{Location: "query.name", Message: "required query parameter is missing"})

	var p problem
	if err := json.Unmarshal(resp.Body.Bytes(), &p); err != nil {
		t.Fatalf("failed to unmarshal problem: %v", err)
	}
	if len(p.Errors) != 1 || p.Errors[0].Location != "query.name" {
		t.Fatalf("expected one query.name error, got %+v", p.Errors)
	}
}

func TestWriteProblemNoHTMLEscaping(t *testing.T) {
	resp := httptest.NewRecorder()
	WriteProblem(resp, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusBadRequest, "<bad> & worse")

	if !strings.Contains(resp.Body.String(), "<bad> & worse") {
		t.Fatalf("expected unescaped detail, got %s", resp.Body.String())
	}
}

func TestEnsureVary(t *testing.T) {
	h := http.Header{}
	h.Add("Vary", "Origin, accept")
	ensureVary(h, "Accept", "", "Accept-Encoding", "Accept-Encoding")

	got := h.Values("Vary")
	if len(got) != 2 || got[1] != "Accept-Encoding" {
		t.Fatalf("unexpected Vary values: %v", got)
	}
}

func TestResponseWriterTracksHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec}
	if rw.wroteHeader {
		t.Fatal("expected wroteHeader false initially")
	}
	if _, err := rw.Write([]byte("x")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rw.wroteHeader {
		t.Fatal("expected wroteHeader true after Write")
	}
	if rw.Unwrap() != rec {
		t.Fatal("expected Unwrap to return the underlying writer")
	}
}

func TestInstallErrorLoggingLogsOperationErrors(t *testing.T) {
	InstallErrorLogging()
	InstallErrorLogging()

	core, recorded := observer.New(zapcore.InfoLevel)
	router := chi.NewRouter()
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(applog.WithLogger(r.Context(), zap.New(core))))
		})
	})
	api := humachi.New(router, huma.DefaultConfig("Test", "test"))

	type countInput struct {
		Count int `query:"count" minimum:"1"`
	}
	huma.Get(api, "/count", func(context.Context, *countInput) (*struct{}, error) {
		return nil, nil
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/count?count=0", nil))

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}
	entries := recorded.FilterLevelExact(zapcore.WarnLevel).All()
	if len(entries) != 1 {
		t.Fatalf("expected exactly one warning, got %d", len(entries))
	}
	if entries[0].ContextMap()["status"] != int64(http.StatusUnprocessableEntity) {
		t.Fatalf("expected status field 422, got %+v", entries[0].ContextMap())
	}
}
