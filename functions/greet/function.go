// Package greet exposes the greeting as an HTTP Cloud Function.
package greet

import (
	"encoding/json"
	"net/http"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

const prefix = "Hello, my name is "

func init() {
	functions.HTTP("Greet", greetHandler)
}

// Response is the success payload.
type Response struct {
	Message string `json:"message"`
}

// Problem is an RFC 9457 problem document.
type Problem struct {
	Title  string        `json:"title"`
	Status int           `json:"status"`
	Detail string        `json:"detail,omitempty"`
	Errors []ErrorDetail `json:"errors,omitempty"`
}

// ErrorDetail points at the offending input.
type ErrorDetail struct {
	Message  string `json:"message"`
	Location string `json:"location"`
}

func greetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeJSON(w, "application/problem+json", http.StatusMethodNotAllowed, Problem{
			Title:  http.StatusText(http.StatusMethodNotAllowed),
			Status: http.StatusMethodNotAllowed,
			Detail: "method " + r.Method + " not allowed",
		})
		return
	}

	name, ok := lookupQuery(r.URL.RawQuery, "name")
	if !ok {
		writeJSON(w, "application/problem+json", http.StatusUnprocessableEntity, Problem{
			Title:  http.StatusText(http.StatusUnprocessableEntity),
			Status: http.StatusUnprocessableEntity,
			Detail: "validation failed",
			Errors: []ErrorDetail{{Message: "required query parameter is missing", Location: "query.name"}},
		})
		return
	}

	writeJSON(w, "application/json", http.StatusOK, Response{Message: prefix + name})
}

func writeJSON(w http.ResponseWriter, contentType string, status int, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
