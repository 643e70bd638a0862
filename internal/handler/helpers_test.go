package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/filmvault/filmvault/internal/server/middleware"
	"github.com/filmvault/filmvault/internal/service"
)

// ---------------------------------------------------------------------------
// queryInt tests
// ---------------------------------------------------------------------------

func TestQueryInt(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		key        string
		defaultVal int
		want       int
		wantErr    bool
	}{
		{"returns default for missing param", "/test", "limit", 25, 25, false},
		{"parses integer param", "/test?limit=100", "limit", 25, 100, false},
		{"rejects non-integer", "/test?limit=abc", "limit", 25, 0, true},
		{"parses zero", "/test?skip=0", "skip", 10, 0, false},
		{"passes negative through", "/test?skip=-5", "skip", 0, -5, false},
		{"returns default for empty value", "/test?limit=", "limit", 25, 25, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got, err := queryInt(r, tt.key, tt.defaultVal)
			if (err != nil) != tt.wantErr {
				t.Fatalf("queryInt(%q) err = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("queryInt(%q, %d) = %d, want %d", tt.key, tt.defaultVal, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// queryBool tests
// ---------------------------------------------------------------------------

func TestQueryBool(t *testing.T) {
	tests := []struct {
		name string
		url  string
		key  string
		want bool
	}{
		{"true for 'true'", "/test?include_count=true", "include_count", true},
		{"true for '1'", "/test?include_count=1", "include_count", true},
		{"false for 'false'", "/test?include_count=false", "include_count", false},
		{"false for missing", "/test", "include_count", false},
		{"false for '0'", "/test?include_count=0", "include_count", false},
		{"false for empty", "/test?include_count=", "include_count", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.url, nil)
			got := queryBool(r, tt.key)
			if got != tt.want {
				t.Errorf("queryBool(%q) = %v, want %v", tt.key, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// page tests
// ---------------------------------------------------------------------------

func TestPage(t *testing.T) {
	tests := []struct {
		url       string
		wantSkip  int
		wantLimit int
		wantOK    bool
	}{
		{"/movies", 0, 100, true},
		{"/movies?skip=5&limit=10", 5, 10, true},
		{"/movies?offset=7", 7, 100, true},
		{"/movies?skip=2&offset=7", 2, 100, true},
		{"/movies?limit=0", 0, 0, true},
		{"/movies?skip=x", 0, 0, false},
		{"/movies?limit=1.5", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", tt.url, nil)
			skip, limit, ok := page(w, r, 100)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				if w.Code != http.StatusBadRequest {
					t.Errorf("status = %d, want 400", w.Code)
				}
				return
			}
			if skip != tt.wantSkip || limit != tt.wantLimit {
				t.Errorf("page = (%d, %d), want (%d, %d)", skip, limit, tt.wantSkip, tt.wantLimit)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// writeError tests
// ---------------------------------------------------------------------------

func TestWriteError(t *testing.T) {
	t.Run("writes JSON error response", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeError(w, http.StatusBadRequest, "Invalid input")

		if w.Code != http.StatusBadRequest {
			t.Errorf("expected status 400, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body := w.Body.String()
		if !strings.Contains(body, `"code":400`) {
			t.Errorf("expected code 400 in body: %s", body)
		}
		if !strings.Contains(body, `"message":"Invalid input"`) {
			t.Errorf("expected message in body: %s", body)
		}
		if strings.Contains(body, `"context"`) {
			t.Errorf("context should be omitted: %s", body)
		}
	})
}

// ---------------------------------------------------------------------------
// writeJSON tests
// ---------------------------------------------------------------------------

func TestWriteJSON(t *testing.T) {
	t.Run("writes JSON with correct content type", func(t *testing.T) {
		w := httptest.NewRecorder()
		writeJSON(w, http.StatusOK, map[string]string{"hello": "world"})

		if w.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", w.Code)
		}
		if ct := w.Header().Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %s", ct)
		}
		body := w.Body.String()
		if !strings.Contains(body, `"hello":"world"`) {
			t.Errorf("expected JSON body, got: %s", body)
		}
	})
}

// ---------------------------------------------------------------------------
// writeServiceError tests
// ---------------------------------------------------------------------------

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", &service.NotFoundError{Kind: service.KindMovie, ID: 4}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("lookup: %w", &service.NotFoundError{Kind: service.KindActor, ID: 1}), http.StatusNotFound},
		{"already exists", &service.AlreadyExistsError{Kind: service.KindMovie, Key: "imdb_code tt1"}, http.StatusConflict},
		{"validation", &service.ValidationError{Fields: map[string]string{"title": "is required"}}, http.StatusBadRequest},
		{"invalid operator", &service.InvalidOperatorError{Value: "x", Allowed: service.AllowedOperators}, http.StatusBadRequest},
		{"procedure", &service.ProcedureError{Procedure: "sp_x", Err: errors.New("boom")}, http.StatusInternalServerError},
		{"unique violation text", errors.New("UNIQUE constraint failed: movies.imdb_code"), http.StatusConflict},
		{"canceled", context.Canceled, http.StatusServiceUnavailable},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest("GET", "/api/v1/movies/4", nil)
			writeServiceError(w, r, slog.New(slog.NewTextHandler(io.Discard, nil)), tt.err)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d; body = %s", w.Code, tt.status, w.Body.String())
			}
		})
	}
}

func TestWriteServiceErrorUsesRequestLogger(t *testing.T) {
	var scoped, fallback bytes.Buffer
	reqLogger := slog.New(slog.NewTextHandler(&scoped, nil)).With("request_id", "trace-9")

	r := httptest.NewRequest("GET", "/api/v1/movies/4", nil)
	r = r.WithContext(middleware.WithLogger(r.Context(), reqLogger))
	w := httptest.NewRecorder()
	writeServiceError(w, r, slog.New(slog.NewTextHandler(&fallback, nil)), errors.New("disk on fire"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(scoped.String(), "request_id=trace-9") || !strings.Contains(scoped.String(), "disk on fire") {
		t.Errorf("request logger output = %q", scoped.String())
	}
	if fallback.Len() != 0 {
		t.Errorf("fallback logger should stay silent, got %q", fallback.String())
	}
}

// ---------------------------------------------------------------------------
// classifyDBError tests
// ---------------------------------------------------------------------------

func TestClassifyDBError(t *testing.T) {
	tests := []struct {
		msg  string
		want int
	}{
		{"Error 1062 (23000): Duplicate entry 'tt1' for key 'imdb_code'", http.StatusConflict},
		{`ERROR: duplicate key value violates unique constraint "movies_imdb_code_key"`, http.StatusConflict},
		{"Violation of UNIQUE KEY constraint 'UQ_movies'", http.StatusConflict},
		{`null value in column "title" violates not-null constraint`, http.StatusBadRequest},
		{"NOT NULL constraint failed: movies.title", http.StatusBadRequest},
		{"FOREIGN KEY constraint failed", http.StatusBadRequest},
		{"CHECK constraint failed: rating", http.StatusBadRequest},
		{"context deadline exceeded", http.StatusServiceUnavailable},
		{"connection refused", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			code, msg := classifyDBError(errors.New(tt.msg), "Request failed")
			if code != tt.want {
				t.Errorf("code = %d, want %d", code, tt.want)
			}
			if !strings.HasPrefix(msg, "Request failed: ") {
				t.Errorf("msg = %q", msg)
			}
		})
	}
}
