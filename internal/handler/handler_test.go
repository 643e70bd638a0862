package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/connector/sqlite"
	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
	"github.com/filmvault/filmvault/internal/store"
)

// testEnv holds shared state for handler integration tests.
type testEnv struct {
	store   *store.Store
	catalog *service.Catalog
	router  chi.Router
}

// newTestEnv creates a fresh catalogue on in-memory SQLite and a Chi router
// with the catalogue and procedure routes mounted.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	conn := sqlite.New()
	if err := conn.Connect(connector.ConnectionConfig{Driver: "sqlite", DSN: ":memory:"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	st := store.New(conn, nil)
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	catalog := service.NewCatalog(st, service.Options{})
	procs := service.NewProcedureService(st, service.ProcedureNames{}, nil, nil)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		NewCatalogHandler(catalog, 0, nil).Routes(r)
		NewProcHandler(procs, nil).Routes(r)
	})
	r.Get("/openapi.json", NewOpenAPIHandler("", "test").ServeSpec)

	return &testEnv{
		store:   st,
		catalog: catalog,
		router:  r,
	}
}

// seedMovie creates a movie through the service layer and returns it.
func (e *testEnv) seedMovie(t *testing.T, title, imdb string) *model.Movie {
	t.Helper()
	m, err := e.catalog.Movies.Create(context.Background(), model.MovieCreate{
		Title: title, ReleaseYear: 2001, Duration: 100, IMDbCode: imdb,
	})
	if err != nil {
		t.Fatalf("seedMovie: %v", err)
	}
	return m
}

func (e *testEnv) seedActor(t *testing.T, name, lastName, imdb string) *model.Actor {
	t.Helper()
	a, err := e.catalog.Actors.Create(context.Background(), model.ActorCreate{
		Name: name, LastName: lastName, IMDbCode: imdb,
	})
	if err != nil {
		t.Fatalf("seedActor: %v", err)
	}
	return a
}

func (e *testEnv) seedDirector(t *testing.T, first, last, imdb string) *model.Director {
	t.Helper()
	d, err := e.catalog.Directors.Create(context.Background(), model.DirectorCreate{
		FirstName: first, LastName: last, IMDbCode: imdb,
	})
	if err != nil {
		t.Fatalf("seedDirector: %v", err)
	}
	return d
}

// do executes an HTTP request against the test router and returns the recorder.
func (e *testEnv) do(t *testing.T, method, path string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func toJSON(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	if err := json.NewEncoder(buf).Encode(v); err != nil {
		t.Fatalf("toJSON: %v", err)
	}
	return buf
}

func assertStatus(t *testing.T, rr *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rr.Code != want {
		t.Errorf("status = %d, want %d; body = %s", rr.Code, want, rr.Body.String())
	}
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decodeJSON: %v; body = %s", err, rr.Body.String())
	}
}

// errorBody decodes the standard error envelope.
func errorBody(t *testing.T, rr *httptest.ResponseRecorder) model.ErrorDetail {
	t.Helper()
	var resp model.ErrorResponse
	decodeJSON(t, rr, &resp)
	return resp.Error
}
