package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/connector/sqlite"
	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
	"github.com/filmvault/filmvault/internal/store"
)

func newTestServer(t *testing.T) *MCPServer {
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
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog := service.NewCatalog(st, service.Options{Logger: logger})
	procs := service.NewProcedureService(st, service.ProcedureNames{}, nil, logger)
	return NewMCPServer(catalog, procs, st, "test", logger)
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if res == nil || len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want mcp.TextContent", res.Content[0])
	}
	return text.Text
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		val      int
		min      int
		max      int
		expected int
	}{
		{"value in range", 5, 1, 10, 5},
		{"value below min", -3, 1, 10, 1},
		{"value above max", 15, 1, 10, 10},
		{"value equals min", 1, 1, 10, 1},
		{"value equals max", 10, 1, 10, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := clamp(tt.val, tt.min, tt.max)
			if got != tt.expected {
				t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.min, tt.max, got, tt.expected)
			}
		})
	}
}

func TestAnnotations(t *testing.T) {
	if ann := readOnlyAnnotation(); ann.ReadOnlyHint == nil || !*ann.ReadOnlyHint {
		t.Error("readOnlyAnnotation should set ReadOnlyHint=true")
	}
	if ann := mutatingAnnotation(); ann.ReadOnlyHint == nil || *ann.ReadOnlyHint {
		t.Error("mutatingAnnotation should set ReadOnlyHint=false")
	}
}

func TestRegisteredTools(t *testing.T) {
	s := newTestServer(t)
	resp := s.Server().HandleMessage(context.Background(), []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	listing := string(b)

	for _, name := range []string{
		"filmvault_list_movies", "filmvault_get_movie", "filmvault_movie_cast",
		"filmvault_movie_directors", "filmvault_movie_facts", "filmvault_list_directors",
		"filmvault_director_movies", "filmvault_list_actors", "filmvault_actor_movies",
		"filmvault_create_movie", "filmvault_add_fact", "filmvault_maths",
	} {
		if !strings.Contains(listing, `"name":"`+name+`"`) {
			t.Errorf("tool %s not registered", name)
		}
	}
}

func TestCreateAndReadMovie(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	res, err := s.handleCreateMovie(ctx, callRequest("filmvault_create_movie", map[string]interface{}{
		"title":        "Heat",
		"release_year": float64(1995),
		"duration":     float64(170),
		"imdb_code":    "tt0113277",
		"rating":       8.3,
	}))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if res.IsError {
		t.Fatalf("create failed: %s", resultText(t, res))
	}
	var movie model.Movie
	if err := json.Unmarshal([]byte(resultText(t, res)), &movie); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if movie.ID == 0 || movie.Rating == nil || *movie.Rating != 8.3 || movie.Description != nil {
		t.Errorf("movie = %+v", movie)
	}

	res, _ = s.handleAddFact(ctx, callRequest("filmvault_add_fact", map[string]interface{}{
		"movie_id":  float64(movie.ID),
		"fact_text": "The bank robbery took weeks to film.",
	}))
	if res.IsError {
		t.Fatalf("add fact failed: %s", resultText(t, res))
	}

	res, _ = s.handleMovieFacts(ctx, callRequest("filmvault_movie_facts", map[string]interface{}{
		"movie_id": float64(movie.ID),
	}))
	var withFacts model.MovieWithFacts
	if err := json.Unmarshal([]byte(resultText(t, res)), &withFacts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(withFacts.Facts) != 1 {
		t.Errorf("facts = %+v", withFacts.Facts)
	}

	res, _ = s.handleListMovies(ctx, callRequest("filmvault_list_movies", nil))
	var movies []model.Movie
	if err := json.Unmarshal([]byte(resultText(t, res)), &movies); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(movies) != 1 {
		t.Errorf("movies = %+v", movies)
	}
}

func TestToolErrors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*mcp.CallToolResult, error)
		want string
	}{
		{
			"missing id",
			func() (*mcp.CallToolResult, error) {
				return s.handleGetMovie(ctx, callRequest("filmvault_get_movie", nil))
			},
			`missing required parameter "movie_id"`,
		},
		{
			"unknown movie",
			func() (*mcp.CallToolResult, error) {
				return s.handleGetMovie(ctx, callRequest("filmvault_get_movie", map[string]interface{}{"movie_id": float64(9)}))
			},
			"movie 9 not found",
		},
		{
			"unknown actor",
			func() (*mcp.CallToolResult, error) {
				return s.handleActorMovies(ctx, callRequest("filmvault_actor_movies", map[string]interface{}{"actor_id": float64(3)}))
			},
			"actor 3 not found",
		},
		{
			"invalid movie",
			func() (*mcp.CallToolResult, error) {
				return s.handleCreateMovie(ctx, callRequest("filmvault_create_movie", map[string]interface{}{
					"title": "X", "imdb_code": "tt1",
				}))
			},
			"Validation failed",
		},
		{
			"invalid operator",
			func() (*mcp.CallToolResult, error) {
				return s.handleMaths(ctx, callRequest("filmvault_maths", map[string]interface{}{"operator": "median"}))
			},
			"invalid operator",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := tt.call()
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Fatalf("expected tool error, got %s", resultText(t, res))
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("error %q does not contain %q", text, tt.want)
			}
		})
	}
}

func TestStatsResource(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	if _, err := s.catalog.Actors.Create(ctx, model.ActorCreate{Name: "Val", LastName: "Kilmer", IMDbCode: "nm0000174"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var req mcp.ReadResourceRequest
	req.Params.URI = statsURI
	contents, err := s.handleStatsResource(ctx, req)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	text := contents[0].(mcp.TextResourceContents).Text
	var counts map[string]int64
	if err := json.Unmarshal([]byte(text), &counts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if counts["actors"] != 1 || counts["movies"] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestMovieResource_BadURI(t *testing.T) {
	s := newTestServer(t)
	var req mcp.ReadResourceRequest
	req.Params.URI = "filmvault://movies/abc"
	if _, err := s.handleMovieResource(context.Background(), req); err == nil {
		t.Error("expected error for non-numeric id")
	}
}
