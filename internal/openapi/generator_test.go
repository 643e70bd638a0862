package openapi

import (
	"encoding/json"
	"testing"
)

// ─── MapDBType Tests ────────────────────────────────────────────────────────

func TestMapDBType(t *testing.T) {
	tests := []struct {
		dbType     string
		wantType   string
		wantFormat string
	}{
		{"INT", "integer", "int32"},
		{"INTEGER", "integer", "int64"},
		{"bigserial", "integer", "int64"},
		{"REAL", "number", "float"},
		{"DECIMAL(3,1)", "number", "double"},
		{"VARCHAR(60)", "string", ""},
		{"NVARCHAR(MAX)", "string", ""},
		{"TEXT", "string", ""},
		{"DATE", "string", "date"},
		{"int unsigned", "integer", "int32"},
		{" text ", "string", ""},
		{"geography", "string", ""},
	}
	for _, tt := range tests {
		t.Run(tt.dbType, func(t *testing.T) {
			got := MapDBType(tt.dbType)
			if got.Type != tt.wantType || got.Format != tt.wantFormat {
				t.Errorf("MapDBType(%q) = {%q, %q}, want {%q, %q}",
					tt.dbType, got.Type, got.Format, tt.wantType, tt.wantFormat)
			}
		})
	}
}

// ─── Generate Tests ─────────────────────────────────────────────────────────

func TestGenerate_Info(t *testing.T) {
	doc := Generate("http://localhost:8080", "")

	if doc.OpenAPI != "3.1.0" {
		t.Errorf("OpenAPI version = %q, want %q", doc.OpenAPI, "3.1.0")
	}
	if doc.Info == nil || doc.Info.Title != "FilmVault API" {
		t.Fatalf("Info = %+v", doc.Info)
	}
	if doc.Info.Version != "1.0.0" {
		t.Errorf("Info.Version = %q, want 1.0.0", doc.Info.Version)
	}
	if len(doc.Servers) != 1 || doc.Servers[0].URL != "http://localhost:8080" {
		t.Errorf("Servers not set correctly")
	}

	if doc := Generate("", "2.3.4"); len(doc.Servers) != 0 || doc.Info.Version != "2.3.4" {
		t.Errorf("servers = %d, version = %q", len(doc.Servers), doc.Info.Version)
	}
}

func TestGenerate_EntityPaths(t *testing.T) {
	doc := Generate("", "")

	for _, tc := range []struct {
		list, item string
	}{
		{"/api/v1/movies", "/api/v1/movies/{movieID}"},
		{"/api/v1/directors", "/api/v1/directors/{directorID}"},
		{"/api/v1/actors", "/api/v1/actors/{actorID}"},
	} {
		list := doc.Paths.Value(tc.list)
		if list == nil {
			t.Fatalf("%s missing", tc.list)
		}
		if list.Get == nil || list.Post == nil {
			t.Errorf("%s: want GET and POST", tc.list)
		}
		if list.Post.Responses.Value("201") == nil {
			t.Errorf("%s: POST should answer 201", tc.list)
		}

		item := doc.Paths.Value(tc.item)
		if item == nil {
			t.Fatalf("%s missing", tc.item)
		}
		if item.Get == nil || item.Put == nil || item.Patch == nil || item.Delete == nil {
			t.Errorf("%s: want GET, PUT, PATCH and DELETE", tc.item)
		}
		if item.Get.Responses.Value("404") == nil {
			t.Errorf("%s: GET should document 404", tc.item)
		}
	}

	for _, p := range []string{"/api/v1/directors/{directorID}/movies", "/api/v1/actors/{actorID}/movies"} {
		if item := doc.Paths.Value(p); item == nil || item.Get == nil {
			t.Errorf("%s: want GET", p)
		}
	}
	if doc.Paths.Value("/api/v1/movies/{movieID}/movies") != nil {
		t.Error("movies should not have a /movies sub-route")
	}
}

func TestGenerate_MovieRelationPaths(t *testing.T) {
	doc := Generate("", "")

	paths := map[string][]string{
		"/api/v1/movies/facts":                            {"GET"},
		"/api/v1/movies/{movieID}/facts":                  {"GET", "POST"},
		"/api/v1/movies/{movieID}/facts/{factID}":         {"DELETE"},
		"/api/v1/movies/{movieID}/actors":                 {"GET", "POST"},
		"/api/v1/movies/{movieID}/actors/{actorID}":       {"DELETE"},
		"/api/v1/movies/{movieID}/directors":              {"GET", "POST"},
		"/api/v1/movies/{movieID}/directors/{directorID}": {"DELETE"},
	}
	for path, methods := range paths {
		item := doc.Paths.Value(path)
		if item == nil {
			t.Errorf("%s missing", path)
			continue
		}
		for _, m := range methods {
			if item.GetOperation(m) == nil {
				t.Errorf("%s: %s missing", path, m)
			}
		}
	}

	del := doc.Paths.Value("/api/v1/movies/{movieID}/actors/{actorID}").Delete
	if len(del.Parameters) != 2 {
		t.Errorf("unlink params = %d, want 2", len(del.Parameters))
	}
	if del.Responses.Value("204") == nil {
		t.Error("unlink should answer 204")
	}
}

func TestGenerate_ProcedurePaths(t *testing.T) {
	doc := Generate("", "")

	maths := doc.Paths.Value("/api/v1/maths/{operator}")
	if maths == nil || maths.Get == nil {
		t.Fatal("maths path missing")
	}
	if maths.Get.Responses.Value("200") == nil || maths.Get.Responses.Value("204") == nil {
		t.Error("maths should document 200 and 204")
	}
	enum := maths.Get.Parameters[0].Value.Schema.Value.Enum
	if len(enum) != 4 {
		t.Errorf("operator enum = %v", enum)
	}

	for _, p := range []string{"/api/v1/insert_10", "/api/v1/proc_cursor", "/api/v1/link_actor_to_movie", "/api/v1/add_award"} {
		item := doc.Paths.Value(p)
		if item == nil || item.Post == nil {
			t.Errorf("%s: want POST", p)
			continue
		}
		if item.Post.Responses.Value("201") == nil {
			t.Errorf("%s: should answer 201", p)
		}
	}
	if doc.Paths.Value("/api/v1/insert_10").Post.RequestBody != nil {
		t.Error("insert_10 takes no body")
	}
	if doc.Paths.Value("/api/v1/add_award").Post.RequestBody == nil {
		t.Error("add_award needs a body")
	}
}

func TestGenerate_ComponentSchemas(t *testing.T) {
	doc := Generate("", "")

	for _, name := range []string{
		"ErrorResponse", "DeleteResponse", "ProcedureStatus", "AggregateResult",
		"ActorMovieLink", "AwardCreate", "MovieWithFacts", "CastMember",
		"Movie", "MovieCreate", "MovieUpdate",
		"Director", "DirectorCreate", "DirectorUpdate",
		"Actor", "ActorCreate", "ActorUpdate",
		"MovieFactCreate", "MovieActorCreate", "MovieDirectorCreate",
	} {
		if _, ok := doc.Components.Schemas[name]; !ok {
			t.Errorf("component %s missing", name)
		}
	}
}

func TestGenerate_CreateSchemaExcludesGeneratedColumns(t *testing.T) {
	doc := Generate("", "")

	create := doc.Components.Schemas["MovieCreate"].Value
	if _, ok := create.Properties["movie_id"]; ok {
		t.Error("movie_id should not be part of the create payload")
	}

	want := map[string]bool{"title": true, "release_year": true, "duration": true, "imdb_code": true}
	if len(create.Required) != len(want) {
		t.Fatalf("required = %v", create.Required)
	}
	for _, r := range create.Required {
		if !want[r] {
			t.Errorf("unexpected required field %q", r)
		}
	}

	title := create.Properties["title"].Value
	if title.MaxLength == nil || *title.MaxLength != 60 {
		t.Errorf("title maxLength = %v", title.MaxLength)
	}
	if title.Nullable {
		t.Error("title must not be nullable")
	}
	if !create.Properties["description"].Value.Nullable {
		t.Error("description should be nullable")
	}
	rating := create.Properties["rating"].Value
	if rating.Max == nil || *rating.Max != 10 {
		t.Errorf("rating max = %v", rating.Max)
	}

	birth := doc.Components.Schemas["ActorCreate"].Value.Properties["birth_date"].Value
	if birth.Format != "date" {
		t.Errorf("birth_date format = %q", birth.Format)
	}
}

func TestGenerate_UpdateSchemaHasNoRequiredFields(t *testing.T) {
	doc := Generate("", "")

	for _, name := range []string{"MovieUpdate", "DirectorUpdate", "ActorUpdate"} {
		s := doc.Components.Schemas[name].Value
		if len(s.Required) != 0 {
			t.Errorf("%s required = %v", name, s.Required)
		}
	}
	if _, ok := doc.Components.Schemas["DirectorUpdate"].Value.Properties["director_id"]; ok {
		t.Error("director_id should not be updatable")
	}
}

func TestGenerate_MarshalsToJSON(t *testing.T) {
	doc := Generate("http://localhost:8080", "")

	raw, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", out["openapi"])
	}
	paths, ok := out["paths"].(map[string]interface{})
	if !ok {
		t.Fatalf("paths = %T", out["paths"])
	}
	if _, ok := paths["/api/v1/movies"]; !ok {
		t.Error("/api/v1/movies missing from JSON")
	}
}
