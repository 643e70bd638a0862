// Package openapi builds the OpenAPI 3.1 document describing the catalogue
// API.
package openapi

import (
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// BasePath is the prefix of every catalogue route.
const BasePath = "/api/v1"

// Generate returns the OpenAPI document for the catalogue API served at
// baseURL.
func Generate(baseURL, version string) *openapi3.T {
	if version == "" {
		version = "1.0.0"
	}
	doc := &openapi3.T{
		OpenAPI: "3.1.0",
		Info: &openapi3.Info{
			Title:       "FilmVault API",
			Description: "REST API over the movie catalogue: movies, directors, actors, their associations and facts, plus the catalogue's stored procedures.",
			Version:     version,
		},
	}
	if baseURL != "" {
		doc.Servers = openapi3.Servers{{URL: baseURL}}
	}

	components := openapi3.NewComponents()
	components.Schemas = openapi3.Schemas{}
	doc.Components = &components
	doc.Paths = openapi3.NewPaths()

	addSharedSchemas(doc)
	for _, res := range Catalog() {
		doc.Components.Schemas[res.Name] = fieldsToSchema(res.Fields)
		doc.Components.Schemas[res.Name+"Create"] = fieldsToCreateSchema(res.Fields)
		doc.Components.Schemas[res.Name+"Update"] = fieldsToUpdateSchema(res.Fields)
	}
	doc.Components.Schemas["MovieWithFacts"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			AllOf: openapi3.SchemaRefs{
				schemaRef("Movie"),
				{Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"facts": arrayOf(schemaRef("MovieFact")),
					},
				}},
			},
		},
	}
	doc.Components.Schemas["CastMember"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			AllOf: openapi3.SchemaRefs{
				schemaRef("Actor"),
				{Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"character_name": {Value: nullableString()},
						"billing_order":  {Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32", Nullable: true}},
					},
				}},
			},
		},
	}

	addEntityPaths(doc, "Movie", "movies", "movieID")
	addEntityPaths(doc, "Director", "directors", "directorID")
	addEntityPaths(doc, "Actor", "actors", "actorID")
	addMovieRelationPaths(doc)
	addProcedurePaths(doc)

	return doc
}

// ─── Schema Builders ────────────────────────────────────────────────────────

func addSharedSchemas(doc *openapi3.T) {
	doc.Components.Schemas["ErrorResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"code":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}},
							"message": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
							"context": &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}},
						},
					},
				},
			},
		},
	}
	doc.Components.Schemas["DeleteResponse"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"message": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
			},
		},
	}
	doc.Components.Schemas["ProcedureStatus"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"procedure": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"message":   &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
			},
		},
	}
	doc.Components.Schemas["AggregateResult"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"operation": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"result":    &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Nullable: true}},
			},
		},
	}
	doc.Components.Schemas["ActorMovieLink"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"actor_lastname", "movie_title", "character"},
			Properties: openapi3.Schemas{
				"actor_lastname": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"movie_title":    &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"character":      &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
			},
		},
	}
	doc.Components.Schemas["AwardCreate"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:     &openapi3.Types{"object"},
			Required: []string{"actor_id", "award_name", "award_year"},
			Properties: openapi3.Schemas{
				"actor_id":   &openapi3.SchemaRef{Value: openapi3.NewInt64Schema()},
				"award_name": &openapi3.SchemaRef{Value: openapi3.NewStringSchema()},
				"award_year": &openapi3.SchemaRef{Value: openapi3.NewInt32Schema()},
			},
		},
	}
}

// fieldsToSchema converts resource fields to the read schema.
func fieldsToSchema(fields []Field) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	for _, f := range fields {
		s := fieldSchema(f)
		s.ReadOnly = f.ReadOnly
		props[f.Name] = &openapi3.SchemaRef{Value: s}
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

// fieldsToCreateSchema generates the POST payload. Generated columns are
// excluded.
func fieldsToCreateSchema(fields []Field) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	var required []string
	for _, f := range fields {
		if f.ReadOnly {
			continue
		}
		props[f.Name] = &openapi3.SchemaRef{Value: fieldSchema(f)}
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
			Required:   required,
		},
	}
}

// fieldsToUpdateSchema generates the PUT/PATCH payload: every field is
// optional, and null clears the optional ones.
func fieldsToUpdateSchema(fields []Field) *openapi3.SchemaRef {
	props := openapi3.Schemas{}
	for _, f := range fields {
		if f.ReadOnly {
			continue
		}
		props[f.Name] = &openapi3.SchemaRef{Value: fieldSchema(f)}
	}
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:       &openapi3.Types{"object"},
			Properties: props,
		},
	}
}

func fieldSchema(f Field) *openapi3.Schema {
	m := MapDBType(f.DBType)
	s := &openapi3.Schema{
		Type:     &openapi3.Types{m.Type},
		Format:   m.Format,
		Nullable: !f.Required && !f.ReadOnly,
		Min:      f.Minimum,
		Max:      f.Maximum,
	}
	if f.MaxLength > 0 {
		ml := f.MaxLength
		s.MaxLength = &ml
	}
	return s
}

func nullableString() *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Nullable = true
	return s
}

func schemaRef(name string) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("#/components/schemas/"+name, nil)
}

func arrayOf(items *openapi3.SchemaRef) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: items,
		},
	}
}

func listOf(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"resource": arrayOf(schemaRef(name)),
				"meta":     metaSchema(),
			},
		},
	}
}

// ─── Path Builders ──────────────────────────────────────────────────────────

// addEntityPaths adds the collection and item routes of one resource.
func addEntityPaths(doc *openapi3.T, name, collection, idParam string) {
	tag := collection
	listPath := fmt.Sprintf("%s/%s", BasePath, collection)
	itemPath := fmt.Sprintf("%s/{%s}", listPath, idParam)
	lower := strings.ToLower(name)

	doc.Paths.Set(listPath, &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{tag},
			Summary:     fmt.Sprintf("List %s", collection),
			OperationID: "list_" + collection,
			Parameters:  pageParameters(),
			Responses:   newResponses("200", fmt.Sprintf("A page of %s", collection), listOf(name)),
		},
		Post: &openapi3.Operation{
			Tags:        []string{tag},
			Summary:     fmt.Sprintf("Create a %s", lower),
			OperationID: "create_" + lower,
			RequestBody: jsonBody(schemaRef(name + "Create")),
			Responses:   newResponses("201", fmt.Sprintf("Created %s", lower), schemaRef(name), "409"),
		},
	})

	update := func(verb string) *openapi3.Operation {
		return &openapi3.Operation{
			Tags:        []string{tag},
			Summary:     fmt.Sprintf("Update a %s", lower),
			Description: "Only the fields present in the body are changed. null clears an optional field.",
			OperationID: verb + "_" + lower,
			Parameters:  idParameters(idParam),
			RequestBody: jsonBody(schemaRef(name + "Update")),
			Responses:   newResponses("200", fmt.Sprintf("Updated %s", lower), schemaRef(name), "404", "409"),
		}
	}
	doc.Paths.Set(itemPath, &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{tag},
			Summary:     fmt.Sprintf("Get a %s", lower),
			OperationID: "get_" + lower,
			Parameters:  idParameters(idParam),
			Responses:   newResponses("200", name, schemaRef(name), "404"),
		},
		Put:   update("replace"),
		Patch: update("update"),
		Delete: &openapi3.Operation{
			Tags:        []string{tag},
			Summary:     fmt.Sprintf("Delete a %s", lower),
			OperationID: "delete_" + lower,
			Parameters:  idParameters(idParam),
			Responses:   newResponses("200", fmt.Sprintf("Deleted %s", lower), schemaRef("DeleteResponse"), "404"),
		},
	})

	if collection != "movies" {
		doc.Paths.Set(itemPath+"/movies", &openapi3.PathItem{
			Get: &openapi3.Operation{
				Tags:        []string{tag},
				Summary:     fmt.Sprintf("Movies of a %s", lower),
				OperationID: lower + "_movies",
				Parameters:  idParameters(idParam),
				Responses:   newResponses("200", "Movies", listOf("Movie"), "404"),
			},
		})
	}
}

// addMovieRelationPaths adds the fact, cast and director routes nested under
// a movie.
func addMovieRelationPaths(doc *openapi3.T) {
	movie := BasePath + "/movies/{movieID}"
	tag := []string{"movies"}

	doc.Paths.Set(BasePath+"/movies/facts", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        tag,
			Summary:     "List movies with their facts",
			OperationID: "list_movies_with_facts",
			Parameters:  pageParameters(),
			Responses:   newResponses("200", "A page of movies with facts", listOf("MovieWithFacts")),
		},
	})
	doc.Paths.Set(movie+"/facts", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Get a movie with its facts",
			OperationID: "get_movie_facts",
			Parameters:  idParameters("movieID"),
			Responses:   newResponses("200", "Movie with facts", schemaRef("MovieWithFacts"), "404"),
		},
		Post: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Add a fact to a movie",
			OperationID: "add_movie_fact",
			Parameters:  idParameters("movieID"),
			RequestBody: jsonBody(schemaRef("MovieFactCreate")),
			Responses:   newResponses("201", "Created fact", schemaRef("MovieFact"), "404"),
		},
	})
	doc.Paths.Set(movie+"/facts/{factID}", &openapi3.PathItem{
		Delete: noContent(tag, "Delete a movie fact", "delete_movie_fact", idParameters("movieID", "factID")),
	})

	doc.Paths.Set(movie+"/actors", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Cast of a movie",
			OperationID: "movie_cast",
			Parameters:  idParameters("movieID"),
			Responses:   newResponses("200", "Cast ordered by billing", listOf("CastMember"), "404"),
		},
		Post: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Cast an actor in a movie",
			OperationID: "add_movie_actor",
			Parameters:  idParameters("movieID"),
			RequestBody: jsonBody(schemaRef("MovieActorCreate")),
			Responses:   newResponses("201", "Casting", schemaRef("MovieActor"), "404", "409"),
		},
	})
	doc.Paths.Set(movie+"/actors/{actorID}", &openapi3.PathItem{
		Delete: noContent(tag, "Remove an actor from a movie", "remove_movie_actor", idParameters("movieID", "actorID")),
	})

	doc.Paths.Set(movie+"/directors", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Directors of a movie",
			OperationID: "movie_directors",
			Parameters:  idParameters("movieID"),
			Responses:   newResponses("200", "Directors", listOf("Director"), "404"),
		},
		Post: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Link a director to a movie",
			OperationID: "add_movie_director",
			Parameters:  idParameters("movieID"),
			RequestBody: jsonBody(schemaRef("MovieDirectorCreate")),
			Responses:   newResponses("201", "Link", schemaRef("MovieDirector"), "404", "409"),
		},
	})
	doc.Paths.Set(movie+"/directors/{directorID}", &openapi3.PathItem{
		Delete: noContent(tag, "Unlink a director from a movie", "remove_movie_director", idParameters("movieID", "directorID")),
	})
}

// addProcedurePaths adds the stored procedure routes.
func addProcedurePaths(doc *openapi3.T) {
	tag := []string{"procedures"}

	operator := openapi3.NewPathParameter("operator").
		WithDescription("Aggregate function, case-insensitive.").
		WithSchema(openapi3.NewStringSchema().WithEnum("SUM", "AVG", "MAX", "MIN"))
	maths := newResponses("200", "Aggregate over movie durations", schemaRef("AggregateResult"))
	noResult := "The procedure returned no row"
	maths.Set("204", &openapi3.ResponseRef{Value: &openapi3.Response{Description: &noResult}})
	doc.Paths.Set(BasePath+"/maths/{operator}", &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        tag,
			Summary:     "Aggregate movie durations",
			OperationID: "maths",
			Parameters:  openapi3.Parameters{{Value: operator}},
			Responses:   maths,
		},
	})

	simple := []struct {
		path, summary, id, body string
	}{
		{"/insert_10", "Insert ten placeholder actors", "insert_10", ""},
		{"/proc_cursor", "Randomly split movies", "proc_cursor", ""},
		{"/link_actor_to_movie", "Link an actor to a movie by last name and title", "link_actor_to_movie", "ActorMovieLink"},
		{"/add_award", "Record an award for an actor", "add_award", "AwardCreate"},
	}
	for _, p := range simple {
		op := &openapi3.Operation{
			Tags:        tag,
			Summary:     p.summary,
			OperationID: p.id,
			Responses:   newResponses("201", "Procedure status", schemaRef("ProcedureStatus")),
		}
		if p.body != "" {
			op.RequestBody = jsonBody(schemaRef(p.body))
		}
		doc.Paths.Set(BasePath+p.path, &openapi3.PathItem{Post: op})
	}
}

func noContent(tags []string, summary, id string, params openapi3.Parameters) *openapi3.Operation {
	responses := newResponses("204", summary, nil, "404")
	return &openapi3.Operation{
		Tags:        tags,
		Summary:     summary,
		OperationID: id,
		Parameters:  params,
		Responses:   responses,
	}
}

func jsonBody(schema *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{
		Value: &openapi3.RequestBody{
			Required: true,
			Content:  openapi3.NewContentWithJSONSchemaRef(schema),
		},
	}
}

// ─── Parameter Builders ─────────────────────────────────────────────────────

func idParameters(names ...string) openapi3.Parameters {
	params := make(openapi3.Parameters, 0, len(names))
	for _, n := range names {
		params = append(params, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(n).WithSchema(openapi3.NewInt64Schema()),
		})
	}
	return params
}

// pageParameters returns the query parameters of list endpoints.
func pageParameters() openapi3.Parameters {
	return openapi3.Parameters{
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("skip").
				WithDescription("Number of records to skip.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32", Default: 0}),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("offset").
				WithDescription("Alias of skip.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("limit").
				WithDescription("Maximum number of records to return.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32", Default: 100}),
		},
		&openapi3.ParameterRef{
			Value: openapi3.NewQueryParameter("include_count").
				WithDescription("Include the total record count in meta.").
				WithSchema(&openapi3.Schema{Type: &openapi3.Types{"boolean"}}),
		},
	}
}

// ─── Response Helpers ───────────────────────────────────────────────────────

// newResponses builds the success response plus 400 and 500, and any extra
// error statuses the operation can produce. A nil schema means no body.
func newResponses(statusCode, description string, schema *openapi3.SchemaRef, extra ...string) *openapi3.Responses {
	responses := openapi3.NewResponses()

	successDesc := description
	success := &openapi3.Response{Description: &successDesc}
	if schema != nil {
		success.Content = openapi3.NewContentWithJSONSchemaRef(schema)
	}
	responses.Set(statusCode, &openapi3.ResponseRef{Value: success})

	errorRef := schemaRef("ErrorResponse")
	for _, code := range append([]string{"400", "500"}, extra...) {
		desc := errorDescriptions[code]
		responses.Set(code, &openapi3.ResponseRef{
			Value: &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchemaRef(errorRef),
			},
		})
	}
	return responses
}

var errorDescriptions = map[string]string{
	"400": "Bad request",
	"404": "Not found",
	"409": "Already exists",
	"500": "Internal server error",
}

// metaSchema returns the schema for the "meta" field in list responses.
func metaSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"count": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:        &openapi3.Types{"integer"},
						Format:      "int32",
						Description: "Number of records in this page.",
					},
				},
				"total": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:        &openapi3.Types{"integer"},
						Format:      "int64",
						Description: "Total number of records, present with include_count.",
					},
				},
				"limit": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:   &openapi3.Types{"integer"},
						Format: "int32",
					},
				},
				"offset": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:   &openapi3.Types{"integer"},
						Format: "int32",
					},
				},
				"took_ms": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type:   &openapi3.Types{"number"},
						Format: "double",
					},
				},
			},
		},
	}
}
