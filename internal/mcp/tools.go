package mcp

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
)

// registerTools registers all FilmVault MCP tools on the given server.
func (s *MCPServer) registerTools(srv *server.MCPServer) {
	pageOpts := []mcp.ToolOption{
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of records to return (default 25, max 1000)"),
		),
		mcp.WithNumber("offset",
			mcp.Description("Number of records to skip for pagination"),
		),
	}
	withPage := func(opts ...mcp.ToolOption) []mcp.ToolOption {
		return append(opts, pageOpts...)
	}

	// ----- Movies -----

	srv.AddTool(
		mcp.NewTool("filmvault_list_movies", withPage(
			mcp.WithDescription(
				"List movies in the catalogue ordered by id. Returns movie_id, title, "+
					"release_year, duration, description, imdb_code and rating.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		)...),
		s.handleListMovies,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_get_movie",
			mcp.WithDescription("Get one movie by id."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("movie_id", mcp.Required(), mcp.Description("Id of the movie")),
		),
		s.handleGetMovie,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_movie_cast",
			mcp.WithDescription(
				"List the actors of a movie with their character names, in billing order.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("movie_id", mcp.Required(), mcp.Description("Id of the movie")),
		),
		s.handleMovieCast,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_movie_directors",
			mcp.WithDescription("List the directors of a movie."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("movie_id", mcp.Required(), mcp.Description("Id of the movie")),
		),
		s.handleMovieDirectors,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_movie_facts",
			mcp.WithDescription(
				"Get a movie together with its trivia facts. The facts list is empty "+
					"when the movie has none.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("movie_id", mcp.Required(), mcp.Description("Id of the movie")),
		),
		s.handleMovieFacts,
	)

	// ----- People -----

	srv.AddTool(
		mcp.NewTool("filmvault_list_directors", withPage(
			mcp.WithDescription("List directors ordered by id."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		)...),
		s.handleListDirectors,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_director_movies",
			mcp.WithDescription("List the movies a director directed."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("director_id", mcp.Required(), mcp.Description("Id of the director")),
		),
		s.handleDirectorMovies,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_list_actors", withPage(
			mcp.WithDescription("List actors ordered by id."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
		)...),
		s.handleListActors,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_actor_movies",
			mcp.WithDescription("List the movies an actor appears in."),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithNumber("actor_id", mcp.Required(), mcp.Description("Id of the actor")),
		),
		s.handleActorMovies,
	)

	// ----- Mutations -----

	srv.AddTool(
		mcp.NewTool("filmvault_create_movie",
			mcp.WithDescription(
				"Create a movie. imdb_code must be unique; creating a movie that "+
					"already exists fails.",
			),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithString("title", mcp.Required(), mcp.Description("Title, at most 60 characters")),
			mcp.WithNumber("release_year", mcp.Required(), mcp.Description("Year of release")),
			mcp.WithNumber("duration", mcp.Required(), mcp.Description("Running time in minutes")),
			mcp.WithString("imdb_code", mcp.Required(), mcp.Description("IMDb identifier, e.g. tt0078748")),
			mcp.WithString("description", mcp.Description("Short synopsis")),
			mcp.WithNumber("rating", mcp.Description("Rating between 0 and 10")),
		),
		s.handleCreateMovie,
	)

	srv.AddTool(
		mcp.NewTool("filmvault_add_fact",
			mcp.WithDescription("Attach a trivia fact to a movie."),
			mcp.WithToolAnnotation(mutatingAnnotation()),
			mcp.WithNumber("movie_id", mcp.Required(), mcp.Description("Id of the movie")),
			mcp.WithString("fact_text", mcp.Required(), mcp.Description("The fact")),
			mcp.WithString("source", mcp.Description("Where the fact comes from")),
		),
		s.handleAddFact,
	)

	// ----- Procedures -----

	srv.AddTool(
		mcp.NewTool("filmvault_maths",
			mcp.WithDescription(
				"Run an aggregate over movie durations through the database's stored "+
					"procedure. Returns the operation and its result, or a note when "+
					"there is no result.",
			),
			mcp.WithToolAnnotation(readOnlyAnnotation()),
			mcp.WithString("operator",
				mcp.Required(),
				mcp.Description("Aggregate function"),
				mcp.Enum(service.AllowedOperators...),
			),
		),
		s.handleMaths,
	)
}

func (s *MCPServer) handleListMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skip, limit := page(request)
	movies, err := s.catalog.Movies.List(ctx, skip, limit)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(movies)
}

func (s *MCPServer) handleGetMovie(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "movie_id")
	if err != nil {
		return toolError("%v", err)
	}
	movie, err := s.catalog.Movies.Get(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(movie)
}

func (s *MCPServer) handleMovieCast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "movie_id")
	if err != nil {
		return toolError("%v", err)
	}
	cast, err := s.catalog.Movies.Actors(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(cast)
}

func (s *MCPServer) handleMovieDirectors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "movie_id")
	if err != nil {
		return toolError("%v", err)
	}
	directors, err := s.catalog.Movies.Directors(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(directors)
}

func (s *MCPServer) handleMovieFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "movie_id")
	if err != nil {
		return toolError("%v", err)
	}
	movie, err := s.catalog.Movies.WithFacts(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(movie)
}

func (s *MCPServer) handleListDirectors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skip, limit := page(request)
	directors, err := s.catalog.Directors.List(ctx, skip, limit)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(directors)
}

func (s *MCPServer) handleDirectorMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "director_id")
	if err != nil {
		return toolError("%v", err)
	}
	movies, err := s.catalog.Directors.Movies(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(movies)
}

func (s *MCPServer) handleListActors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	skip, limit := page(request)
	actors, err := s.catalog.Actors.List(ctx, skip, limit)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(actors)
}

func (s *MCPServer) handleActorMovies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "actor_id")
	if err != nil {
		return toolError("%v", err)
	}
	movies, err := s.catalog.Actors.Movies(ctx, id)
	if err != nil {
		return serviceError(err)
	}
	return successJSON(movies)
}

func (s *MCPServer) handleCreateMovie(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := requireString(request, "title")
	if err != nil {
		return toolError("%v", err)
	}
	imdb, err := requireString(request, "imdb_code")
	if err != nil {
		return toolError("%v", err)
	}
	in := model.MovieCreate{
		Title:       title,
		ReleaseYear: optionalInt(request, "release_year", 0),
		Duration:    optionalInt(request, "duration", 0),
		IMDbCode:    imdb,
		Description: optionalString(request, "description"),
		Rating:      optionalFloat(request, "rating"),
	}
	movie, err := s.catalog.Movies.Create(ctx, in)
	if err != nil {
		return serviceError(err)
	}
	s.logger.Info("movie created via MCP", "movie_id", movie.ID)
	return successJSON(movie)
}

func (s *MCPServer) handleAddFact(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(request, "movie_id")
	if err != nil {
		return toolError("%v", err)
	}
	text, err := requireString(request, "fact_text")
	if err != nil {
		return toolError("%v", err)
	}
	fact, err := s.catalog.Movies.AddFact(ctx, id, model.MovieFactCreate{
		FactText: text,
		Source:   optionalString(request, "source"),
	})
	if err != nil {
		return serviceError(err)
	}
	return successJSON(fact)
}

func (s *MCPServer) handleMaths(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	op, err := requireString(request, "operator")
	if err != nil {
		return toolError("%v. Allowed: %s", err, strings.Join(service.AllowedOperators, ", "))
	}
	res, err := s.procs.MathsFunction(ctx, op)
	if err != nil {
		return serviceError(err)
	}
	if res == nil {
		return mcp.NewToolResultText("The aggregate returned no result."), nil
	}
	return successJSON(res)
}
