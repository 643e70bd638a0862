package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
)

// CatalogHandler serves the movie, director and actor resources.
type CatalogHandler struct {
	movies       *service.MovieService
	directors    *service.DirectorService
	actors       *service.ActorService
	logger       *slog.Logger
	defaultLimit int
}

// NewCatalogHandler creates a CatalogHandler. defaultLimit applies when a
// list request carries no limit parameter.
func NewCatalogHandler(catalog *service.Catalog, defaultLimit int, logger *slog.Logger) *CatalogHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultLimit == 0 {
		defaultLimit = 100
	}
	return &CatalogHandler{
		movies:       catalog.Movies,
		directors:    catalog.Directors,
		actors:       catalog.Actors,
		logger:       logger,
		defaultLimit: defaultLimit,
	}
}

// writeList writes the list envelope. total is only filled when the client
// asked for include_count.
func (h *CatalogHandler) writeList(w http.ResponseWriter, r *http.Request, start time.Time, resource interface{}, count, skip, limit int, countFn func() (int64, error)) {
	meta := &model.ResponseMeta{
		Count:  count,
		Limit:  limit,
		Offset: skip,
	}
	if queryBool(r, "include_count") && countFn != nil {
		total, err := countFn()
		if err != nil {
			writeServiceError(w, r, h.logger, err)
			return
		}
		meta.Total = &total
	}
	meta.TookMs = float64(time.Since(start).Microseconds()) / 1000.0
	writeJSON(w, http.StatusOK, model.ListResponse{Resource: resource, Meta: meta})
}

// ListMovies returns a page of movies.
// GET /api/v1/movies
func (h *CatalogHandler) ListMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	skip, limit, ok := page(w, r, h.defaultLimit)
	if !ok {
		return
	}

	movies, err := h.movies.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, movies, len(movies), skip, limit, func() (int64, error) {
		return h.movies.Count(r.Context())
	})
}

// CreateMovie creates a movie.
// POST /api/v1/movies
func (h *CatalogHandler) CreateMovie(w http.ResponseWriter, r *http.Request) {
	var in model.MovieCreate
	if !decodeBody(w, r, &in) {
		return
	}
	m, err := h.movies.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// GetMovie returns one movie.
// GET /api/v1/movies/{movieID}
func (h *CatalogHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	m, err := h.movies.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// UpdateMovie merges the fields present in the body into the movie. PUT
// and PATCH behave the same.
// PUT|PATCH /api/v1/movies/{movieID}
func (h *CatalogHandler) UpdateMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	var in model.MovieUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	m, err := h.movies.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// DeleteMovie deletes a movie with its cast, director links and facts.
// DELETE /api/v1/movies/{movieID}
func (h *CatalogHandler) DeleteMovie(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	if err := h.movies.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Movie deleted", "movie_id": id})
}

// ListMoviesWithFacts returns a page of movies with their facts.
// GET /api/v1/movies/facts
func (h *CatalogHandler) ListMoviesWithFacts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	skip, limit, ok := page(w, r, h.defaultLimit)
	if !ok {
		return
	}

	movies, err := h.movies.ListWithFacts(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, movies, len(movies), skip, limit, func() (int64, error) {
		return h.movies.Count(r.Context())
	})
}

// GetMovieFacts returns a movie with its facts.
// GET /api/v1/movies/{movieID}/facts
func (h *CatalogHandler) GetMovieFacts(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	m, err := h.movies.WithFacts(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// AddMovieFact attaches a fact to a movie.
// POST /api/v1/movies/{movieID}/facts
func (h *CatalogHandler) AddMovieFact(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	var in model.MovieFactCreate
	if !decodeBody(w, r, &in) {
		return
	}
	f, err := h.movies.AddFact(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

// DeleteMovieFact removes a fact from a movie.
// DELETE /api/v1/movies/{movieID}/facts/{factID}
func (h *CatalogHandler) DeleteMovieFact(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	factID, ok := pathID(w, r, "factID")
	if !ok {
		return
	}
	if err := h.movies.DeleteFact(r.Context(), movieID, factID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMovieActors returns the cast of a movie.
// GET /api/v1/movies/{movieID}/actors
func (h *CatalogHandler) ListMovieActors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	cast, err := h.movies.Actors(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, cast, len(cast), 0, len(cast), nil)
}

// AddMovieActor casts an actor in a movie.
// POST /api/v1/movies/{movieID}/actors
func (h *CatalogHandler) AddMovieActor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	var in model.CastingCreate
	if !decodeBody(w, r, &in) {
		return
	}
	link, err := h.movies.AddActor(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// RemoveMovieActor takes an actor off the cast.
// DELETE /api/v1/movies/{movieID}/actors/{actorID}
func (h *CatalogHandler) RemoveMovieActor(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	actorID, ok := pathID(w, r, "actorID")
	if !ok {
		return
	}
	if err := h.movies.RemoveActor(r.Context(), movieID, actorID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMovieDirectors returns the directors of a movie.
// GET /api/v1/movies/{movieID}/directors
func (h *CatalogHandler) ListMovieDirectors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	directors, err := h.movies.Directors(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, directors, len(directors), 0, len(directors), nil)
}

// AddMovieDirector links a director to a movie.
// POST /api/v1/movies/{movieID}/directors
func (h *CatalogHandler) AddMovieDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	var in model.DirectorLink
	if !decodeBody(w, r, &in) {
		return
	}
	link, err := h.movies.AddDirector(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, link)
}

// RemoveMovieDirector unlinks a director from a movie.
// DELETE /api/v1/movies/{movieID}/directors/{directorID}
func (h *CatalogHandler) RemoveMovieDirector(w http.ResponseWriter, r *http.Request) {
	movieID, ok := pathID(w, r, "movieID")
	if !ok {
		return
	}
	directorID, ok := pathID(w, r, "directorID")
	if !ok {
		return
	}
	if err := h.movies.RemoveDirector(r.Context(), movieID, directorID); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
