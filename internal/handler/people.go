package handler

import (
	"net/http"
	"time"

	"github.com/filmvault/filmvault/internal/model"
)

// ListDirectors returns a page of directors.
// GET /api/v1/directors
func (h *CatalogHandler) ListDirectors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	skip, limit, ok := page(w, r, h.defaultLimit)
	if !ok {
		return
	}
	directors, err := h.directors.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, directors, len(directors), skip, limit, func() (int64, error) {
		return h.directors.Count(r.Context())
	})
}

// CreateDirector creates a director.
// POST /api/v1/directors
func (h *CatalogHandler) CreateDirector(w http.ResponseWriter, r *http.Request) {
	var in model.DirectorCreate
	if !decodeBody(w, r, &in) {
		return
	}
	d, err := h.directors.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDirector returns one director.
// GET /api/v1/directors/{directorID}
func (h *CatalogHandler) GetDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "directorID")
	if !ok {
		return
	}
	d, err := h.directors.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// UpdateDirector merges the body into the director.
// PUT|PATCH /api/v1/directors/{directorID}
func (h *CatalogHandler) UpdateDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "directorID")
	if !ok {
		return
	}
	var in model.DirectorUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	d, err := h.directors.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteDirector deletes a director. Its movies are kept.
// DELETE /api/v1/directors/{directorID}
func (h *CatalogHandler) DeleteDirector(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "directorID")
	if !ok {
		return
	}
	if err := h.directors.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Director deleted", "director_id": id})
}

// ListDirectorMovies returns the movies of a director.
// GET /api/v1/directors/{directorID}/movies
func (h *CatalogHandler) ListDirectorMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "directorID")
	if !ok {
		return
	}
	movies, err := h.directors.Movies(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, movies, len(movies), 0, len(movies), nil)
}

// ListActors returns a page of actors.
// GET /api/v1/actors
func (h *CatalogHandler) ListActors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	skip, limit, ok := page(w, r, h.defaultLimit)
	if !ok {
		return
	}
	actors, err := h.actors.List(r.Context(), skip, limit)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, actors, len(actors), skip, limit, func() (int64, error) {
		return h.actors.Count(r.Context())
	})
}

// CreateActor creates an actor.
// POST /api/v1/actors
func (h *CatalogHandler) CreateActor(w http.ResponseWriter, r *http.Request) {
	var in model.ActorCreate
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.actors.Create(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// GetActor returns one actor.
// GET /api/v1/actors/{actorID}
func (h *CatalogHandler) GetActor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "actorID")
	if !ok {
		return
	}
	a, err := h.actors.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// UpdateActor merges the body into the actor.
// PUT|PATCH /api/v1/actors/{actorID}
func (h *CatalogHandler) UpdateActor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "actorID")
	if !ok {
		return
	}
	var in model.ActorUpdate
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := h.actors.Update(r.Context(), id, in)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// DeleteActor deletes an actor and its cast entries.
// DELETE /api/v1/actors/{actorID}
func (h *CatalogHandler) DeleteActor(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "actorID")
	if !ok {
		return
	}
	if err := h.actors.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "Actor deleted", "actor_id": id})
}

// ListActorMovies returns the movies of an actor.
// GET /api/v1/actors/{actorID}/movies
func (h *CatalogHandler) ListActorMovies(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, r, "actorID")
	if !ok {
		return
	}
	movies, err := h.actors.Movies(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	h.writeList(w, r, start, movies, len(movies), 0, len(movies), nil)
}
