package handler

import "github.com/go-chi/chi/v5"

// Routes registers the catalogue endpoints on r.
func (h *CatalogHandler) Routes(r chi.Router) {
	r.Get("/movies", h.ListMovies)
	r.Post("/movies", h.CreateMovie)
	r.Get("/movies/facts", h.ListMoviesWithFacts)
	r.Get("/movies/{movieID}", h.GetMovie)
	r.Put("/movies/{movieID}", h.UpdateMovie)
	r.Patch("/movies/{movieID}", h.UpdateMovie)
	r.Delete("/movies/{movieID}", h.DeleteMovie)
	r.Get("/movies/{movieID}/facts", h.GetMovieFacts)
	r.Post("/movies/{movieID}/facts", h.AddMovieFact)
	r.Delete("/movies/{movieID}/facts/{factID}", h.DeleteMovieFact)
	r.Get("/movies/{movieID}/actors", h.ListMovieActors)
	r.Post("/movies/{movieID}/actors", h.AddMovieActor)
	r.Delete("/movies/{movieID}/actors/{actorID}", h.RemoveMovieActor)
	r.Get("/movies/{movieID}/directors", h.ListMovieDirectors)
	r.Post("/movies/{movieID}/directors", h.AddMovieDirector)
	r.Delete("/movies/{movieID}/directors/{directorID}", h.RemoveMovieDirector)

	r.Get("/directors", h.ListDirectors)
	r.Post("/directors", h.CreateDirector)
	r.Get("/directors/{directorID}", h.GetDirector)
	r.Put("/directors/{directorID}", h.UpdateDirector)
	r.Patch("/directors/{directorID}", h.UpdateDirector)
	r.Delete("/directors/{directorID}", h.DeleteDirector)
	r.Get("/directors/{directorID}/movies", h.ListDirectorMovies)

	r.Get("/actors", h.ListActors)
	r.Post("/actors", h.CreateActor)
	r.Get("/actors/{actorID}", h.GetActor)
	r.Put("/actors/{actorID}", h.UpdateActor)
	r.Patch("/actors/{actorID}", h.UpdateActor)
	r.Delete("/actors/{actorID}", h.DeleteActor)
	r.Get("/actors/{actorID}/movies", h.ListActorMovies)
}

// Routes registers the stored procedure endpoints on r.
func (h *ProcHandler) Routes(r chi.Router) {
	r.Get("/maths/{operator}", h.Maths)
	r.Post("/insert_10", h.InsertBatch)
	r.Post("/proc_cursor", h.RandomSplit)
	r.Post("/link_actor_to_movie", h.LinkActorToMovie)
	r.Post("/add_award", h.AddAward)
}
