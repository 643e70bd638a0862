package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
)

// ProcHandler exposes the catalogue's stored procedures.
type ProcHandler struct {
	procs  *service.ProcedureService
	logger *slog.Logger
}

// NewProcHandler creates a new ProcHandler.
func NewProcHandler(procs *service.ProcedureService, logger *slog.Logger) *ProcHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcHandler{
		procs:  procs,
		logger: logger,
	}
}

// Maths runs the aggregate procedure over movie durations. A procedure that
// produces no row answers 204.
// GET /api/v1/maths/{operator}
func (h *ProcHandler) Maths(w http.ResponseWriter, r *http.Request) {
	res, err := h.procs.MathsFunction(r.Context(), chi.URLParam(r, "operator"))
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if res == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// InsertBatch inserts ten placeholder actors.
// POST /api/v1/insert_10
func (h *ProcHandler) InsertBatch(w http.ResponseWriter, r *http.Request) {
	st, err := h.procs.InsertBatch(r.Context())
	h.writeStatus(w, r, st, err)
}

// RandomSplit runs the random split procedure.
// POST /api/v1/proc_cursor
func (h *ProcHandler) RandomSplit(w http.ResponseWriter, r *http.Request) {
	st, err := h.procs.RandomSplit(r.Context())
	h.writeStatus(w, r, st, err)
}

// LinkActorToMovie links an actor to a movie by last name and title.
// POST /api/v1/link_actor_to_movie
func (h *ProcHandler) LinkActorToMovie(w http.ResponseWriter, r *http.Request) {
	var in model.ActorMovieLink
	if !decodeBody(w, r, &in) {
		return
	}
	st, err := h.procs.LinkActorToMovie(r.Context(), in)
	h.writeStatus(w, r, st, err)
}

// AddAward records an award for an actor.
// POST /api/v1/add_award
func (h *ProcHandler) AddAward(w http.ResponseWriter, r *http.Request) {
	var in model.AwardCreate
	if !decodeBody(w, r, &in) {
		return
	}
	st, err := h.procs.AddAward(r.Context(), in)
	h.writeStatus(w, r, st, err)
}

func (h *ProcHandler) writeStatus(w http.ResponseWriter, r *http.Request, st *model.ProcedureStatus, err error) {
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, st)
}
