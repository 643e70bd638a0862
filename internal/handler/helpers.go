package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/server/middleware"
	"github.com/filmvault/filmvault/internal/service"
)

// writeJSON serializes v as JSON and writes it to the response with the given
// HTTP status code. The Content-Type header is set to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a structured error response using the standard error
// envelope. The optional ctx map provides additional context fields.
func writeError(w http.ResponseWriter, code int, message string, ctx ...map[string]interface{}) {
	var ctxMap map[string]interface{}
	if len(ctx) > 0 {
		ctxMap = ctx[0]
	}
	writeJSON(w, code, model.ErrorResponse{
		Error: model.ErrorDetail{
			Code:    code,
			Message: message,
			Context: ctxMap,
		},
	})
}

// writeServiceError maps the service error taxonomy to HTTP statuses. Errors
// outside the taxonomy go through classifyDBError and are logged with the
// request's logger, falling back to logger outside the middleware chain.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	logger = middleware.LoggerFrom(r.Context(), logger)
	var (
		notFound  *service.NotFoundError
		exists    *service.AlreadyExistsError
		invalid   *service.ValidationError
		operator  *service.InvalidOperatorError
		procedure *service.ProcedureError
	)

	switch {
	case errors.As(err, &notFound):
		writeError(w, http.StatusNotFound, err.Error(), map[string]interface{}{
			"kind": notFound.Kind,
			"id":   notFound.ID,
		})
	case errors.As(err, &exists):
		writeError(w, http.StatusConflict, err.Error(), map[string]interface{}{
			"kind": exists.Kind,
			"key":  exists.Key,
		})
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, "Validation failed", map[string]interface{}{
			"fields": invalid.Fields,
		})
	case errors.As(err, &operator):
		writeError(w, http.StatusBadRequest, err.Error(), map[string]interface{}{
			"value":   operator.Value,
			"allowed": operator.Allowed,
		})
	case errors.As(err, &procedure):
		logger.Error("procedure failed",
			"procedure", procedure.Procedure,
			"error", procedure.Err,
		)
		writeError(w, http.StatusInternalServerError, err.Error(), map[string]interface{}{
			"procedure": procedure.Procedure,
		})
	default:
		code, msg := classifyDBError(err, "Request failed")
		if code >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", r.Method,
				"path", r.URL.Path,
				"error", err,
			)
		}
		writeError(w, code, msg)
	}
}

// readJSON decodes the request body as JSON into v. The body is closed after
// decoding regardless of success or failure. An empty body is an error.
func readJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return errors.New("request body is empty")
	}
	return err
}

// decodeBody reads the JSON body into v and writes a 400 when it is
// malformed. It reports whether the handler should continue.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := readJSON(r, v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathID parses an integer id from the named URL parameter and
// writes a 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s: %q", name, raw))
		return 0, false
	}
	return id, true
}

// queryInt extracts an integer query parameter, returning defaultVal if the
// parameter is missing. A present but malformed value is an error.
func queryInt(r *http.Request, key string, defaultVal int) (int, error) {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer", key)
	}
	return n, nil
}

// queryBool extracts a boolean query parameter. Returns false if the parameter
// is missing or not "true"/"1".
func queryBool(r *http.Request, key string) bool {
	val := r.URL.Query().Get(key)
	return val == "true" || val == "1"
}

// page reads skip/limit, accepting offset as an alias of skip. Values are
// passed on uninterpreted.
func page(w http.ResponseWriter, r *http.Request, defaultLimit int) (skip, limit int, ok bool) {
	skipKey := "skip"
	if r.URL.Query().Get("skip") == "" && r.URL.Query().Get("offset") != "" {
		skipKey = "offset"
	}
	skip, err := queryInt(r, skipKey, 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	limit, err = queryInt(r, "limit", defaultLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, 0, false
	}
	return skip, limit, true
}

// classifyDBError maps common database errors to appropriate HTTP status codes.
// Returns (httpStatus, cleanMessage).
func classifyDBError(err error, fallbackMsg string) (int, string) {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	// Unique constraint violations → 409 Conflict
	case strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry") ||
		strings.Contains(lower, "violation of unique"):
		return http.StatusConflict, fallbackMsg + ": " + msg

	// NOT NULL violations → 400 Bad Request
	case strings.Contains(lower, "not null constraint") ||
		strings.Contains(lower, "cannot insert null") ||
		strings.Contains(lower, "null value in column") ||
		strings.Contains(lower, "column cannot be null"):
		return http.StatusBadRequest, fallbackMsg + ": " + msg

	// Foreign key violations → 400 Bad Request
	case strings.Contains(lower, "foreign key") ||
		strings.Contains(lower, "fk constraint"):
		return http.StatusBadRequest, fallbackMsg + ": " + msg

	// Check constraint → 400 Bad Request
	case strings.Contains(lower, "check constraint"):
		return http.StatusBadRequest, fallbackMsg + ": " + msg

	// Client went away or the deadline passed
	case strings.Contains(lower, "context canceled") ||
		strings.Contains(lower, "deadline exceeded"):
		return http.StatusServiceUnavailable, fallbackMsg + ": " + msg

	default:
		return http.StatusInternalServerError, fallbackMsg + ": " + msg
	}
}
