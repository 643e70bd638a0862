package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/store"
	"github.com/filmvault/filmvault/internal/telemetry"
)

// AllowedOperators are the aggregate functions the maths procedure accepts.
var AllowedOperators = []string{"SUM", "AVG", "MAX", "MIN"}

// Fallback messages for procedures that return no status row.
const (
	MsgBatchInsert = "Batch insert completed"
	MsgRandomSplit = "Procedure executed successfully, no status returned."
	MsgLinkActor   = "Actor linked to Movie successfully"
	MsgAddAward    = "Award added successfully."
)

// ProcedureNames maps each operation to the stored procedure it calls.
type ProcedureNames struct {
	Aggregate       string `yaml:"aggregate"`
	AggregateTable  string `yaml:"aggregate_table"`
	AggregateColumn string `yaml:"aggregate_column"`
	BatchInsert     string `yaml:"batch_insert"`
	RandomSplit     string `yaml:"random_split"`
	LinkActor       string `yaml:"link_actor"`
	AddAward        string `yaml:"add_award"`
}

// DefaultProcedureNames returns the procedures shipped with the catalogue
// database.
func DefaultProcedureNames() ProcedureNames {
	return ProcedureNames{
		Aggregate:       "sp_call_agg_function_in_select",
		AggregateTable:  "movies",
		AggregateColumn: "duration",
		BatchInsert:     "sp_insert_10_nonames_actors",
		RandomSplit:     "sp_random_split_movies",
		LinkActor:       "sp_link_actor_movie",
		AddAward:        "sp_insert_award",
	}
}

func (n ProcedureNames) withDefaults() ProcedureNames {
	d := DefaultProcedureNames()
	n.Aggregate = orDefault(n.Aggregate, d.Aggregate)
	n.AggregateTable = orDefault(n.AggregateTable, d.AggregateTable)
	n.AggregateColumn = orDefault(n.AggregateColumn, d.AggregateColumn)
	n.BatchInsert = orDefault(n.BatchInsert, d.BatchInsert)
	n.RandomSplit = orDefault(n.RandomSplit, d.RandomSplit)
	n.LinkActor = orDefault(n.LinkActor, d.LinkActor)
	n.AddAward = orDefault(n.AddAward, d.AddAward)
	return n
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// ProcedureService dispatches the stored procedures of the catalogue
// database. The procedures are opaque: only their inputs are validated and
// only their first status row is read.
type ProcedureService struct {
	store     *store.Store
	names     ProcedureNames
	metrics   *telemetry.Metrics
	validator *Validator
	logger    *slog.Logger
}

func NewProcedureService(st *store.Store, names ProcedureNames, metrics *telemetry.Metrics, logger *slog.Logger) *ProcedureService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcedureService{
		store:     st,
		names:     names.withDefaults(),
		metrics:   metrics,
		validator: NewValidator(),
		logger:    logger.With("service", "procedures"),
	}
}

// Names returns the resolved procedure names.
func (s *ProcedureService) Names() ProcedureNames { return s.names }

// NormalizeOperator upper-cases op and checks it against AllowedOperators.
func NormalizeOperator(op string) (string, error) {
	norm := strings.ToUpper(strings.TrimSpace(op))
	for _, a := range AllowedOperators {
		if norm == a {
			return norm, nil
		}
	}
	allowed := make([]string, len(AllowedOperators))
	copy(allowed, AllowedOperators)
	return "", &InvalidOperatorError{Value: op, Allowed: allowed}
}

// MathsFunction runs the aggregate procedure over the configured table and
// column. It returns nil, nil when the procedure produced no row.
func (s *ProcedureService) MathsFunction(ctx context.Context, op string) (*model.AggregateResult, error) {
	norm, err := NormalizeOperator(op)
	if err != nil {
		return nil, err
	}

	sets, err := s.call(ctx, s.names.Aggregate, s.names.AggregateTable, s.names.AggregateColumn, norm)
	if err != nil {
		return nil, err
	}

	row := firstRow(sets)
	if row == nil {
		return nil, nil
	}
	res := &model.AggregateResult{Operation: norm}
	switch len(row) {
	case 0:
		return nil, nil
	case 1:
		res.Result = numeric(row[0])
	default:
		if name, ok := row[0].(string); ok && name != "" {
			res.Operation = name
		}
		res.Result = numeric(row[1])
	}
	return res, nil
}

// InsertBatch runs the batch insert procedure.
func (s *ProcedureService) InsertBatch(ctx context.Context) (*model.ProcedureStatus, error) {
	return s.status(ctx, s.names.BatchInsert, MsgBatchInsert)
}

// RandomSplit runs the random split procedure.
func (s *ProcedureService) RandomSplit(ctx context.Context) (*model.ProcedureStatus, error) {
	return s.status(ctx, s.names.RandomSplit, MsgRandomSplit)
}

// LinkActorToMovie links an actor, found by last name, to a movie found by
// title.
func (s *ProcedureService) LinkActorToMovie(ctx context.Context, in model.ActorMovieLink) (*model.ProcedureStatus, error) {
	if err := s.validator.Required(map[string]string{
		"actor_lastname": in.ActorLastName,
		"movie_title":    in.MovieTitle,
		"character":      in.Character,
	}); err != nil {
		return nil, err
	}
	return s.status(ctx, s.names.LinkActor, MsgLinkActor, in.ActorLastName, in.MovieTitle, in.Character)
}

// AddAward records an award for an actor.
func (s *ProcedureService) AddAward(ctx context.Context, in model.AwardCreate) (*model.ProcedureStatus, error) {
	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.AwardName) == "" {
		return nil, newValidationError("award_name", "is required")
	}
	return s.status(ctx, s.names.AddAward, MsgAddAward, in.ActorID, in.AwardName, in.AwardYear)
}

func (s *ProcedureService) status(ctx context.Context, name, fallback string, args ...interface{}) (*model.ProcedureStatus, error) {
	sets, err := s.call(ctx, name, args...)
	if err != nil {
		return nil, err
	}

	msg := fallback
	if row := firstRow(sets); len(row) > 0 && row[0] != nil {
		if text := strings.TrimSpace(fmt.Sprint(row[0])); text != "" {
			msg = text
		}
	}
	return &model.ProcedureStatus{Procedure: name, Message: msg}, nil
}

// call runs one procedure in its own transaction, draining every result
// set before commit. Any failure rolls back and comes back as *ProcedureError.
func (s *ProcedureService) call(ctx context.Context, name string, args ...interface{}) ([]connector.ResultSet, error) {
	start := time.Now()
	var sets []connector.ResultSet
	err := s.store.InTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		sets, err = s.store.Connector().CallProcedure(ctx, tx, name, args)
		return err
	})
	s.metrics.ObserveProcedure(name, time.Since(start), err)

	if err != nil {
		s.logger.Error("procedure failed", "procedure", name, "error", err)
		return nil, &ProcedureError{Procedure: name, Err: err}
	}
	s.logger.Debug("procedure executed", "procedure", name, "result_sets", len(sets), "duration", time.Since(start))
	return sets, nil
}

// firstRow returns the first row of the first non-empty result set.
func firstRow(sets []connector.ResultSet) []interface{} {
	for _, rs := range sets {
		if !rs.Empty() {
			return rs.Rows[0]
		}
	}
	return nil
}

// numeric turns decimal strings into float64. MySQL returns DECIMAL
// aggregates as text.
func numeric(v interface{}) interface{} {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}
