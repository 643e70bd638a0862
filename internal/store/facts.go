package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/model"
)

var factsTable = table{
	name:    "movie_facts",
	key:     "fact_id",
	columns: []string{"fact_id", "movie_id", "fact_text", "source"},
}

// FactRepo reads and writes movie facts.
type FactRepo struct {
	s *Store
}

func (r *FactRepo) Get(ctx context.Context, q Session, id int64) (*model.MovieFact, error) {
	var f model.MovieFact
	if err := r.s.get(ctx, q, &f, factsTable, id); err != nil {
		return nil, err
	}
	return &f, nil
}

// ForMovie returns the facts of one movie ordered by fact id.
func (r *FactRepo) ForMovie(ctx context.Context, q Session, movieID int64) ([]model.MovieFact, error) {
	query, args, err := r.s.conn.BuildSelect(ctx, connector.SelectRequest{
		Table:      factsTable.name,
		Fields:     factsTable.columns,
		Filter:     r.s.eq("movie_id"),
		FilterArgs: []interface{}{movieID},
		Order:      r.s.conn.QuoteIdentifier(factsTable.key),
	})
	if err != nil {
		return nil, err
	}

	facts := []model.MovieFact{}
	if err := sqlx.SelectContext(ctx, q, &facts, query, args...); err != nil {
		return nil, fmt.Errorf("facts of movie %d: %w", movieID, err)
	}
	return facts, nil
}

// ForMovies loads the facts of several movies in one query. Every requested
// id has an entry, empty when the movie has no facts.
func (r *FactRepo) ForMovies(ctx context.Context, q Session, movieIDs []int64) (map[int64][]model.MovieFact, error) {
	out := make(map[int64][]model.MovieFact, len(movieIDs))
	if len(movieIDs) == 0 {
		return out, nil
	}

	args := make([]interface{}, len(movieIDs))
	for i, id := range movieIDs {
		args[i] = id
		out[id] = []model.MovieFact{}
	}

	query, qargs, err := r.s.conn.BuildSelect(ctx, connector.SelectRequest{
		Table:      factsTable.name,
		Fields:     factsTable.columns,
		Filter:     fmt.Sprintf("%s IN (%s)", r.s.conn.QuoteIdentifier("movie_id"), connector.Placeholders(len(args))),
		FilterArgs: args,
		Order:      r.s.conn.QuoteIdentifier(factsTable.key),
	})
	if err != nil {
		return nil, err
	}

	var facts []model.MovieFact
	if err := sqlx.SelectContext(ctx, q, &facts, query, qargs...); err != nil {
		return nil, fmt.Errorf("facts of %d movies: %w", len(movieIDs), err)
	}
	for _, f := range facts {
		out[f.MovieID] = append(out[f.MovieID], f)
	}
	return out, nil
}

// Create adds a fact to a movie.
func (r *FactRepo) Create(ctx context.Context, q Session, movieID int64, in model.MovieFactCreate) (*model.MovieFact, error) {
	id, err := r.s.insert(ctx, q, factsTable, in.Record(movieID))
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, q, id)
}

// Delete removes a fact, but only through the movie that owns it.
func (r *FactRepo) Delete(ctx context.Context, q Session, movieID, factID int64) error {
	return r.s.remove(ctx, q, factsTable.name, []string{factsTable.key, "movie_id"}, []interface{}{factID, movieID})
}
