package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/model"
)

var directorsTable = table{
	name:    "directors",
	key:     "director_id",
	columns: []string{"director_id", "first_name", "last_name", "nationality", "imdb_code"},
}

// DirectorRepo reads and writes directors.
type DirectorRepo struct {
	s *Store
}

func (r *DirectorRepo) Get(ctx context.Context, q Session, id int64) (*model.Director, error) {
	var d model.Director
	if err := r.s.get(ctx, q, &d, directorsTable, id); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DirectorRepo) FindByIMDb(ctx context.Context, q Session, code string) (*model.Director, error) {
	var d model.Director
	if err := r.s.findFirst(ctx, q, &d, directorsTable, []string{"imdb_code"}, []interface{}{code}); err != nil {
		return nil, err
	}
	return &d, nil
}

// FindByNaturalKey matches on first name, last name, imdb code and
// nationality.
func (r *DirectorRepo) FindByNaturalKey(ctx context.Context, q Session, in model.DirectorCreate) (*model.Director, error) {
	var d model.Director
	rec := in.Record()
	err := r.s.findFirst(ctx, q, &d, directorsTable,
		[]string{"first_name", "last_name", "imdb_code", "nationality"},
		[]interface{}{rec["first_name"], rec["last_name"], rec["imdb_code"], rec["nationality"]},
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *DirectorRepo) List(ctx context.Context, q Session, offset, limit int) ([]model.Director, error) {
	directors := []model.Director{}
	if err := r.s.list(ctx, q, &directors, directorsTable, offset, limit); err != nil {
		return nil, err
	}
	return directors, nil
}

func (r *DirectorRepo) Count(ctx context.Context, q Session) (int64, error) {
	return r.s.count(ctx, q, directorsTable)
}

func (r *DirectorRepo) Create(ctx context.Context, q Session, in model.DirectorCreate) (*model.Director, error) {
	id, err := r.s.insert(ctx, q, directorsTable, in.Record())
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, q, id)
}

func (r *DirectorRepo) Update(ctx context.Context, q Session, id int64, columns map[string]interface{}) (*model.Director, error) {
	if len(columns) > 0 {
		if err := r.s.update(ctx, q, directorsTable, id, columns); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, q, id)
}

// Delete removes a director and its movie links. Movies are kept.
func (r *DirectorRepo) Delete(ctx context.Context, q Session, id int64) error {
	return r.s.remove(ctx, q, directorsTable.name, []string{directorsTable.key}, []interface{}{id})
}

// Movies returns the movies a director directed, ordered by movie id.
func (r *DirectorRepo) Movies(ctx context.Context, q Session, directorID int64) ([]model.Movie, error) {
	s := r.s
	query := fmt.Sprintf(
		"SELECT %s FROM %s m JOIN %s md ON %s = %s WHERE %s = ? ORDER BY %s",
		s.cols("m", moviesTable.columns),
		s.conn.Table(moviesTable.name), s.conn.Table(movieDirectorsTable.name),
		s.col("md", "movie_id"), s.col("m", "movie_id"),
		s.col("md", "director_id"), s.col("m", "movie_id"),
	)

	movies := []model.Movie{}
	if err := sqlx.SelectContext(ctx, q, &movies, s.conn.Rebind(query), directorID); err != nil {
		return nil, fmt.Errorf("movies of director %d: %w", directorID, err)
	}
	return movies, nil
}
