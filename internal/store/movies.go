package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/model"
)

var (
	moviesTable = table{
		name:    "movies",
		key:     "movie_id",
		columns: []string{"movie_id", "title", "release_year", "duration", "description", "imdb_code", "rating"},
	}
	movieActorsTable    = table{name: "movie_actors"}
	movieDirectorsTable = table{name: "movie_directors"}
)

// MovieRepo reads and writes movies and their associations.
type MovieRepo struct {
	s *Store
}

// Get loads a movie by id.
func (r *MovieRepo) Get(ctx context.Context, q Session, id int64) (*model.Movie, error) {
	var m model.Movie
	if err := r.s.get(ctx, q, &m, moviesTable, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByIMDb loads the movie with the given imdb_code.
func (r *MovieRepo) FindByIMDb(ctx context.Context, q Session, code string) (*model.Movie, error) {
	var m model.Movie
	if err := r.s.findFirst(ctx, q, &m, moviesTable, []string{"imdb_code"}, []interface{}{code}); err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByTitleYear loads the first movie with the given title and release year.
func (r *MovieRepo) FindByTitleYear(ctx context.Context, q Session, title string, year int) (*model.Movie, error) {
	var m model.Movie
	err := r.s.findFirst(ctx, q, &m, moviesTable, []string{"title", "release_year"}, []interface{}{title, year})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// List returns movies in primary key order.
func (r *MovieRepo) List(ctx context.Context, q Session, offset, limit int) ([]model.Movie, error) {
	movies := []model.Movie{}
	if err := r.s.list(ctx, q, &movies, moviesTable, offset, limit); err != nil {
		return nil, err
	}
	return movies, nil
}

// Count returns the number of movies.
func (r *MovieRepo) Count(ctx context.Context, q Session) (int64, error) {
	return r.s.count(ctx, q, moviesTable)
}

// Create inserts a movie and returns it as stored.
func (r *MovieRepo) Create(ctx context.Context, q Session, in model.MovieCreate) (*model.Movie, error) {
	id, err := r.s.insert(ctx, q, moviesTable, in.Record())
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, q, id)
}

// Update writes the given columns and returns the refreshed movie.
func (r *MovieRepo) Update(ctx context.Context, q Session, id int64, columns map[string]interface{}) (*model.Movie, error) {
	if len(columns) > 0 {
		if err := r.s.update(ctx, q, moviesTable, id, columns); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, q, id)
}

// Delete removes a movie. Its cast, director links and facts go with it.
func (r *MovieRepo) Delete(ctx context.Context, q Session, id int64) error {
	return r.s.remove(ctx, q, moviesTable.name, []string{moviesTable.key}, []interface{}{id})
}

// Actors returns the cast of a movie: billed actors first by billing order,
// then unbilled ones, ties broken by actor id.
func (r *MovieRepo) Actors(ctx context.Context, q Session, movieID int64) ([]model.CastMember, error) {
	s := r.s
	query := fmt.Sprintf(
		"SELECT %s, %s, %s FROM %s a JOIN %s ma ON %s = %s WHERE %s = ? "+
			"ORDER BY CASE WHEN %s IS NULL THEN 1 ELSE 0 END, %s, %s",
		s.cols("a", actorsTable.columns), s.col("ma", "character_name"), s.col("ma", "billing_order"),
		s.conn.Table(actorsTable.name), s.conn.Table(movieActorsTable.name),
		s.col("ma", "actor_id"), s.col("a", "actor_id"),
		s.col("ma", "movie_id"),
		s.col("ma", "billing_order"), s.col("ma", "billing_order"), s.col("a", "actor_id"),
	)

	cast := []model.CastMember{}
	if err := sqlx.SelectContext(ctx, q, &cast, s.conn.Rebind(query), movieID); err != nil {
		return nil, fmt.Errorf("cast of movie %d: %w", movieID, err)
	}
	return cast, nil
}

// Directors returns the directors of a movie ordered by id.
func (r *MovieRepo) Directors(ctx context.Context, q Session, movieID int64) ([]model.Director, error) {
	s := r.s
	query := fmt.Sprintf(
		"SELECT %s FROM %s d JOIN %s md ON %s = %s WHERE %s = ? ORDER BY %s",
		s.cols("d", directorsTable.columns),
		s.conn.Table(directorsTable.name), s.conn.Table(movieDirectorsTable.name),
		s.col("md", "director_id"), s.col("d", "director_id"),
		s.col("md", "movie_id"), s.col("d", "director_id"),
	)

	directors := []model.Director{}
	if err := sqlx.SelectContext(ctx, q, &directors, s.conn.Rebind(query), movieID); err != nil {
		return nil, fmt.Errorf("directors of movie %d: %w", movieID, err)
	}
	return directors, nil
}

// LinkActor adds an actor to a movie's cast.
func (r *MovieRepo) LinkActor(ctx context.Context, q Session, link model.MovieActor) error {
	_, err := r.s.insert(ctx, q, movieActorsTable, link.Record())
	return err
}

// UnlinkActor removes an actor from a movie's cast.
func (r *MovieRepo) UnlinkActor(ctx context.Context, q Session, movieID, actorID int64) error {
	return r.s.remove(ctx, q, movieActorsTable.name, []string{"movie_id", "actor_id"}, []interface{}{movieID, actorID})
}

// LinkDirector records that a director directed a movie.
func (r *MovieRepo) LinkDirector(ctx context.Context, q Session, movieID, directorID int64) error {
	_, err := r.s.insert(ctx, q, movieDirectorsTable, map[string]interface{}{
		"movie_id":    movieID,
		"director_id": directorID,
	})
	return err
}

// UnlinkDirector removes a director from a movie.
func (r *MovieRepo) UnlinkDirector(ctx context.Context, q Session, movieID, directorID int64) error {
	return r.s.remove(ctx, q, movieDirectorsTable.name, []string{"movie_id", "director_id"}, []interface{}{movieID, directorID})
}
