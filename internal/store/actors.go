package store

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/model"
)

var actorsTable = table{
	name:    "actors",
	key:     "actor_id",
	columns: []string{"actor_id", "name", "last_name", "birth_date", "nationality", "bio", "imdb_code"},
}

// ActorRepo reads and writes actors.
type ActorRepo struct {
	s *Store
}

func (r *ActorRepo) Get(ctx context.Context, q Session, id int64) (*model.Actor, error) {
	var a model.Actor
	if err := r.s.get(ctx, q, &a, actorsTable, id); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepo) FindByIMDb(ctx context.Context, q Session, code string) (*model.Actor, error) {
	var a model.Actor
	if err := r.s.findFirst(ctx, q, &a, actorsTable, []string{"imdb_code"}, []interface{}{code}); err != nil {
		return nil, err
	}
	return &a, nil
}

// FindByNaturalKey matches on last name, birth date, nationality, bio and
// imdb code. Unset optional fields match NULL columns.
func (r *ActorRepo) FindByNaturalKey(ctx context.Context, q Session, in model.ActorCreate) (*model.Actor, error) {
	var a model.Actor
	rec := in.Record()
	err := r.s.findFirst(ctx, q, &a, actorsTable,
		[]string{"last_name", "birth_date", "nationality", "bio", "imdb_code"},
		[]interface{}{rec["last_name"], rec["birth_date"], rec["nationality"], rec["bio"], rec["imdb_code"]},
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ActorRepo) List(ctx context.Context, q Session, offset, limit int) ([]model.Actor, error) {
	actors := []model.Actor{}
	if err := r.s.list(ctx, q, &actors, actorsTable, offset, limit); err != nil {
		return nil, err
	}
	return actors, nil
}

func (r *ActorRepo) Count(ctx context.Context, q Session) (int64, error) {
	return r.s.count(ctx, q, actorsTable)
}

func (r *ActorRepo) Create(ctx context.Context, q Session, in model.ActorCreate) (*model.Actor, error) {
	id, err := r.s.insert(ctx, q, actorsTable, in.Record())
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, q, id)
}

func (r *ActorRepo) Update(ctx context.Context, q Session, id int64, columns map[string]interface{}) (*model.Actor, error) {
	if len(columns) > 0 {
		if err := r.s.update(ctx, q, actorsTable, id, columns); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, q, id)
}

// Delete removes an actor and its cast entries. Movies are kept.
func (r *ActorRepo) Delete(ctx context.Context, q Session, id int64) error {
	return r.s.remove(ctx, q, actorsTable.name, []string{actorsTable.key}, []interface{}{id})
}

// Movies returns the movies an actor appears in, ordered by movie id.
func (r *ActorRepo) Movies(ctx context.Context, q Session, actorID int64) ([]model.Movie, error) {
	s := r.s
	query := fmt.Sprintf(
		"SELECT %s FROM %s m JOIN %s ma ON %s = %s WHERE %s = ? ORDER BY %s",
		s.cols("m", moviesTable.columns),
		s.conn.Table(moviesTable.name), s.conn.Table(movieActorsTable.name),
		s.col("ma", "movie_id"), s.col("m", "movie_id"),
		s.col("ma", "actor_id"), s.col("m", "movie_id"),
	)

	movies := []model.Movie{}
	if err := sqlx.SelectContext(ctx, q, &movies, s.conn.Rebind(query), actorID); err != nil {
		return nil, fmt.Errorf("movies of actor %d: %w", actorID, err)
	}
	return movies, nil
}
