package service

import (
	"context"
	"fmt"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/store"
)

// ActorService manages actors.
type ActorService struct {
	base
}

// NewActorService returns a service backed by st.
func NewActorService(st *store.Store, opts Options) *ActorService {
	return &ActorService{base: newBase(st, opts, KindActor)}
}

// Create validates in, rejects duplicates and inserts the actor.
func (s *ActorService) Create(ctx context.Context, in model.ActorCreate) (*model.Actor, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	key := "imdb_code " + in.IMDbCode
	if s.opts.DuplicateKey == DuplicateNatural {
		key = fmt.Sprintf("last_name %q and imdb_code %s", in.LastName, in.IMDbCode)
	}

	var out *model.Actor
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		if s.opts.DuplicateKey == DuplicateNatural {
			_, err = s.store.Actors.FindByNaturalKey(ctx, q, in)
		} else {
			_, err = s.store.Actors.FindByIMDb(ctx, q, in.IMDbCode)
		}
		exists, err := found(err)
		if err != nil {
			return err
		}
		if exists {
			return &AlreadyExistsError{Kind: KindActor, Key: key}
		}

		out, err = s.store.Actors.Create(ctx, q, in)
		return duplicate(err, KindActor, "imdb_code "+in.IMDbCode)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("actor created", "actor_id", out.ID)
	return out, nil
}

// Get returns the actor with id or a NotFoundError.
func (s *ActorService) Get(ctx context.Context, id int64) (*model.Actor, error) {
	var out *model.Actor
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.get(ctx, q, id)
		return err
	})
	return out, err
}

func (s *ActorService) get(ctx context.Context, q store.Session, id int64) (*model.Actor, error) {
	a, err := s.store.Actors.Get(ctx, q, id)
	if err != nil {
		return nil, notFound(err, KindActor, id)
	}
	return a, nil
}

// List pages through actors. skip and limit go to the database as given.
func (s *ActorService) List(ctx context.Context, skip, limit int) ([]model.Actor, error) {
	var out []model.Actor
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.store.Actors.List(ctx, q, skip, limit)
		return err
	})
	return out, err
}

// Count returns the total number of actors.
func (s *ActorService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		n, err = s.store.Actors.Count(ctx, q)
		return err
	})
	return n, err
}

// Update applies the fields present in in. Explicit nulls clear optional
// columns; nulls and empty values on required columns are rejected.
func (s *ActorService) Update(ctx context.Context, id int64, in model.ActorUpdate) (*model.Actor, error) {
	cols := in.Columns()
	if err := requiredPresent(cols); err != nil {
		return nil, err
	}
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	var out *model.Actor
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Actors.Update(ctx, q, id, cols.Values)
		if err != nil {
			return duplicate(err, KindActor, fmt.Sprintf("imdb_code %v", cols.Values["imdb_code"]))
		}
		return nil
	})
	return out, err
}

// Delete removes an actor and its cast entries.
func (s *ActorService) Delete(ctx context.Context, id int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		return notFound(s.store.Actors.Delete(ctx, q, id), KindActor, id)
	})
}

// Movies returns the movies of an existing actor, never nil.
func (s *ActorService) Movies(ctx context.Context, id int64) ([]model.Movie, error) {
	var out []model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Actors.Movies(ctx, q, id)
		return err
	})
	return out, err
}
