package service

import (
	"context"
	"fmt"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/store"
)

// DirectorService manages directors.
type DirectorService struct {
	base
}

// NewDirectorService returns a service backed by st.
func NewDirectorService(st *store.Store, opts Options) *DirectorService {
	return &DirectorService{base: newBase(st, opts, KindDirector)}
}

// Create validates in, rejects duplicates and inserts the director.
func (s *DirectorService) Create(ctx context.Context, in model.DirectorCreate) (*model.Director, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	key := "imdb_code " + in.IMDbCode
	if s.opts.DuplicateKey == DuplicateNatural {
		key = fmt.Sprintf("name %q %q and imdb_code %s", in.FirstName, in.LastName, in.IMDbCode)
	}

	var out *model.Director
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		if s.opts.DuplicateKey == DuplicateNatural {
			_, err = s.store.Directors.FindByNaturalKey(ctx, q, in)
		} else {
			_, err = s.store.Directors.FindByIMDb(ctx, q, in.IMDbCode)
		}
		exists, err := found(err)
		if err != nil {
			return err
		}
		if exists {
			return &AlreadyExistsError{Kind: KindDirector, Key: key}
		}

		out, err = s.store.Directors.Create(ctx, q, in)
		return duplicate(err, KindDirector, "imdb_code "+in.IMDbCode)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("director created", "director_id", out.ID)
	return out, nil
}

// Get returns the director with id or a NotFoundError.
func (s *DirectorService) Get(ctx context.Context, id int64) (*model.Director, error) {
	var out *model.Director
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.get(ctx, q, id)
		return err
	})
	return out, err
}

func (s *DirectorService) get(ctx context.Context, q store.Session, id int64) (*model.Director, error) {
	d, err := s.store.Directors.Get(ctx, q, id)
	if err != nil {
		return nil, notFound(err, KindDirector, id)
	}
	return d, nil
}

// List pages through directors. skip and limit go to the database as given.
func (s *DirectorService) List(ctx context.Context, skip, limit int) ([]model.Director, error) {
	var out []model.Director
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.store.Directors.List(ctx, q, skip, limit)
		return err
	})
	return out, err
}

// Count returns the total number of directors.
func (s *DirectorService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		n, err = s.store.Directors.Count(ctx, q)
		return err
	})
	return n, err
}

// Update applies the fields present in in. Explicit nulls clear optional
// columns; nulls and empty values on required columns are rejected.
func (s *DirectorService) Update(ctx context.Context, id int64, in model.DirectorUpdate) (*model.Director, error) {
	cols := in.Columns()
	if err := requiredPresent(cols); err != nil {
		return nil, err
	}
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	var out *model.Director
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Directors.Update(ctx, q, id, cols.Values)
		if err != nil {
			return duplicate(err, KindDirector, fmt.Sprintf("imdb_code %v", cols.Values["imdb_code"]))
		}
		return nil
	})
	return out, err
}

// Delete removes a director. Linked movies are kept.
func (s *DirectorService) Delete(ctx context.Context, id int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		return notFound(s.store.Directors.Delete(ctx, q, id), KindDirector, id)
	})
}

// Movies returns the movies of an existing director, never nil.
func (s *DirectorService) Movies(ctx context.Context, id int64) ([]model.Movie, error) {
	var out []model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Directors.Movies(ctx, q, id)
		return err
	})
	return out, err
}
