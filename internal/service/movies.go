package service

import (
	"context"
	"fmt"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/store"
)

// MovieService manages movies, their cast, directors and facts.
type MovieService struct {
	base
}

// NewMovieService returns a service backed by st.
func NewMovieService(st *store.Store, opts Options) *MovieService {
	return &MovieService{base: newBase(st, opts, KindMovie)}
}

// Create validates in, rejects duplicates and inserts the movie.
func (s *MovieService) Create(ctx context.Context, in model.MovieCreate) (*model.Movie, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	key := s.duplicateKey(in)
	var out *model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		if s.opts.DuplicateKey == DuplicateNatural {
			_, err = s.store.Movies.FindByTitleYear(ctx, q, in.Title, in.ReleaseYear)
		} else {
			_, err = s.store.Movies.FindByIMDb(ctx, q, in.IMDbCode)
		}
		exists, err := found(err)
		if err != nil {
			return err
		}
		if exists {
			return &AlreadyExistsError{Kind: KindMovie, Key: key}
		}

		out, err = s.store.Movies.Create(ctx, q, in)
		return duplicate(err, KindMovie, "imdb_code "+in.IMDbCode)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("movie created", "movie_id", out.ID, "imdb_code", out.IMDbCode)
	return out, nil
}

func (s *MovieService) duplicateKey(in model.MovieCreate) string {
	if s.opts.DuplicateKey == DuplicateNatural {
		return fmt.Sprintf("title %q and release_year %d", in.Title, in.ReleaseYear)
	}
	return "imdb_code " + in.IMDbCode
}

// Get returns the movie with id or a NotFoundError.
func (s *MovieService) Get(ctx context.Context, id int64) (*model.Movie, error) {
	var out *model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.get(ctx, q, id)
		return err
	})
	return out, err
}

func (s *MovieService) get(ctx context.Context, q store.Session, id int64) (*model.Movie, error) {
	m, err := s.store.Movies.Get(ctx, q, id)
	if err != nil {
		return nil, notFound(err, KindMovie, id)
	}
	return m, nil
}

// List pages through movies. skip and limit go to the database as given.
func (s *MovieService) List(ctx context.Context, skip, limit int) ([]model.Movie, error) {
	var out []model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		out, err = s.store.Movies.List(ctx, q, skip, limit)
		return err
	})
	return out, err
}

// Count returns the total number of movies.
func (s *MovieService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.tx(ctx, func(q store.Session) error {
		var err error
		n, err = s.store.Movies.Count(ctx, q)
		return err
	})
	return n, err
}

// Update applies the fields present in in. Explicit nulls clear optional
// columns; nulls and empty values on required columns are rejected.
func (s *MovieService) Update(ctx context.Context, id int64, in model.MovieUpdate) (*model.Movie, error) {
	cols := in.Columns()
	if err := requiredPresent(cols); err != nil {
		return nil, err
	}
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	var out *model.Movie
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Movies.Update(ctx, q, id, cols.Values)
		if err != nil {
			return duplicate(err, KindMovie, fmt.Sprintf("imdb_code %v", cols.Values["imdb_code"]))
		}
		return nil
	})
	return out, err
}

// Delete removes a movie with its cast, director links and facts.
func (s *MovieService) Delete(ctx context.Context, id int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		return notFound(s.store.Movies.Delete(ctx, q, id), KindMovie, id)
	})
}

// Actors returns the cast of a movie in billing order.
func (s *MovieService) Actors(ctx context.Context, id int64) ([]model.CastMember, error) {
	var out []model.CastMember
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Movies.Actors(ctx, q, id)
		return err
	})
	return out, err
}

// Directors returns the directors of a movie.
func (s *MovieService) Directors(ctx context.Context, id int64) ([]model.Director, error) {
	var out []model.Director
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, id); err != nil {
			return err
		}
		var err error
		out, err = s.store.Movies.Directors(ctx, q, id)
		return err
	})
	return out, err
}

// WithFacts returns a movie with its facts loaded.
func (s *MovieService) WithFacts(ctx context.Context, id int64) (*model.MovieWithFacts, error) {
	var out *model.MovieWithFacts
	err := s.tx(ctx, func(q store.Session) error {
		m, err := s.get(ctx, q, id)
		if err != nil {
			return err
		}
		facts, err := s.store.Facts.ForMovie(ctx, q, id)
		if err != nil {
			return err
		}
		out = &model.MovieWithFacts{Movie: *m, Facts: facts}
		return nil
	})
	return out, err
}

// ListWithFacts pages through movies and loads the facts of the whole page
// in one extra query.
func (s *MovieService) ListWithFacts(ctx context.Context, skip, limit int) ([]model.MovieWithFacts, error) {
	var out []model.MovieWithFacts
	err := s.tx(ctx, func(q store.Session) error {
		movies, err := s.store.Movies.List(ctx, q, skip, limit)
		if err != nil {
			return err
		}
		ids := make([]int64, len(movies))
		for i, m := range movies {
			ids[i] = m.ID
		}
		facts, err := s.store.Facts.ForMovies(ctx, q, ids)
		if err != nil {
			return err
		}

		out = make([]model.MovieWithFacts, len(movies))
		for i, m := range movies {
			out[i] = model.MovieWithFacts{Movie: m, Facts: facts[m.ID]}
		}
		return nil
	})
	return out, err
}

// AddActor casts an existing actor in an existing movie.
func (s *MovieService) AddActor(ctx context.Context, movieID int64, in model.CastingCreate) (*model.MovieActor, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	link := model.MovieActor{
		MovieID:       movieID,
		ActorID:       in.ActorID,
		CharacterName: in.CharacterName,
		BillingOrder:  in.BillingOrder,
	}
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		if _, err := s.store.Actors.Get(ctx, q, in.ActorID); err != nil {
			return notFound(err, KindActor, in.ActorID)
		}
		err := s.store.Movies.LinkActor(ctx, q, link)
		return duplicate(err, KindMovieActor, fmt.Sprintf("movie_id %d and actor_id %d", movieID, in.ActorID))
	})
	if err != nil {
		return nil, err
	}
	return &link, nil
}

// RemoveActor takes an actor off a movie's cast.
func (s *MovieService) RemoveActor(ctx context.Context, movieID, actorID int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		return notFound(s.store.Movies.UnlinkActor(ctx, q, movieID, actorID), KindMovieActor, actorID)
	})
}

// AddDirector links an existing director to an existing movie.
func (s *MovieService) AddDirector(ctx context.Context, movieID int64, in model.DirectorLink) (*model.MovieDirector, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		if _, err := s.store.Directors.Get(ctx, q, in.DirectorID); err != nil {
			return notFound(err, KindDirector, in.DirectorID)
		}
		err := s.store.Movies.LinkDirector(ctx, q, movieID, in.DirectorID)
		return duplicate(err, KindMovieDirector, fmt.Sprintf("movie_id %d and director_id %d", movieID, in.DirectorID))
	})
	if err != nil {
		return nil, err
	}
	return &model.MovieDirector{MovieID: movieID, DirectorID: in.DirectorID}, nil
}

// RemoveDirector unlinks a director from a movie. Both rows survive.
func (s *MovieService) RemoveDirector(ctx context.Context, movieID, directorID int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		return notFound(s.store.Movies.UnlinkDirector(ctx, q, movieID, directorID), KindMovieDirector, directorID)
	})
}

// AddFact attaches a fact to a movie.
func (s *MovieService) AddFact(ctx context.Context, movieID int64, in model.MovieFactCreate) (*model.MovieFact, error) {
	if err := s.opts.Validator.Struct(in); err != nil {
		return nil, err
	}

	var out *model.MovieFact
	err := s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		var err error
		out, err = s.store.Facts.Create(ctx, q, movieID, in)
		return err
	})
	return out, err
}

// DeleteFact removes a fact of the given movie.
func (s *MovieService) DeleteFact(ctx context.Context, movieID, factID int64) error {
	return s.tx(ctx, func(q store.Session) error {
		if _, err := s.get(ctx, q, movieID); err != nil {
			return err
		}
		return notFound(s.store.Facts.Delete(ctx, q, movieID, factID), KindFact, factID)
	})
}
