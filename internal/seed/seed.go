// Package seed loads a YAML catalogue fixture through the service layer, so
// seeded rows obey the same validation and duplicate rules as API writes.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/filmvault/filmvault/internal/model"
	"github.com/filmvault/filmvault/internal/service"
)

// Fixture is the document layout of a seed file. People are referenced from
// movies by imdb_code.
type Fixture struct {
	Directors []model.DirectorCreate `yaml:"directors"`
	Actors    []model.ActorCreate    `yaml:"actors"`
	Movies    []MovieFixture         `yaml:"movies"`
}

// MovieFixture is a movie plus its links and facts.
type MovieFixture struct {
	model.MovieCreate `yaml:",inline"`
	Directors         []string                `yaml:"directors"`
	Cast              []CastFixture           `yaml:"cast"`
	Facts             []model.MovieFactCreate `yaml:"facts"`
}

// CastFixture links an actor, by imdb_code, to the enclosing movie.
type CastFixture struct {
	Actor         string  `yaml:"actor"`
	CharacterName *string `yaml:"character_name"`
	BillingOrder  *int    `yaml:"billing_order"`
}

// Report counts what a run created and skipped.
type Report struct {
	Created map[string]int `json:"created"`
	Skipped map[string]int `json:"skipped"`
}

func newReport() *Report {
	return &Report{Created: map[string]int{}, Skipped: map[string]int{}}
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a fixture document. Unknown keys are rejected.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Seeder applies fixtures to a catalogue.
type Seeder struct {
	catalog *service.Catalog
	logger  *slog.Logger
}

// New creates a Seeder.
func New(catalog *service.Catalog, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{catalog: catalog, logger: logger}
}

// Apply creates directors, actors and movies in that order, then the links
// and facts of each movie. Entities that already exist are skipped along with
// the links that need them; any other error stops the run.
func (s *Seeder) Apply(ctx context.Context, f *Fixture) (*Report, error) {
	rep := newReport()
	directors := make(map[string]int64, len(f.Directors))
	actors := make(map[string]int64, len(f.Actors))

	for _, in := range f.Directors {
		d, err := s.catalog.Directors.Create(ctx, in)
		if s.skip(rep, service.KindDirector, in.IMDbCode, err) {
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("director %s: %w", in.IMDbCode, err)
		}
		directors[in.IMDbCode] = d.ID
		rep.Created[service.KindDirector]++
	}

	for _, in := range f.Actors {
		a, err := s.catalog.Actors.Create(ctx, in)
		if s.skip(rep, service.KindActor, in.IMDbCode, err) {
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("actor %s: %w", in.IMDbCode, err)
		}
		actors[in.IMDbCode] = a.ID
		rep.Created[service.KindActor]++
	}

	for _, in := range f.Movies {
		m, err := s.catalog.Movies.Create(ctx, in.MovieCreate)
		if s.skip(rep, service.KindMovie, in.IMDbCode, err) {
			continue
		}
		if err != nil {
			return rep, fmt.Errorf("movie %s: %w", in.IMDbCode, err)
		}
		rep.Created[service.KindMovie]++

		if err := s.links(ctx, rep, m.ID, in, directors, actors); err != nil {
			return rep, fmt.Errorf("movie %s: %w", in.IMDbCode, err)
		}
	}

	s.logger.Info("seed applied", "created", rep.Created, "skipped", rep.Skipped)
	return rep, nil
}

func (s *Seeder) links(ctx context.Context, rep *Report, movieID int64, in MovieFixture, directors, actors map[string]int64) error {
	for _, code := range in.Directors {
		id, ok := directors[code]
		if !ok {
			s.logger.Warn("seed: director not created in this run, link skipped", "director", code, "movie", in.IMDbCode)
			rep.Skipped[service.KindMovieDirector]++
			continue
		}
		if _, err := s.catalog.Movies.AddDirector(ctx, movieID, model.DirectorLink{DirectorID: id}); err != nil {
			return err
		}
		rep.Created[service.KindMovieDirector]++
	}

	for _, c := range in.Cast {
		id, ok := actors[c.Actor]
		if !ok {
			s.logger.Warn("seed: actor not created in this run, link skipped", "actor", c.Actor, "movie", in.IMDbCode)
			rep.Skipped[service.KindMovieActor]++
			continue
		}
		_, err := s.catalog.Movies.AddActor(ctx, movieID, model.CastingCreate{
			ActorID:       id,
			CharacterName: c.CharacterName,
			BillingOrder:  c.BillingOrder,
		})
		if err != nil {
			return err
		}
		rep.Created[service.KindMovieActor]++
	}

	for _, fact := range in.Facts {
		if _, err := s.catalog.Movies.AddFact(ctx, movieID, fact); err != nil {
			return err
		}
		rep.Created[service.KindFact]++
	}
	return nil
}

// skip records an AlreadyExists failure and reports whether it was one.
func (s *Seeder) skip(rep *Report, kind, key string, err error) bool {
	if !errors.Is(err, service.ErrAlreadyExists) {
		return false
	}
	s.logger.Debug("seed: already exists", "kind", kind, "imdb_code", key)
	rep.Skipped[kind]++
	return true
}
