// Package service holds the catalogue's business rules: validation,
// duplicate detection, existence checks and the typed error taxonomy the
// transport layer maps to responses. Each exported operation runs in exactly
// one transaction.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/store"
)

// DuplicatePolicy selects the business key a create is checked against.
type DuplicatePolicy string

const (
	// DuplicateIMDb treats imdb_code alone as the key of every entity.
	DuplicateIMDb DuplicatePolicy = "imdb"
	// DuplicateNatural uses the legacy per-entity field tuples.
	DuplicateNatural DuplicatePolicy = "natural"
)

// ParseDuplicatePolicy maps a config value to a policy. Empty means imdb.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateIMDb:
		return DuplicateIMDb, nil
	case DuplicateNatural:
		return DuplicateNatural, nil
	default:
		return "", fmt.Errorf("unknown duplicate key policy %q (want imdb or natural)", s)
	}
}

// Options configures the catalogue services.
type Options struct {
	DuplicateKey DuplicatePolicy
	Validator    *Validator
	Logger       *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.DuplicateKey == "" {
		o.DuplicateKey = DuplicateIMDb
	}
	if o.Validator == nil {
		o.Validator = NewValidator()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Catalog bundles the entity services over one store.
type Catalog struct {
	Movies    *MovieService
	Directors *DirectorService
	Actors    *ActorService
}

// NewCatalog builds all entity services with shared options.
func NewCatalog(st *store.Store, opts Options) *Catalog {
	opts = opts.withDefaults()
	return &Catalog{
		Movies:    NewMovieService(st, opts),
		Directors: NewDirectorService(st, opts),
		Actors:    NewActorService(st, opts),
	}
}

// base carries what every entity service needs.
type base struct {
	store  *store.Store
	opts   Options
	logger *slog.Logger
}

func newBase(st *store.Store, opts Options, kind string) base {
	opts = opts.withDefaults()
	return base{store: st, opts: opts, logger: opts.Logger.With("service", kind)}
}

// tx runs fn as the single unit of work of one service call.
func (b base) tx(ctx context.Context, fn func(q store.Session) error) error {
	return b.store.InTx(ctx, func(tx *sqlx.Tx) error { return fn(tx) })
}

// notFound translates store.ErrNotFound into a typed NotFoundError.
func notFound(err error, kind string, id int64) error {
	if errors.Is(err, store.ErrNotFound) {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return err
}

// duplicate translates a unique-key violation into AlreadyExistsError.
func duplicate(err error, kind, key string) error {
	if errors.Is(err, store.ErrDuplicate) {
		return &AlreadyExistsError{Kind: kind, Key: key}
	}
	return err
}

// found reports whether a duplicate lookup hit, passing real errors through.
func found(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
