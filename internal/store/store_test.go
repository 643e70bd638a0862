package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/filmvault/filmvault/internal/connector"
	"github.com/filmvault/filmvault/internal/connector/sqlite"
	"github.com/filmvault/filmvault/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	conn := sqlite.New()
	if err := conn.Connect(connector.ConnectionConfig{Driver: "sqlite", DSN: ":memory:"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	s := New(conn, nil)
	t.Cleanup(func() { s.Close() })

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func createMovie(t *testing.T, s *Store, title, imdb string) *model.Movie {
	t.Helper()
	m, err := s.Movies.Create(context.Background(), s.DB(), model.MovieCreate{
		Title:       title,
		ReleaseYear: 1999,
		Duration:    136,
		IMDbCode:    imdb,
	})
	if err != nil {
		t.Fatalf("create movie %q: %v", title, err)
	}
	return m
}

func createActor(t *testing.T, s *Store, name, imdb string) *model.Actor {
	t.Helper()
	a, err := s.Actors.Create(context.Background(), s.DB(), model.ActorCreate{
		Name:     name,
		LastName: name + "son",
		IMDbCode: imdb,
	})
	if err != nil {
		t.Fatalf("create actor %q: %v", name, err)
	}
	return a
}

func TestMovieCRUD(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	rating := 8.7
	m, err := s.Movies.Create(ctx, db, model.MovieCreate{
		Title:       "The Matrix",
		ReleaseYear: 1999,
		Duration:    136,
		Description: strPtr("A hacker learns the truth."),
		IMDbCode:    "tt0133093",
		Rating:      &rating,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == 0 {
		t.Fatal("expected a generated movie_id")
	}
	if m.Rating == nil || *m.Rating != 8.7 {
		t.Errorf("rating = %v, want 8.7", m.Rating)
	}

	got, err := s.Movies.FindByIMDb(ctx, db, "tt0133093")
	if err != nil {
		t.Fatalf("FindByIMDb: %v", err)
	}
	if got.ID != m.ID {
		t.Errorf("FindByIMDb id = %d, want %d", got.ID, m.ID)
	}

	if _, err := s.Movies.FindByTitleYear(ctx, db, "The Matrix", 1999); err != nil {
		t.Errorf("FindByTitleYear: %v", err)
	}
	if _, err := s.Movies.FindByTitleYear(ctx, db, "The Matrix", 2003); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindByTitleYear(2003) err = %v, want ErrNotFound", err)
	}

	updated, err := s.Movies.Update(ctx, db, m.ID, map[string]interface{}{
		"title":       "The Matrix (1999)",
		"description": nil,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "The Matrix (1999)" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Description != nil {
		t.Errorf("description = %q, want nil", *updated.Description)
	}
	if updated.Duration != 136 {
		t.Errorf("duration changed to %d", updated.Duration)
	}

	if err := s.Movies.Delete(ctx, db, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Movies.Get(ctx, db, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
	if err := s.Movies.Delete(ctx, db, m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestListPaginationAndCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, code := range []string{"tt01", "tt02", "tt03", "tt04", "tt05"} {
		createMovie(t, s, "Movie "+string(rune('A'+i)), code)
	}

	tests := []struct {
		name          string
		offset, limit int
		want          []string
	}{
		{"first page", 0, 2, []string{"Movie A", "Movie B"}},
		{"second page", 2, 2, []string{"Movie C", "Movie D"}},
		{"tail", 4, 10, []string{"Movie E"}},
		{"past the end", 10, 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			movies, err := s.Movies.List(ctx, s.DB(), tt.offset, tt.limit)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if movies == nil {
				t.Fatal("List returned a nil slice")
			}
			if len(movies) != len(tt.want) {
				t.Fatalf("got %d movies, want %d", len(movies), len(tt.want))
			}
			for i, m := range movies {
				if m.Title != tt.want[i] {
					t.Errorf("movies[%d] = %q, want %q", i, m.Title, tt.want[i])
				}
			}
		})
	}

	n, err := s.Movies.Count(ctx, s.DB())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 5 {
		t.Errorf("Count = %d, want 5", n)
	}
}

func TestDuplicateIMDbCode(t *testing.T) {
	s := newTestStore(t)
	createMovie(t, s, "Heat", "tt0113277")

	_, err := s.Movies.Create(context.Background(), s.DB(), model.MovieCreate{
		Title: "Heat", ReleaseYear: 1995, Duration: 170, IMDbCode: "tt0113277",
	})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestCastOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	m := createMovie(t, s, "Heat", "tt0113277")
	pacino := createActor(t, s, "Al", "nm0000199")
	deniro := createActor(t, s, "Robert", "nm0000134")
	kilmer := createActor(t, s, "Val", "nm0000174")

	links := []model.MovieActor{
		{MovieID: m.ID, ActorID: kilmer.ID},
		{MovieID: m.ID, ActorID: deniro.ID, CharacterName: strPtr("Neil McCauley"), BillingOrder: intPtr(2)},
		{MovieID: m.ID, ActorID: pacino.ID, CharacterName: strPtr("Vincent Hanna"), BillingOrder: intPtr(1)},
	}
	for _, l := range links {
		if err := s.Movies.LinkActor(ctx, db, l); err != nil {
			t.Fatalf("LinkActor(%d): %v", l.ActorID, err)
		}
	}

	cast, err := s.Movies.Actors(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("Actors: %v", err)
	}
	want := []int64{pacino.ID, deniro.ID, kilmer.ID}
	if len(cast) != len(want) {
		t.Fatalf("got %d cast members, want %d", len(cast), len(want))
	}
	for i, c := range cast {
		if c.ID != want[i] {
			t.Errorf("cast[%d] = actor %d, want %d", i, c.ID, want[i])
		}
	}
	if cast[0].CharacterName == nil || *cast[0].CharacterName != "Vincent Hanna" {
		t.Errorf("character = %v", cast[0].CharacterName)
	}
	if cast[2].BillingOrder != nil {
		t.Errorf("unbilled actor has billing order %d", *cast[2].BillingOrder)
	}

	if err := s.Movies.LinkActor(ctx, db, links[0]); !errors.Is(err, ErrDuplicate) {
		t.Errorf("relinking err = %v, want ErrDuplicate", err)
	}

	movies, err := s.Actors.Movies(ctx, db, deniro.ID)
	if err != nil {
		t.Fatalf("Actors.Movies: %v", err)
	}
	if len(movies) != 1 || movies[0].ID != m.ID {
		t.Errorf("Actors.Movies = %+v", movies)
	}

	if err := s.Movies.UnlinkActor(ctx, db, m.ID, kilmer.ID); err != nil {
		t.Fatalf("UnlinkActor: %v", err)
	}
	if err := s.Movies.UnlinkActor(ctx, db, m.ID, kilmer.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second UnlinkActor err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMovieCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	m := createMovie(t, s, "Ronin", "tt0122690")
	a := createActor(t, s, "Jean", "nm0001685")
	d, err := s.Directors.Create(ctx, db, model.DirectorCreate{
		FirstName: "John", LastName: "Frankenheimer", IMDbCode: "nm0001239",
	})
	if err != nil {
		t.Fatalf("create director: %v", err)
	}

	if err := s.Movies.LinkActor(ctx, db, model.MovieActor{MovieID: m.ID, ActorID: a.ID}); err != nil {
		t.Fatalf("LinkActor: %v", err)
	}
	if err := s.Movies.LinkDirector(ctx, db, m.ID, d.ID); err != nil {
		t.Fatalf("LinkDirector: %v", err)
	}
	if _, err := s.Facts.Create(ctx, db, m.ID, model.MovieFactCreate{FactText: "Shot in France."}); err != nil {
		t.Fatalf("create fact: %v", err)
	}

	if err := s.Movies.Delete(ctx, db, m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	for _, tbl := range []string{"movie_actors", "movie_directors", "movie_facts"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+tbl); err != nil {
			t.Fatalf("count %s: %v", tbl, err)
		}
		if n != 0 {
			t.Errorf("%s has %d rows after movie delete", tbl, n)
		}
	}

	if _, err := s.Actors.Get(ctx, db, a.ID); err != nil {
		t.Errorf("actor removed with movie: %v", err)
	}
	if _, err := s.Directors.Get(ctx, db, d.ID); err != nil {
		t.Errorf("director removed with movie: %v", err)
	}
}

func TestDirectorNaturalKey(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	in := model.DirectorCreate{FirstName: "Michael", LastName: "Mann", IMDbCode: "nm0000520"}
	d, err := s.Directors.Create(ctx, db, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := s.Directors.FindByNaturalKey(ctx, db, in)
	if err != nil {
		t.Fatalf("FindByNaturalKey: %v", err)
	}
	if got.ID != d.ID {
		t.Errorf("id = %d, want %d", got.ID, d.ID)
	}

	in.Nationality = strPtr("American")
	if _, err := s.Directors.FindByNaturalKey(ctx, db, in); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestActorBirthDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	born, err := model.ParseDate("1940-04-25")
	if err != nil {
		t.Fatal(err)
	}
	in := model.ActorCreate{Name: "Al", LastName: "Pacino", BirthDate: &born, IMDbCode: "nm0000199"}
	a, err := s.Actors.Create(ctx, s.DB(), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.BirthDate == nil || a.BirthDate.String() != "1940-04-25" {
		t.Fatalf("birth_date = %v", a.BirthDate)
	}

	found, err := s.Actors.FindByNaturalKey(ctx, s.DB(), in)
	if err != nil {
		t.Fatalf("FindByNaturalKey: %v", err)
	}
	if found.ID != a.ID {
		t.Errorf("id = %d, want %d", found.ID, a.ID)
	}
}

func TestFacts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	db := s.DB()

	m1 := createMovie(t, s, "Alien", "tt0078748")
	m2 := createMovie(t, s, "Aliens", "tt0090605")
	m3 := createMovie(t, s, "Alien 3", "tt0103644")

	f1, err := s.Facts.Create(ctx, db, m1.ID, model.MovieFactCreate{FactText: "Nostromo crew of seven.", Source: strPtr("trivia")})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Facts.Create(ctx, db, m1.ID, model.MovieFactCreate{FactText: "Chestburster scene."}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Facts.Create(ctx, db, m2.ID, model.MovieFactCreate{FactText: "Directed by Cameron."}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	facts, err := s.Facts.ForMovie(ctx, db, m1.ID)
	if err != nil {
		t.Fatalf("ForMovie: %v", err)
	}
	if len(facts) != 2 || facts[0].ID != f1.ID {
		t.Fatalf("ForMovie = %+v", facts)
	}

	byMovie, err := s.Facts.ForMovies(ctx, db, []int64{m1.ID, m2.ID, m3.ID})
	if err != nil {
		t.Fatalf("ForMovies: %v", err)
	}
	if len(byMovie[m1.ID]) != 2 || len(byMovie[m2.ID]) != 1 {
		t.Errorf("ForMovies counts = %d, %d", len(byMovie[m1.ID]), len(byMovie[m2.ID]))
	}
	if f, ok := byMovie[m3.ID]; !ok || f == nil || len(f) != 0 {
		t.Errorf("movie without facts = %v (present %v)", f, ok)
	}

	if err := s.Facts.Delete(ctx, db, m2.ID, f1.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete through wrong movie err = %v, want ErrNotFound", err)
	}
	if err := s.Facts.Delete(ctx, db, m1.ID, f1.ID); err != nil {
		t.Errorf("Delete: %v", err)
	}
}

func TestInTxRollback(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := s.InTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := s.Movies.Create(ctx, tx, model.MovieCreate{
			Title: "Tenet", ReleaseYear: 2020, Duration: 150, IMDbCode: "tt6723592",
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx err = %v, want boom", err)
	}

	n, err := s.Movies.Count(ctx, s.DB())
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d after rollback, want 0", n)
	}

	err = s.InTx(ctx, func(tx *sqlx.Tx) error {
		_, err := s.Movies.Create(ctx, tx, model.MovieCreate{
			Title: "Tenet", ReleaseYear: 2020, Duration: 150, IMDbCode: "tt6723592",
		})
		return err
	})
	if err != nil {
		t.Fatalf("InTx commit: %v", err)
	}
	if n, _ := s.Movies.Count(ctx, s.DB()); n != 1 {
		t.Errorf("Count = %d after commit, want 1", n)
	}
}
