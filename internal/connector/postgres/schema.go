package postgres

import "github.com/filmvault/filmvault/internal/connector"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {movies} (
		movie_id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		title VARCHAR(60) NOT NULL,
		release_year INTEGER NOT NULL,
		duration INTEGER NOT NULL,
		description TEXT,
		imdb_code VARCHAR(20) NOT NULL,
		rating NUMERIC(3,1),
		CONSTRAINT uq_movies_imdb_code UNIQUE (imdb_code)
	)`,

	`CREATE TABLE IF NOT EXISTS {directors} (
		director_id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		first_name VARCHAR(45) NOT NULL,
		last_name VARCHAR(45) NOT NULL,
		nationality VARCHAR(45),
		imdb_code VARCHAR(20) NOT NULL,
		CONSTRAINT uq_directors_imdb_code UNIQUE (imdb_code)
	)`,

	`CREATE TABLE IF NOT EXISTS {actors} (
		actor_id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		name VARCHAR(45) NOT NULL,
		last_name VARCHAR(45) NOT NULL,
		birth_date DATE,
		nationality VARCHAR(45),
		bio TEXT,
		imdb_code VARCHAR(20) NOT NULL,
		CONSTRAINT uq_actors_imdb_code UNIQUE (imdb_code)
	)`,

	`CREATE TABLE IF NOT EXISTS {movie_actors} (
		movie_id INTEGER NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		actor_id INTEGER NOT NULL REFERENCES {actors} (actor_id) ON DELETE CASCADE ON UPDATE CASCADE,
		character_name VARCHAR(100),
		billing_order INTEGER,
		PRIMARY KEY (movie_id, actor_id)
	)`,

	`CREATE TABLE IF NOT EXISTS {movie_directors} (
		movie_id INTEGER NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		director_id INTEGER NOT NULL REFERENCES {directors} (director_id) ON DELETE CASCADE ON UPDATE CASCADE,
		PRIMARY KEY (movie_id, director_id)
	)`,

	`CREATE TABLE IF NOT EXISTS {movie_facts} (
		fact_id INTEGER GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
		movie_id INTEGER NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		fact_text VARCHAR(1000) NOT NULL,
		source VARCHAR(255)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_movie_facts_movie_id ON {movie_facts} (movie_id)`,
}

// Migrations returns the catalogue DDL for PostgreSQL.
func (c *PostgresConnector) Migrations() []string {
	return c.ExpandDDL(migrations, connector.CatalogTables...)
}
