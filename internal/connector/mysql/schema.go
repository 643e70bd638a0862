package mysql

import "github.com/filmvault/filmvault/internal/connector"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS {movies} (
		movie_id INT NOT NULL AUTO_INCREMENT,
		title VARCHAR(60) NOT NULL,
		release_year INT NOT NULL,
		duration INT NOT NULL,
		description TEXT NULL,
		imdb_code VARCHAR(20) NOT NULL,
		rating DECIMAL(3,1) NULL,
		PRIMARY KEY (movie_id),
		UNIQUE KEY uq_movies_imdb_code (imdb_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS {directors} (
		director_id INT NOT NULL AUTO_INCREMENT,
		first_name VARCHAR(45) NOT NULL,
		last_name VARCHAR(45) NOT NULL,
		nationality VARCHAR(45) NULL,
		imdb_code VARCHAR(20) NOT NULL,
		PRIMARY KEY (director_id),
		UNIQUE KEY uq_directors_imdb_code (imdb_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS {actors} (
		actor_id INT NOT NULL AUTO_INCREMENT,
		name VARCHAR(45) NOT NULL,
		last_name VARCHAR(45) NOT NULL,
		birth_date DATE NULL,
		nationality VARCHAR(45) NULL,
		bio TEXT NULL,
		imdb_code VARCHAR(20) NOT NULL,
		PRIMARY KEY (actor_id),
		UNIQUE KEY uq_actors_imdb_code (imdb_code)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS {movie_actors} (
		movie_id INT NOT NULL,
		actor_id INT NOT NULL,
		character_name VARCHAR(100) NULL,
		billing_order INT NULL,
		PRIMARY KEY (movie_id, actor_id),
		CONSTRAINT fk_movie_actors_movie FOREIGN KEY (movie_id)
			REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_movie_actors_actor FOREIGN KEY (actor_id)
			REFERENCES {actors} (actor_id) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS {movie_directors} (
		movie_id INT NOT NULL,
		director_id INT NOT NULL,
		PRIMARY KEY (movie_id, director_id),
		CONSTRAINT fk_movie_directors_movie FOREIGN KEY (movie_id)
			REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		CONSTRAINT fk_movie_directors_director FOREIGN KEY (director_id)
			REFERENCES {directors} (director_id) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS {movie_facts} (
		fact_id INT NOT NULL AUTO_INCREMENT,
		movie_id INT NOT NULL,
		fact_text VARCHAR(1000) NOT NULL,
		source VARCHAR(255) NULL,
		PRIMARY KEY (fact_id),
		CONSTRAINT fk_movie_facts_movie FOREIGN KEY (movie_id)
			REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrations returns the catalogue DDL for MySQL.
func (c *MySQLConnector) Migrations() []string {
	return c.ExpandDDL(migrations, connector.CatalogTables...)
}
