package mssql

import (
	"fmt"
	"strings"
)

// tableDDL holds the column definitions of each catalogue table; {name}
// tokens are replaced with qualified table names.
var tableDDL = []struct {
	name string
	body string
}{
	{"movies", `
		movie_id INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
		title NVARCHAR(60) NOT NULL,
		release_year INT NOT NULL,
		duration INT NOT NULL,
		description NVARCHAR(MAX) NULL,
		imdb_code NVARCHAR(20) NOT NULL CONSTRAINT uq_movies_imdb_code UNIQUE,
		rating DECIMAL(3,1) NULL`},
	{"directors", `
		director_id INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
		first_name NVARCHAR(45) NOT NULL,
		last_name NVARCHAR(45) NOT NULL,
		nationality NVARCHAR(45) NULL,
		imdb_code NVARCHAR(20) NOT NULL CONSTRAINT uq_directors_imdb_code UNIQUE`},
	{"actors", `
		actor_id INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
		name NVARCHAR(45) NOT NULL,
		last_name NVARCHAR(45) NOT NULL,
		birth_date DATE NULL,
		nationality NVARCHAR(45) NULL,
		bio NVARCHAR(MAX) NULL,
		imdb_code NVARCHAR(20) NOT NULL CONSTRAINT uq_actors_imdb_code UNIQUE`},
	{"movie_actors", `
		movie_id INT NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		actor_id INT NOT NULL REFERENCES {actors} (actor_id) ON DELETE CASCADE ON UPDATE CASCADE,
		character_name NVARCHAR(100) NULL,
		billing_order INT NULL,
		PRIMARY KEY (movie_id, actor_id)`},
	{"movie_directors", `
		movie_id INT NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		director_id INT NOT NULL REFERENCES {directors} (director_id) ON DELETE CASCADE ON UPDATE CASCADE,
		PRIMARY KEY (movie_id, director_id)`},
	{"movie_facts", `
		fact_id INT IDENTITY(1,1) NOT NULL PRIMARY KEY,
		movie_id INT NOT NULL REFERENCES {movies} (movie_id) ON DELETE CASCADE ON UPDATE CASCADE,
		fact_text NVARCHAR(1000) NOT NULL,
		source NVARCHAR(255) NULL`},
}

// Migrations returns the catalogue DDL for SQL Server. SQL Server has no
// CREATE TABLE IF NOT EXISTS, so each statement is guarded by OBJECT_ID.
func (c *MSSQLConnector) Migrations() []string {
	stmts := make([]string, 0, len(tableDDL))
	names := make([]string, 0, len(tableDDL))
	for _, t := range tableDDL {
		object := strings.ReplaceAll(c.Schema+"."+t.name, "'", "''")
		stmts = append(stmts, fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE {%s} (%s\n)", object, t.name, t.body))
		names = append(names, t.name)
	}
	return c.ExpandDDL(stmts, names...)
}
