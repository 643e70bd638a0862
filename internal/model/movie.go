package model

// Movie is a row of the movies table.
type Movie struct {
	ID          int64    `json:"movie_id" db:"movie_id"`
	Title       string   `json:"title" db:"title"`
	ReleaseYear int      `json:"release_year" db:"release_year"`
	Duration    int      `json:"duration" db:"duration"` // minutes
	Description *string  `json:"description" db:"description"`
	IMDbCode    string   `json:"imdb_code" db:"imdb_code"`
	Rating      *float64 `json:"rating" db:"rating"`
}

// MovieCreate is the payload for creating a movie. Clients never supply
// the id.
type MovieCreate struct {
	Title       string   `json:"title" yaml:"title" validate:"required,max=60"`
	ReleaseYear int      `json:"release_year" yaml:"release_year" validate:"required,gte=1888,lte=2100"`
	Duration    int      `json:"duration" yaml:"duration" validate:"required,gt=0"`
	Description *string  `json:"description" yaml:"description"`
	IMDbCode    string   `json:"imdb_code" yaml:"imdb_code" validate:"required,max=20"`
	Rating      *float64 `json:"rating" yaml:"rating" validate:"omitempty,gte=0,lte=10"`
}

// Record returns the insert columns for the movie.
func (m MovieCreate) Record() map[string]interface{} {
	return map[string]interface{}{
		"title":        m.Title,
		"release_year": m.ReleaseYear,
		"duration":     m.Duration,
		"description":  nullable(m.Description),
		"imdb_code":    m.IMDbCode,
		"rating":       nullable(m.Rating),
	}
}

// MovieUpdate is a partial update. Absent keys leave the column untouched,
// null clears an optional column.
type MovieUpdate struct {
	Title       Optional[string]  `json:"title" validate:"omitempty,max=60"`
	ReleaseYear Optional[int]     `json:"release_year" validate:"omitempty,gte=1888,lte=2100"`
	Duration    Optional[int]     `json:"duration" validate:"omitempty,gt=0"`
	Description Optional[string]  `json:"description"`
	IMDbCode    Optional[string]  `json:"imdb_code" validate:"omitempty,max=20"`
	Rating      Optional[float64] `json:"rating" validate:"omitempty,gte=0,lte=10"`
}

// Columns returns the columns carried by the update.
func (u MovieUpdate) Columns() *ColumnSet {
	c := newColumnSet()
	putRequired(c, "title", u.Title)
	putRequired(c, "release_year", u.ReleaseYear)
	putRequired(c, "duration", u.Duration)
	putNullable(c, "description", u.Description)
	putRequired(c, "imdb_code", u.IMDbCode)
	putNullable(c, "rating", u.Rating)
	return c
}

// MovieWithFacts is a movie with its facts eager-loaded.
type MovieWithFacts struct {
	Movie
	Facts []MovieFact `json:"facts"`
}
