package model

// Director is a row of the directors table.
type Director struct {
	ID          int64   `json:"director_id" db:"director_id"`
	FirstName   string  `json:"first_name" db:"first_name"`
	LastName    string  `json:"last_name" db:"last_name"`
	Nationality *string `json:"nationality" db:"nationality"`
	IMDbCode    string  `json:"imdb_code" db:"imdb_code"`
}

// DirectorCreate is the payload for creating a director.
type DirectorCreate struct {
	FirstName   string  `json:"first_name" yaml:"first_name" validate:"required,max=45"`
	LastName    string  `json:"last_name" yaml:"last_name" validate:"required,max=45"`
	Nationality *string `json:"nationality" yaml:"nationality" validate:"omitempty,max=45"`
	IMDbCode    string  `json:"imdb_code" yaml:"imdb_code" validate:"required,max=20"`
}

func (d DirectorCreate) Record() map[string]interface{} {
	return map[string]interface{}{
		"first_name":  d.FirstName,
		"last_name":   d.LastName,
		"nationality": nullable(d.Nationality),
		"imdb_code":   d.IMDbCode,
	}
}

// DirectorUpdate is a partial update of a director.
type DirectorUpdate struct {
	FirstName   Optional[string] `json:"first_name" validate:"omitempty,max=45"`
	LastName    Optional[string] `json:"last_name" validate:"omitempty,max=45"`
	Nationality Optional[string] `json:"nationality" validate:"omitempty,max=45"`
	IMDbCode    Optional[string] `json:"imdb_code" validate:"omitempty,max=20"`
}

func (u DirectorUpdate) Columns() *ColumnSet {
	c := newColumnSet()
	putRequired(c, "first_name", u.FirstName)
	putRequired(c, "last_name", u.LastName)
	putNullable(c, "nationality", u.Nationality)
	putRequired(c, "imdb_code", u.IMDbCode)
	return c
}
