package model

// Actor is a row of the actors table.
type Actor struct {
	ID          int64   `json:"actor_id" db:"actor_id"`
	Name        string  `json:"name" db:"name"`
	LastName    string  `json:"last_name" db:"last_name"`
	BirthDate   *Date   `json:"birth_date" db:"birth_date"`
	Nationality *string `json:"nationality" db:"nationality"`
	Bio         *string `json:"bio" db:"bio"`
	IMDbCode    string  `json:"imdb_code" db:"imdb_code"`
}

// ActorCreate is the payload for creating an actor.
type ActorCreate struct {
	Name        string  `json:"name" yaml:"name" validate:"required,max=45"`
	LastName    string  `json:"last_name" yaml:"last_name" validate:"required,max=45"`
	BirthDate   *Date   `json:"birth_date" yaml:"birth_date"`
	Nationality *string `json:"nationality" yaml:"nationality" validate:"omitempty,max=45"`
	Bio         *string `json:"bio" yaml:"bio"`
	IMDbCode    string  `json:"imdb_code" yaml:"imdb_code" validate:"required,max=20"`
}

func (a ActorCreate) Record() map[string]interface{} {
	return map[string]interface{}{
		"name":        a.Name,
		"last_name":   a.LastName,
		"birth_date":  nullable(a.BirthDate),
		"nationality": nullable(a.Nationality),
		"bio":         nullable(a.Bio),
		"imdb_code":   a.IMDbCode,
	}
}

// ActorUpdate is a partial update of an actor.
type ActorUpdate struct {
	Name        Optional[string] `json:"name" validate:"omitempty,max=45"`
	LastName    Optional[string] `json:"last_name" validate:"omitempty,max=45"`
	BirthDate   Optional[Date]   `json:"birth_date"`
	Nationality Optional[string] `json:"nationality" validate:"omitempty,max=45"`
	Bio         Optional[string] `json:"bio"`
	IMDbCode    Optional[string] `json:"imdb_code" validate:"omitempty,max=20"`
}

func (u ActorUpdate) Columns() *ColumnSet {
	c := newColumnSet()
	putRequired(c, "name", u.Name)
	putRequired(c, "last_name", u.LastName)
	putNullable(c, "birth_date", u.BirthDate)
	putNullable(c, "nationality", u.Nationality)
	putNullable(c, "bio", u.Bio)
	putRequired(c, "imdb_code", u.IMDbCode)
	return c
}
