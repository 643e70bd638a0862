package model

// MovieActor is a row of the movie_actors association table.
type MovieActor struct {
	MovieID       int64   `json:"movie_id" db:"movie_id"`
	ActorID       int64   `json:"actor_id" db:"actor_id"`
	CharacterName *string `json:"character_name" db:"character_name"`
	BillingOrder  *int    `json:"billing_order" db:"billing_order"`
}

func (m MovieActor) Record() map[string]interface{} {
	return map[string]interface{}{
		"movie_id":       m.MovieID,
		"actor_id":       m.ActorID,
		"character_name": nullable(m.CharacterName),
		"billing_order":  nullable(m.BillingOrder),
	}
}

// CastMember is an actor as credited on one movie.
type CastMember struct {
	Actor
	CharacterName *string `json:"character_name" db:"character_name"`
	BillingOrder  *int    `json:"billing_order" db:"billing_order"`
}

// CastingCreate links an existing actor to a movie.
type CastingCreate struct {
	ActorID       int64   `json:"actor_id" yaml:"actor_id" validate:"required,gt=0"`
	CharacterName *string `json:"character_name" yaml:"character_name" validate:"omitempty,max=100"`
	BillingOrder  *int    `json:"billing_order" yaml:"billing_order" validate:"omitempty,gte=0"`
}

// MovieDirector is a row of the movie_directors association table.
type MovieDirector struct {
	MovieID    int64 `json:"movie_id" db:"movie_id"`
	DirectorID int64 `json:"director_id" db:"director_id"`
}

// DirectorLink links an existing director to a movie.
type DirectorLink struct {
	DirectorID int64 `json:"director_id" validate:"required,gt=0"`
}

// MovieFact is a row of the movie_facts table. Facts are owned by exactly
// one movie and go away with it.
type MovieFact struct {
	ID       int64   `json:"fact_id" db:"fact_id"`
	MovieID  int64   `json:"movie_id" db:"movie_id"`
	FactText string  `json:"fact_text" db:"fact_text"`
	Source   *string `json:"source" db:"source"`
}

// MovieFactCreate is the payload for adding a fact to a movie.
type MovieFactCreate struct {
	FactText string  `json:"fact_text" yaml:"fact_text" validate:"required,max=1000"`
	Source   *string `json:"source" yaml:"source" validate:"omitempty,max=255"`
}

// Record returns the insert columns for a fact of the given movie.
func (f MovieFactCreate) Record(movieID int64) map[string]interface{} {
	return map[string]interface{}{
		"movie_id":  movieID,
		"fact_text": f.FactText,
		"source":    nullable(f.Source),
	}
}
