package model

// AggregateResult is the row returned by the aggregate procedure.
type AggregateResult struct {
	Operation string      `json:"operation"`
	Result    interface{} `json:"result"`
}

// ProcedureStatus reports the outcome of a side-effecting procedure.
type ProcedureStatus struct {
	Procedure string `json:"procedure"`
	Message   string `json:"message"`
}

// ActorMovieLink is the input of the link-actor-to-movie procedure.
type ActorMovieLink struct {
	ActorLastName string `json:"actor_lastname" validate:"required"`
	MovieTitle    string `json:"movie_title" validate:"required"`
	Character     string `json:"character" validate:"required"`
}

// AwardCreate is the input of the add-award procedure.
type AwardCreate struct {
	ActorID   int64  `json:"actor_id" validate:"required"`
	AwardName string `json:"award_name" validate:"required"`
	AwardYear int    `json:"award_year" validate:"required"`
}
