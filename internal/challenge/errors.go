package challenge

import "errors"

// Error taxonomy surfaced to the boundary layer. Invalid input and missing
// records fail the request immediately; conflicts reject a join that can
// never succeed; statistics errors surface as internal failures. Scheduler
// and cache failures during secondary steps are logged and swallowed, never
// surfaced.
var (
	ErrEmptyRequest      = errors.New("challenge request is empty")
	ErrInvalidID         = errors.New("invalid id format")
	ErrInvalidPagination = errors.New("page and limit must be greater than zero")
	ErrInvalidFilter     = errors.New("invalid statistics filter")

	ErrChallengeNotFound = errors.New("challenge does not exist")

	ErrAlreadyJoined  = errors.New("participant has already joined the challenge")
	ErrChallengeEnded = errors.New("the challenge has already ended")

	ErrStatsUnavailable = errors.New("error retrieving the statistics")
)
