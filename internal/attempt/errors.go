package attempt

import "errors"

var (
	// ErrNotAllAnswered rejects a submit while at least one question has
	// no selected option. Completeness only; correctness is upstream's.
	ErrNotAllAnswered = errors.New("all questions must be answered before submitting")

	// ErrCommitInFlight rejects a second commit-like call (submit or
	// abandon) while one is already outstanding.
	ErrCommitInFlight = errors.New("a submit or abandon request is already in flight")

	// ErrNotReady rejects operations before the controller reached READY
	// or after it left it.
	ErrNotReady = errors.New("attempt is not accepting interactions")

	// ErrAlreadyCompleted signals that start-or-resume found a completed
	// attempt; the caller should route straight to the results view.
	ErrAlreadyCompleted = errors.New("attempt already completed")

	// ErrAttemptAbandoned signals that start-or-resume found an
	// abandoned attempt, which cannot be reused.
	ErrAttemptAbandoned = errors.New("attempt was abandoned and cannot be resumed")
)
