package services

import "errors"

// Tagged failures returned by the session commands. Controllers map these
// onto HTTP statuses; none are retried internally.
var (
	// ErrStoreUnavailable wraps transport/infra failures talking to DynamoDB.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSessionNotFound means the session id does not exist.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired means the session is past its TTL.
	ErrSessionExpired = errors.New("session expired")

	// ErrParticipantNotFound means the operation referenced a participant
	// that never joined this session.
	ErrParticipantNotFound = errors.New("participant not found")

	// ErrSessionNotActive means a swipe arrived while the session was not
	// in the active status.
	ErrSessionNotActive = errors.New("session not active")

	// ErrInvalidSwipeOrder means the candidate is not the one at the
	// participant's cursor. The client should refresh instead of retrying.
	ErrInvalidSwipeOrder = errors.New("swipe out of order")

	// ErrDuplicateSwipe means this (participant, candidate) pair was
	// already swiped this epoch. Clients treat it as an idempotent success.
	ErrDuplicateSwipe = errors.New("duplicate swipe")

	// ErrNoCandidatesFound means the places lookup returned nothing usable.
	ErrNoCandidatesFound = errors.New("no restaurants found")

	// ErrVersionConflict means a conditional write lost to a concurrent
	// writer. For the match commit this is a normal outcome, not a failure.
	ErrVersionConflict = errors.New("conditional write lost")
)
