package bootstrap

import "github.com/jrsteele09/go-pos-console/action"

// Phase is the outcome of restoring a session at process start.
type Phase int

const (
	Initializing Phase = iota
	Unauthenticated
	Authenticated
	FatalError
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Unauthenticated:
		return "unauthenticated"
	case Authenticated:
		return "authenticated"
	case FatalError:
		return "fatal_error"
	default:
		return "unknown"
	}
}

// Status is what routing reads. Complete is tracked apart from Phase so that
// "still loading" and "confirmed logged out" are never the same thing.
type Status struct {
	Phase    Phase
	Complete bool
	// Cause is only set in FatalError.
	Cause *action.ClassifiedError
}
