package guard

import (
	"fmt"

	"github.com/jrsteele09/go-pos-console/action"
)

// ViewKind says which screen the front end should draw.
type ViewKind int

const (
	ViewLogin ViewKind = iota
	ViewLoading
	ViewFatal
	ViewForbidden
	ViewNotFound
	ViewContent
)

func (k ViewKind) String() string {
	switch k {
	case ViewLogin:
		return "login"
	case ViewLoading:
		return "loading"
	case ViewFatal:
		return "fatal"
	case ViewForbidden:
		return "forbidden"
	case ViewNotFound:
		return "not_found"
	case ViewContent:
		return "content"
	default:
		return "unknown"
	}
}

// View is the result of one render pass.
type View struct {
	Kind ViewKind
	// Route is the path that was requested.
	Route string
	// Body is the protected content; empty unless Kind is ViewContent.
	Body string
	// Cause explains a ViewFatal.
	Cause *action.ClassifiedError
}

func (v View) String() string {
	switch v.Kind {
	case ViewContent:
		return v.Body
	case ViewFatal:
		if v.Cause != nil {
			return fmt.Sprintf("The console could not reach its backend: %s", v.Cause.Text())
		}
		return "The console could not reach its backend."
	case ViewForbidden:
		return "You do not have access to this page."
	case ViewNotFound:
		return fmt.Sprintf("No page at %s.", v.Route)
	case ViewLoading:
		return "Loading..."
	default:
		return "Please sign in."
	}
}
