package errorstore

import (
	"fmt"
	"strings"
)

// Modal is the rendered content of the error dialog.
type Modal struct {
	Title       string
	StatusCode  int
	Message     string
	Detail      string
	ReferenceID string
}

func (m Modal) String() string {
	var b strings.Builder
	b.WriteString(m.Title)
	b.WriteString("\n")
	if m.StatusCode != 0 {
		fmt.Fprintf(&b, "  Status:    %d\n", m.StatusCode)
	}
	fmt.Fprintf(&b, "  Message:   %s\n", m.Message)
	if m.Detail != "" && m.Detail != m.Message {
		fmt.Fprintf(&b, "  Detail:    %s\n", m.Detail)
	}
	if m.ReferenceID != "" {
		fmt.Fprintf(&b, "  Reference: %s\n", m.ReferenceID)
	}
	return b.String()
}

// Surface is the error modal. Its open state is derived from the store and
// cannot be set on its own: dismissing clears the store.
type Surface struct {
	store *Store
}

func NewSurface(store *Store) *Surface {
	return &Surface{store: store}
}

func (s *Surface) Open() bool {
	return s.store.Error() != nil
}

// Dismiss closes the modal by clearing the held error.
func (s *Surface) Dismiss() {
	s.store.SetError(nil)
}

// Render returns the modal content, or false when nothing is held.
func (s *Surface) Render() (Modal, bool) {
	err := s.store.Error()
	if err == nil {
		return Modal{}, false
	}

	title := "Request failed"
	switch {
	case err.Transport():
		title = "Backend unreachable"
	case err.StatusCode >= 400 && err.StatusCode < 500:
		title = "Request rejected"
	case err.StatusCode >= 500:
		title = "Server error"
	}

	message := err.Message
	if message == "" {
		message = err.DetailMessage
	}
	return Modal{
		Title:       title,
		StatusCode:  err.StatusCode,
		Message:     message,
		Detail:      err.DetailMessage,
		ReferenceID: err.ReferenceID,
	}, true
}
