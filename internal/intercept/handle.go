package intercept

import (
	"github.com/google/uuid"

	"github.com/kingrea/companions/internal/content"
)

// Handle is the installed redirection of the host finalize routine. It keeps
// the routine it replaced and puts it back exactly once.
type Handle struct {
	id        uuid.UUID
	lifecycle content.Lifecycle
	original  content.FinalizeFunc
	removed   bool
}

// ID labels the installation in logs.
func (h *Handle) ID() string {
	if h == nil {
		return ""
	}
	return h.id.String()
}

// Active reports whether the redirection is still installed.
func (h *Handle) Active() bool {
	return h != nil && !h.removed
}

// Remove restores the original finalize routine. Calling it again, or on a
// nil handle, does nothing.
func (h *Handle) Remove() {
	if !h.Active() {
		return
	}
	h.lifecycle.SwapFinalize(h.original)
	h.removed = true
	h.original = nil
}
