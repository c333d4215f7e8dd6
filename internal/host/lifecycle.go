package host

import (
	"fmt"

	"github.com/kingrea/companions/internal/content"
)

// FinalizeFunc implements content.Lifecycle.
func (h *Host) FinalizeFunc() content.FinalizeFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.finalize
}

// SwapFinalize implements content.Lifecycle. A nil fn restores the built-in
// routine.
func (h *Host) SwapFinalize(fn content.FinalizeFunc) content.FinalizeFunc {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.finalize
	if fn == nil {
		fn = h.setDefaults
	}
	h.finalize = fn
	return prev
}

// Finalize runs whatever finalize routine is currently installed.
func (h *Host) Finalize(e *content.Entity, createDefinition bool) {
	h.FinalizeFunc()(e, createDefinition)
}

// Spawn creates an instance of tenant/name and finalizes it.
func (h *Host) Spawn(tenant, name string) (*content.Entity, error) {
	def, ok := h.Definition(tenant, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, content.FullName(tenant, name))
	}
	e := &content.Entity{Type: def.Type, CatchItem: content.None}
	h.Finalize(e, true)
	return e, nil
}

// setDefaults is the host's own finalize logic. It panics on an unknown type,
// which is how a host failure surfaces through any redirection.
func (h *Host) setDefaults(e *content.Entity, createDefinition bool) {
	h.mu.RLock()
	def, ok := h.byType[e.Type]
	h.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("host: finalize unknown entity type %d", e.Type))
	}
	e.CatchItem = content.None
	e.Definition = nil
	if createDefinition {
		e.Definition = def
	}
	e.Initialized = true
}
