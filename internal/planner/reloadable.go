package planner

import (
	"sync/atomic"
)

// Reloadable publishes the current Engine to concurrent callers. Reloading a catalog swaps in a whole new Engine,
// callers that already loaded the previous one finish with it undisturbed.
type Reloadable struct {
	current atomic.Pointer[Engine]
}

// NewReloadable returns a Reloadable serving e.
func NewReloadable(e *Engine) *Reloadable {
	r := &Reloadable{} //nolint:exhaustruct // zero value pointer is replaced below.
	r.current.Store(e)
	return r
}

// Engine returns the engine currently being served.
func (r *Reloadable) Engine() *Engine {
	return r.current.Load()
}

// Swap publishes next and returns the previously served engine.
func (r *Reloadable) Swap(next *Engine) *Engine {
	return r.current.Swap(next)
}

// GeneratePlan generates a plan with the current engine.
func (r *Reloadable) GeneratePlan(raw RawProfile) (Plan, error) {
	return r.Engine().GeneratePlan(raw)
}
