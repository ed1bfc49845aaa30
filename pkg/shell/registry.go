package shell

import "sync"

// Registry is a collection of live shell instances driven from one
// cooperative loop. Shells register themselves on Start; a shell that has
// stopped is closed and removed on the next LoopAll pass.
type Registry struct {
	mu     sync.Mutex
	shells []*Shell
}

// NewRegistry creates an empty shell registry
func NewRegistry() *Registry {
	return &Registry{}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by shells created
// without an explicit one
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// LoopAll performs one execution step on every shell in the default
// registry
func LoopAll() {
	defaultRegistry.LoopAll()
}

// register adds a shell to the registry
func (r *Registry) register(s *Shell) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.shells = append(r.shells, s)
}

// Len returns the number of registered shells
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.shells)
}

// LoopAll performs one execution step on every registered shell. Shells
// that are no longer running are closed and removed; external references
// to a removed shell stay valid.
func (r *Registry) LoopAll() {
	r.mu.Lock()
	shells := make([]*Shell, len(r.shells))
	copy(shells, r.shells)
	r.mu.Unlock()

	for _, s := range shells {
		if s.Running() {
			s.LoopOne()
		}

		if !s.Running() {
			s.Close()
			r.remove(s)
		}
	}
}

// remove deletes a shell from the registry by identity
func (r *Registry) remove(s *Shell) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, registered := range r.shells {
		if registered == s {
			r.shells = append(r.shells[:i], r.shells[i+1:]...)
			break
		}
	}
}
