package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/example/verbadiem/internal/store"
)

// LoadTimeout bounds the store reads of opening a profile
const LoadTimeout = 10 * time.Second

// Registry keeps one orchestrator per profile on a shared backend
type Registry struct {
	backend store.Backend
	base    Options
	// configure adjusts the options of a profile before it is opened
	configure func(profileID int64, opts *Options)

	mu       sync.Mutex
	sessions map[int64]*Orchestrator
}

// NewRegistry creates a registry. configure may be nil.
func NewRegistry(backend store.Backend, base Options, configure func(profileID int64, opts *Options)) *Registry {
	return &Registry{
		backend:   backend,
		base:      base,
		configure: configure,
		sessions:  make(map[int64]*Orchestrator),
	}
}

// Get returns the orchestrator of a profile, loading it on first use. The
// load outlives a cancelled ctx so that an aborted request cannot open a
// profile half-read. A failed load is not cached.
func (r *Registry) Get(ctx context.Context, profileID int64) (*Orchestrator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if o, ok := r.sessions[profileID]; ok {
		return o, nil
	}

	opts := r.base
	if r.configure != nil {
		r.configure(profileID, &opts)
	}
	o, err := r.open(ctx, profileID, opts)
	if err != nil {
		return nil, err
	}
	r.sessions[profileID] = o
	return o, nil
}

func (r *Registry) open(ctx context.Context, profileID int64, opts Options) (*Orchestrator, error) {
	loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), LoadTimeout)
	defer cancel()

	o, err := New(loadCtx, r.backend.Profile(profileID), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile %d: %w", profileID, err)
	}
	return o, nil
}

// Loaded returns the orchestrator of a profile only if it is already open
func (r *Registry) Loaded(profileID int64) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.sessions[profileID]
	return o, ok
}

// Visit runs fn on the open orchestrator of a profile or, when the profile
// is not open, on a temporary one that is closed afterwards and never
// cached. Temporary visits hold the registry lock so that Get cannot open
// the same profile meanwhile.
func (r *Registry) Visit(ctx context.Context, profileID int64, fn func(*Orchestrator)) error {
	r.mu.Lock()
	if o, ok := r.sessions[profileID]; ok {
		r.mu.Unlock()
		fn(o)
		return nil
	}
	defer r.mu.Unlock()

	o, err := r.open(ctx, profileID, r.base)
	if err != nil {
		return err
	}
	defer o.Close()
	fn(o)
	return nil
}

// Profiles lists every profile with stored data
func (r *Registry) Profiles(ctx context.Context) ([]int64, error) {
	return r.backend.Profiles(ctx)
}

// Close closes every open orchestrator
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, o := range r.sessions {
		o.Close()
		delete(r.sessions, id)
	}
}
