package onboarding

import (
	"context"
	"sync"
	"time"
)

// Factory builds a new session.
type Factory func() (*Orchestrator, error)

type entry struct {
	orch     *Orchestrator
	lastSeen time.Time
}

// Registry keeps one Orchestrator per key (the device key on the HTTP
// surface) and evicts sessions that have been idle longer than the TTL.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	max      int
	now      func() time.Time

	// dropped counts updates lost by sessions that are gone already.
	dropped uint64
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithMaxSessions caps how many sessions the registry holds. When full, the
// least recently used idle session makes room for a new one. Zero means no cap.
func WithMaxSessions(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.max = n
		}
	}
}

// NewRegistry creates a registry. A ttl of zero disables eviction.
func NewRegistry(ttl time.Duration, opts ...RegistryOption) *Registry {
	r := &Registry{
		sessions: make(map[string]*entry),
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the session for key and marks it as used.
func (r *Registry) Get(key string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[key]
	if !ok {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.orch, true
}

// GetOrCreate returns the session for key, building it with factory when absent.
// The factory runs under the registry lock and must not call back into it.
func (r *Registry) GetOrCreate(key string, factory Factory) (*Orchestrator, error) {
	return r.GetOrReplace(key, nil, factory)
}

// GetOrReplace is GetOrCreate that also rebuilds the session when outdated
// reports it no longer matches the caller. A session with an attempt in
// flight is never replaced. The old session is closed.
func (r *Registry) GetOrReplace(key string, outdated func(*Orchestrator) bool, factory Factory) (*Orchestrator, error) {
	if factory == nil {
		return nil, ErrNilFactory
	}

	var closing []*Orchestrator
	defer func() {
		for _, o := range closing {
			_ = o.Close()
		}
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	victim := ""
	e, ok := r.sessions[key]
	switch {
	case ok:
		if outdated == nil || e.orch.State().IsBusy() || !outdated(e.orch) {
			e.lastSeen = r.now()
			return e.orch, nil
		}
		victim = key
	case r.max > 0 && len(r.sessions) >= r.max:
		var found bool
		if victim, found = r.leastRecentlyUsed(); !found {
			return nil, ErrRegistryFull
		}
	}

	orch, err := factory()
	if err != nil {
		return nil, err
	}
	if victim != "" {
		closing = append(closing, r.remove(victim))
	}
	r.sessions[key] = &entry{orch: orch, lastSeen: r.now()}
	return orch, nil
}

// leastRecentlyUsed must be called with mu held. Busy sessions are skipped.
func (r *Registry) leastRecentlyUsed() (string, bool) {
	var (
		key    string
		oldest time.Time
		found  bool
	)
	for k, e := range r.sessions {
		if e.orch.State().IsBusy() {
			continue
		}
		if !found || e.lastSeen.Before(oldest) {
			key, oldest, found = k, e.lastSeen, true
		}
	}
	return key, found
}

// remove must be called with mu held. The caller closes the returned session.
func (r *Registry) remove(key string) *Orchestrator {
	e := r.sessions[key]
	delete(r.sessions, key)
	r.dropped += e.orch.Dropped()
	return e.orch
}

// Delete closes and removes the session for key.
func (r *Registry) Delete(key string) error {
	r.mu.Lock()
	if _, ok := r.sessions[key]; !ok {
		r.mu.Unlock()
		return ErrSessionNotFound
	}
	o := r.remove(key)
	r.mu.Unlock()

	return o.Close()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Dropped returns how many directive updates were lost for slow readers,
// across live and removed sessions.
func (r *Registry) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := r.dropped
	for _, e := range r.sessions {
		n += e.orch.Dropped()
	}
	return n
}

// Sweep closes sessions idle since before now minus the TTL and returns how
// many were removed. Sessions with an attempt in flight are kept.
func (r *Registry) Sweep(now time.Time) int {
	if r.ttl <= 0 {
		return 0
	}

	var expired []*Orchestrator
	r.mu.Lock()
	for key, e := range r.sessions {
		if now.Sub(e.lastSeen) < r.ttl || e.orch.State().IsBusy() {
			continue
		}
		expired = append(expired, r.remove(key))
	}
	r.mu.Unlock()

	for _, o := range expired {
		_ = o.Close()
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 || interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			r.Sweep(t)
		}
	}
}

// Drain waits for every attempt in flight to finish or for ctx to be done.
func (r *Registry) Drain(ctx context.Context) error {
	r.mu.Lock()
	sessions := make([]*Orchestrator, 0, len(r.sessions))
	for _, e := range r.sessions {
		sessions = append(sessions, e.orch)
	}
	r.mu.Unlock()

	for _, o := range sessions {
		if err := o.Wait(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every session.
func (r *Registry) Close() error {
	r.mu.Lock()
	sessions := make([]*Orchestrator, 0, len(r.sessions))
	for key := range r.sessions {
		sessions = append(sessions, r.remove(key))
	}
	r.mu.Unlock()

	for _, o := range sessions {
		_ = o.Close()
	}
	return nil
}
