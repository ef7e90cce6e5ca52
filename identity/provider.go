// file: identity/provider.go
package identity

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"codenames-sync/logger"
)

// Provider hands out the session id, creating and persisting it on first
// use. It is safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	store    Store
	newID    func() string
	memoryID string
	degraded bool
}

// NewProvider reads and writes through store. A nil store behaves like a
// store that cannot persist anything.
func NewProvider(store Store) *Provider {
	return &Provider{
		store: store,
		newID: func() string { return uuid.NewString() },
	}
}

// EnsureSessionID returns the stored id, creating one if none is stored.
// When storage fails the provider degrades to an id that only lives as long
// as the provider does.
func (p *Provider) EnsureSessionID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.store == nil {
		return p.degradeLocked(errors.New("no store configured"))
	}

	id, err := p.store.Load()
	switch {
	case err == nil && valid(id):
		p.degraded = false
		return id
	case err == nil:
		logger.Warn.Printf("[Provider.EnsureSessionID] Ignoring malformed stored session id %q", id)
	case !errors.Is(err, ErrNoSessionID):
		return p.degradeLocked(err)
	}

	fresh := p.memoryID
	if fresh == "" {
		fresh = p.newID()
	}
	stored, err := p.store.SaveIfAbsent(fresh)
	if err != nil {
		p.memoryID = fresh
		return p.degradeLocked(err)
	}
	if !valid(stored) {
		// a malformed value is still in the way; overwrite is not ours to do
		p.memoryID = fresh
		return p.degradeLocked(errors.New("stored session id is malformed"))
	}
	p.degraded = false
	p.memoryID = ""
	logger.Info.Printf("[Provider.EnsureSessionID] Using session id %s", stored)
	return stored
}

// Degraded reports whether the last id came from memory instead of storage.
func (p *Provider) Degraded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.degraded
}

func (p *Provider) degradeLocked(cause error) string {
	if p.memoryID == "" {
		p.memoryID = p.newID()
	}
	if !p.degraded {
		logger.Warn.Printf("[Provider.EnsureSessionID] Session storage unavailable (%v); using in-memory id %s", cause, p.memoryID)
	}
	p.degraded = true
	return p.memoryID
}

func valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
