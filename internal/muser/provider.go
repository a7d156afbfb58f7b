// Package muser holds the active user identity and the user roster.
//
// Exactly one user is current at a time. Registries never read it: callers pass
// the acting user's id explicitly, and the current user only answers "who is
// using this process" for the presentation layer.
package muser

import (
	"sync"

	"kyri56xcaesar/pms-collab/internal/apperr"
)

type Provider struct {
	mu      sync.RWMutex
	current *User
	users   []User
}

type Option func(*Provider)

// WithDefaultUser selects DefaultUser as current. It is not added to the roster.
func WithDefaultUser() Option {
	return func(p *Provider) {
		u := DefaultUser
		p.current = &u
	}
}

func NewProvider(opts ...Option) *Provider {
	p := &Provider{users: []User{}}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Current returns a copy of the current user, or nil when none is selected.
func (p *Provider) Current() *User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.current == nil {
		return nil
	}
	u := *p.current
	return &u
}

// SetCurrent selects u as the current user; nil clears the selection.
func (p *Provider) SetCurrent(u *User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u == nil {
		p.current = nil
		return
	}
	cp := *u
	p.current = &cp
}

// Register appends u to the roster. Ids are not checked for uniqueness.
func (p *Provider) Register(u User) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users = append(p.users, u)
}

// Users returns the roster in registration order.
func (p *Provider) Users() []User {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]User, len(p.users))
	copy(out, p.users)
	return out
}

// Lookup returns the first roster entry with the given id.
func (p *Provider) Lookup(id string) (User, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, u := range p.users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// Update merges the non-nil fields of req into every roster row with this id.
// The current selection is a separate copy and is refreshed only when it has
// the same id.
func (p *Provider) Update(id string, req UpdateUserRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	found := false
	for i := range p.users {
		if p.users[i].ID != id {
			continue
		}
		found = true
		applyUserUpdate(&p.users[i], req)
	}
	if !found {
		return apperr.NotFound("user", id)
	}
	if p.current != nil && p.current.ID == id {
		applyUserUpdate(p.current, req)
	}
	return nil
}

func applyUserUpdate(u *User, req UpdateUserRequest) {
	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil {
		u.Email = *req.Email
	}
	if req.Avatar != nil {
		u.Avatar = *req.Avatar
	}
}
