// Package mgroup owns the set of groups and their membership rows.
//
// Roles are tags only: nothing here checks that the acting user is an admin, and
// removing or demoting the last admin is allowed. Membership rows are never
// deduplicated; a user listed twice keeps both rows with their own roles.
package mgroup

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"kyri56xcaesar/pms-collab/internal/apperr"
	"kyri56xcaesar/pms-collab/internal/utils"
)

var validate = validator.New()

type Registry struct {
	mu     sync.RWMutex
	groups []Group

	now   func() time.Time
	newID func() string
}

func NewRegistry() *Registry {
	return &Registry{
		groups: []Group{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create builds a group whose first member is creatorID as admin, followed by
// req.Members in order. Every row gets the same joinedAt.
func (r *Registry) Create(req CreateGroupRequest, creatorID string) (Group, error) {
	req.Members = append([]MemberSpec(nil), req.Members...)
	for i := range req.Members {
		if req.Members[i].Role == "" {
			req.Members[i].Role = RoleMember
		}
	}
	if err := apperr.FromValidator(validate.Struct(req)); err != nil {
		return Group{}, err
	}

	now := r.now()
	members := make([]Member, 0, len(req.Members)+1)
	members = append(members, Member{UserID: creatorID, Role: RoleAdmin, JoinedAt: now})
	for _, m := range req.Members {
		members = append(members, Member{UserID: m.UserID, Role: m.Role, JoinedAt: now})
	}

	g := Group{
		ID:          r.newID(),
		Name:        req.Name,
		Description: req.Description,
		Members:     members,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.mu.Lock()
	r.groups = append(r.groups, g)
	r.mu.Unlock()

	return g.clone(), nil
}

// Update merges the non-nil fields of req into the group.
func (r *Registry) Update(id string, req UpdateGroupRequest) error {
	if err := apperr.FromValidator(validate.Struct(req)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.find(id)
	if g == nil {
		return apperr.NotFound("group", id)
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	if req.Description != nil {
		g.Description = *req.Description
	}
	g.UpdatedAt = r.now()
	return nil
}

// Delete removes the group. Tasks that reference it keep their group id.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.groups {
		if r.groups[i].ID == id {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
			return nil
		}
	}
	return apperr.NotFound("group", id)
}

func (r *Registry) AddMember(id string, spec MemberSpec) error {
	if spec.Role == "" {
		spec.Role = RoleMember
	}
	if err := apperr.FromValidator(validate.Struct(spec)); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.find(id)
	if g == nil {
		return apperr.NotFound("group", id)
	}
	now := r.now()
	g.Members = append(g.Members, Member{UserID: spec.UserID, Role: spec.Role, JoinedAt: now})
	g.UpdatedAt = now
	return nil
}

// RemoveMember drops every row for userID.
func (r *Registry) RemoveMember(id, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.find(id)
	if g == nil {
		return apperr.NotFound("group", id)
	}
	kept := utils.Filter(g.Members, func(m Member) bool { return m.UserID != userID })
	if len(kept) == len(g.Members) {
		return apperr.NotFound("member", userID)
	}
	g.Members = kept
	g.UpdatedAt = r.now()
	return nil
}

// SetMemberRole retags every row for userID.
func (r *Registry) SetMemberRole(id, userID string, role Role) error {
	if !role.Valid() {
		return apperr.Invalid("Role", "must be one of [admin member]")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.find(id)
	if g == nil {
		return apperr.NotFound("group", id)
	}
	found := false
	for i := range g.Members {
		if g.Members[i].UserID == userID {
			g.Members[i].Role = role
			found = true
		}
	}
	if !found {
		return apperr.NotFound("member", userID)
	}
	g.UpdatedAt = r.now()
	return nil
}

func (r *Registry) Get(id string) (Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := r.find(id)
	if g == nil {
		return Group{}, false
	}
	return g.clone(), true
}

// List returns every group in creation order.
func (r *Registry) List() []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return utils.Map(r.groups, Group.clone)
}

// GroupsForUser returns the groups that list userID among their members, in
// creation order.
func (r *Registry) GroupsForUser(userID string) []Group {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mine := utils.Filter(r.groups, func(g Group) bool { return isMember(g, userID) })
	return utils.Map(mine, Group.clone)
}

// IsAdmin reports whether any of userID's rows in the group carries the admin role.
func (r *Registry) IsAdmin(groupID, userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := r.find(groupID)
	if g == nil {
		return false
	}
	return utils.Any(g.Members, func(m Member) bool {
		return m.UserID == userID && m.Role == RoleAdmin
	})
}

// MemberIDs returns the user id of every membership row, duplicates included.
func (r *Registry) MemberIDs(groupID string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g := r.find(groupID)
	if g == nil {
		return nil, false
	}
	return utils.Map(g.Members, func(m Member) string { return m.UserID }), true
}

// find must be called with r.mu held.
func (r *Registry) find(id string) *Group {
	for i := range r.groups {
		if r.groups[i].ID == id {
			return &r.groups[i]
		}
	}
	return nil
}

func isMember(g Group, userID string) bool {
	return utils.Any(g.Members, func(m Member) bool { return m.UserID == userID })
}
