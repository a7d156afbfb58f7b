package mgroup

import "time"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Members     []Member  `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Member is one membership row. Rows are identified by (group id, user id) but
// the same user may appear more than once.
type Member struct {
	UserID   string    `json:"userId"`
	Role     Role      `json:"role"`
	JoinedAt time.Time `json:"joinedAt"`
}

type MemberSpec struct {
	UserID string `json:"userId" validate:"required"`
	Role   Role   `json:"role" validate:"required,oneof=admin member"`
}

type CreateGroupRequest struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description" validate:"required"`
	Members     []MemberSpec `json:"members" validate:"dive"`
}

type UpdateGroupRequest struct {
	Name        *string `json:"name" validate:"omitnil,min=1"`
	Description *string `json:"description" validate:"omitnil,min=1"`
}

type SetRoleRequest struct {
	Role Role `json:"role"`
}

func (g Group) clone() Group {
	out := g
	out.Members = make([]Member, len(g.Members))
	copy(out.Members, g.Members)
	return out
}
