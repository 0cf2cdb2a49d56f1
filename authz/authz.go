// Package authz is the single authorization policy surface. Every mutation
// orchestrator consults it instead of inlining membership checks per call
// site, so the role table lives in exactly one place.
package authz

import (
	"fmt"

	"github.com/bomaolad/team-sync-be/models"
)

// Action is an operation a principal may attempt on a resource.
type Action string

const (
	ActionView        Action = "view"
	ActionEdit        Action = "edit"
	ActionDelete      Action = "delete"
	ActionInvite      Action = "invite"
	ActionManageRoles Action = "manage_roles"
)

// ResourceKind identifies the level of the Team → Project → Task hierarchy.
type ResourceKind string

const (
	KindTeam    ResourceKind = "team"
	KindProject ResourceKind = "project"
	KindTask    ResourceKind = "task"
)

// Resource is a target of an authorization check.
type Resource struct {
	Kind ResourceKind
	ID   uint
}

func TeamResource(id uint) Resource    { return Resource{Kind: KindTeam, ID: id} }
func ProjectResource(id uint) Resource { return Resource{Kind: KindProject, ID: id} }
func TaskResource(id uint) Resource    { return Resource{Kind: KindTask, ID: id} }

// DenyReason explains a denied decision.
type DenyReason string

const (
	// NotAMember means the principal holds no membership in the owning team.
	// Surfaces as NotFound-shaped to the caller.
	NotAMember DenyReason = "not_a_member"
	// InsufficientRole means the principal's role is below the action's floor.
	InsufficientRole DenyReason = "insufficient_role"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Allowed bool
	// Role is the principal's resolved team role when Allowed.
	Role   string
	Reason DenyReason
}

// Err maps a denied decision onto the service error taxonomy.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == NotAMember {
		return fmt.Errorf("not a member of this team: %w", models.ErrNotFound)
	}
	return fmt.Errorf("insufficient role for %s: %w", d.Role, models.ErrForbidden)
}

// Resolver resolves a resource to its owning team and looks up memberships.
// Implemented by the persistence layer; the engine itself does no I/O beyond
// these calls.
type Resolver interface {
	// TeamIDOfProject returns the owning team of a project.
	TeamIDOfProject(projectID uint) (uint, error)
	// TeamIDOfTask returns the owning team of a task via its project.
	TeamIDOfTask(taskID uint) (uint, error)
	// RoleOf returns the principal's role in the team, or ok=false when the
	// (team, user) pair does not exist.
	RoleOf(teamID, userID uint) (role string, ok bool, err error)
}

// minRole is the per-action role floor.
var minRole = map[Action]string{
	ActionView:        models.RoleGuest,
	ActionEdit:        models.RoleMember,
	ActionDelete:      models.RoleAdmin,
	ActionInvite:      models.RoleAdmin,
	ActionManageRoles: models.RoleAdmin,
}

// roleRank orders roles GUEST < MEMBER < ADMIN. Unknown roles rank below
// GUEST and therefore never pass any floor.
func roleRank(role string) int {
	switch role {
	case models.RoleAdmin:
		return 2
	case models.RoleMember:
		return 1
	case models.RoleGuest:
		return 0
	}
	return -1
}

// Allows reports whether a role meets the floor for an action. GUEST is
// denied everything but View regardless of the table.
func Allows(role string, action Action) bool {
	if role == models.RoleGuest && action != ActionView {
		return false
	}
	floor, known := minRole[action]
	if !known {
		return false
	}
	return roleRank(role) >= roleRank(floor)
}

// Engine resolves resources to their owning team and applies the role table.
type Engine struct {
	resolver Resolver
}

// NewEngine creates an authorization engine backed by the given resolver.
func NewEngine(r Resolver) *Engine {
	return &Engine{resolver: r}
}

// Authorize checks whether principalID may perform action on res. A nil
// error with Decision.Allowed=false is a policy denial; a non-nil error means
// the resource itself could not be resolved.
func (e *Engine) Authorize(principalID uint, res Resource, action Action) (Decision, error) {
	teamID, err := e.teamOf(res)
	if err != nil {
		return Decision{}, err
	}

	role, ok, err := e.resolver.RoleOf(teamID, principalID)
	if err != nil {
		return Decision{}, err
	}
	if !ok {
		return Decision{Reason: NotAMember}, nil
	}

	if !Allows(role, action) {
		return Decision{Role: role, Reason: InsufficientRole}, nil
	}
	return Decision{Allowed: true, Role: role}, nil
}

func (e *Engine) teamOf(res Resource) (uint, error) {
	switch res.Kind {
	case KindTeam:
		return res.ID, nil
	case KindProject:
		return e.resolver.TeamIDOfProject(res.ID)
	case KindTask:
		return e.resolver.TeamIDOfTask(res.ID)
	}
	return 0, fmt.Errorf("unknown resource kind %q: %w", res.Kind, models.ErrNotFound)
}
