// Package auth holds the row-level access policy. Every repository read and write is narrowed by
// the Predicate returned from VisibleRows before it reaches storage.
package auth

import (
	"fmt"

	"github.com/yigit/abroadcrm/internal/app/models"
)

// Entity names a policy-governed record type
type Entity string

const (
	EntityUser        Entity = "user"
	EntityStudent     Entity = "student"
	EntityRemark      Entity = "student_remark"
	EntityApplication Entity = "application"
	EntityPerformance Entity = "employee_performance"
	EntityTarget      Entity = "employee_target"
)

// Identity is the authenticated requester, rebuilt from the user store on every request
type Identity struct {
	UserID   int64
	Username string
	Role     models.Role
}

// IsAdmin reports whether the identity has the admin role
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// Scope is how much of an entity's rows a role may touch
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwned
	ScopeAll
)

func (s Scope) String() string {
	switch s {
	case ScopeAll:
		return "all"
	case ScopeOwned:
		return "owned"
	default:
		return "none"
	}
}

// ownership describes how a row is tied to its owning user in SQL
type ownership struct {
	// column is compared directly with the owner id
	column string
	// via, when set, is a subquery selecting the owning ids for column
	via string
}

var owners = map[Entity]ownership{
	EntityUser:        {column: "users.id"},
	EntityStudent:     {column: "students.assigned_counselor_id"},
	EntityRemark:      {column: "student_remarks.counselor_id"},
	EntityApplication: {column: "applications.student_id", via: "SELECT students.id FROM students WHERE students.assigned_counselor_id = ?"},
	EntityPerformance: {column: "employee_performance.employee_id"},
	EntityTarget:      {column: "employee_targets.employee_id"},
}

// Predicate narrows a query to the rows an identity may see. It satisfies squirrel.Sqlizer
// for the SQL repositories and exposes Allows for the in-memory ones.
type Predicate struct {
	Entity  Entity
	Scope   Scope
	OwnerID int64
}

// ToSql renders the predicate as a WHERE fragment
func (p Predicate) ToSql() (string, []interface{}, error) {
	switch p.Scope {
	case ScopeAll:
		return "TRUE", nil, nil
	case ScopeNone:
		return "FALSE", nil, nil
	}

	own, ok := owners[p.Entity]
	if !ok {
		return "", nil, fmt.Errorf("no ownership rule for entity %q", p.Entity)
	}
	if own.via != "" {
		return own.column + " IN (" + own.via + ")", []interface{}{p.OwnerID}, nil
	}
	return own.column + " = ?", []interface{}{p.OwnerID}, nil
}

// Allows reports whether a row owned by ownerID is visible. A nil owner is only visible with ScopeAll.
func (p Predicate) Allows(ownerID *int64) bool {
	switch p.Scope {
	case ScopeAll:
		return true
	case ScopeOwned:
		return ownerID != nil && *ownerID == p.OwnerID
	}
	return false
}

// All reports whether the predicate matches every row
func (p Predicate) All() bool {
	return p.Scope == ScopeAll
}

// Policy maps an identity and entity type to a row predicate
type Policy interface {
	VisibleRows(identity Identity, entity Entity) Predicate
}

// RolePolicy is a table keyed by (role, entity). Missing entries resolve to ScopeNone.
type RolePolicy struct {
	rules map[models.Role]map[Entity]Scope
}

// NewRolePolicy returns the default policy: admins see everything, counselors and employees
// see what they own, any other role sees nothing.
func NewRolePolicy() *RolePolicy {
	owned := map[Entity]Scope{
		EntityUser:        ScopeOwned,
		EntityStudent:     ScopeOwned,
		EntityRemark:      ScopeOwned,
		EntityApplication: ScopeOwned,
		EntityPerformance: ScopeOwned,
		EntityTarget:      ScopeOwned,
	}
	all := make(map[Entity]Scope, len(owned))
	for e := range owned {
		all[e] = ScopeAll
	}

	return &RolePolicy{
		rules: map[models.Role]map[Entity]Scope{
			models.RoleAdmin:     all,
			models.RoleCounselor: owned,
			models.RoleEmployee:  owned,
		},
	}
}

// VisibleRows implements Policy
func (p *RolePolicy) VisibleRows(identity Identity, entity Entity) Predicate {
	scope := ScopeNone
	if byEntity, ok := p.rules[identity.Role]; ok {
		scope = byEntity[entity]
	}
	return Predicate{Entity: entity, Scope: scope, OwnerID: identity.UserID}
}

// Unscoped returns a predicate matching every row of entity, for internal lookups
// that run before or outside a request identity.
func Unscoped(entity Entity) Predicate {
	return Predicate{Entity: entity, Scope: ScopeAll}
}
