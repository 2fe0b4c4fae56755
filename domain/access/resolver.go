// Package access resolves what an actor may do to a task or project.
//
// Every operation names the relations that grant it; an actor's relations to
// the target are derived from five facts (system role, project head, project
// membership, task assignee, task creator) and checked against that table.
// Nothing here touches storage, so callers load the facts first and must
// short-circuit on a denial before mutating anything.
package access

import (
	"slices"
	"strings"

	"github.com/example/task-approval/domain/apperr"
	"github.com/example/task-approval/domain/user"
)

// Operation is an action gated by the resolver.
type Operation string

const (
	CreateTask        Operation = "create_task"
	ViewTask          Operation = "view_task"
	UpdateTask        Operation = "update_task"
	ChangeStatus      Operation = "change_status"
	ReviewTask        Operation = "review_task"
	ReassignTask      Operation = "reassign_task"
	DeleteTask        Operation = "delete_task"
	ManageAttachments Operation = "manage_attachments"
	ViewProject       Operation = "view_project"
	ManageProject     Operation = "manage_project"
)

// Relation is one way an actor can be related to a target. Relations combine
// as a bit set.
type Relation uint8

const (
	SystemAdmin Relation = 1 << iota
	ProjectHead
	ProjectMember
	Assignee
	Creator
)

var relationNames = []struct {
	rel  Relation
	name string
}{
	{SystemAdmin, "system-admin"},
	{ProjectHead, "project-head"},
	{ProjectMember, "project-member"},
	{Assignee, "assignee"},
	{Creator, "creator"},
}

func (r Relation) String() string {
	var names []string
	for _, rn := range relationNames {
		if r&rn.rel != 0 {
			names = append(names, rn.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// policy is the operation table. The asymmetries are intentional: a project
// head may edit a task but not delete it or change its status, and only the
// head reviews.
var policy = map[Operation]Relation{
	CreateTask:        SystemAdmin | ProjectHead,
	ViewTask:          SystemAdmin | Assignee | Creator | ProjectHead | ProjectMember,
	UpdateTask:        SystemAdmin | ProjectHead | Assignee | Creator,
	ChangeStatus:      SystemAdmin | Assignee | Creator,
	ReviewTask:        SystemAdmin | ProjectHead,
	ReassignTask:      SystemAdmin | ProjectHead,
	DeleteTask:        SystemAdmin | Assignee | Creator,
	ManageAttachments: SystemAdmin | ProjectHead,
	ViewProject:       SystemAdmin | ProjectHead | ProjectMember,
	ManageProject:     SystemAdmin | ProjectHead,
}

// Required returns the relations that grant op.
func Required(op Operation) Relation {
	return policy[op]
}

// Operations returns every gated operation in a stable order.
func Operations() []Operation {
	ops := make([]Operation, 0, len(policy))
	for op := range policy {
		ops = append(ops, op)
	}
	slices.Sort(ops)
	return ops
}

// Facts are the inputs of a single resolution. Task fields are left empty
// when resolving against a project alone.
type Facts struct {
	ActorID        string
	SystemRole     user.SystemRole
	ProjectHead    string
	ProjectMembers []string
	TaskAssignee   string
	TaskCreator    string
}

// Capabilities is the resolved capability set of one actor on one target.
type Capabilities struct {
	relations Relation
}

// Resolve derives the actor's relations from f.
func Resolve(f Facts) Capabilities {
	var rel Relation
	if f.SystemRole.IsAdmin() {
		rel |= SystemAdmin
	}
	if f.ActorID == "" {
		return Capabilities{relations: rel}
	}
	if f.ProjectHead == f.ActorID {
		rel |= ProjectHead
	}
	if slices.Contains(f.ProjectMembers, f.ActorID) {
		rel |= ProjectMember
	}
	if f.TaskAssignee == f.ActorID {
		rel |= Assignee
	}
	if f.TaskCreator == f.ActorID {
		rel |= Creator
	}
	return Capabilities{relations: rel}
}

// Relations returns the raw relation set.
func (c Capabilities) Relations() Relation {
	return c.relations
}

// Has reports whether the actor holds relation r.
func (c Capabilities) Has(r Relation) bool {
	return c.relations&r != 0
}

// Can reports whether the actor may perform op.
func (c Capabilities) Can(op Operation) bool {
	return c.relations&policy[op] != 0
}

// Require returns a Permission error when op is not allowed.
func (c Capabilities) Require(op Operation) error {
	if c.Can(op) {
		return nil
	}
	return apperr.Permission("not allowed to %s (requires %s)", strings.ReplaceAll(string(op), "_", " "), policy[op])
}

// Allowed lists every operation the actor may perform.
func (c Capabilities) Allowed() []Operation {
	var ops []Operation
	for _, op := range Operations() {
		if c.Can(op) {
			ops = append(ops, op)
		}
	}
	return ops
}
