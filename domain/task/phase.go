package task

import (
	"github.com/example/task-approval/domain/apperr"
)

// Status is the execution status exposed to clients.
type Status string

const (
	StatusToDo       Status = "to-do"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// ParseStatus validates a client-supplied status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusToDo, StatusInProgress, StatusDone:
		return st, nil
	}
	return "", apperr.Validation("invalid status %q (expected to-do, in-progress or done)", s)
}

// ApprovalStatus is the review status exposed to clients.
type ApprovalStatus string

const (
	ApprovalNotRequired ApprovalStatus = "not-required"
	ApprovalPending     ApprovalStatus = "pending-approval"
	ApprovalApproved    ApprovalStatus = "approved"
	ApprovalRejected    ApprovalStatus = "rejected"
)

// Phase is the single stored lifecycle state of a task. Status and
// ApprovalStatus are projections of it, so a pair such as (to-do, approved)
// cannot be represented.
type Phase string

const (
	PhaseToDo             Phase = "to_do"
	PhaseInProgress       Phase = "in_progress"
	PhaseAwaitingApproval Phase = "awaiting_approval"
	PhaseApproved         Phase = "approved"
	// PhaseRejected is in-progress work sent back by the reviewer.
	PhaseRejected Phase = "rejected"
)

// IsValid reports whether p is a known phase.
func (p Phase) IsValid() bool {
	switch p {
	case PhaseToDo, PhaseInProgress, PhaseAwaitingApproval, PhaseApproved, PhaseRejected:
		return true
	}
	return false
}

// Status projects p onto the execution status.
func (p Phase) Status() Status {
	switch p {
	case PhaseAwaitingApproval, PhaseApproved:
		return StatusDone
	case PhaseInProgress, PhaseRejected:
		return StatusInProgress
	default:
		return StatusToDo
	}
}

// ApprovalStatus projects p onto the review status.
func (p Phase) ApprovalStatus() ApprovalStatus {
	switch p {
	case PhaseAwaitingApproval:
		return ApprovalPending
	case PhaseApproved:
		return ApprovalApproved
	case PhaseRejected:
		return ApprovalRejected
	default:
		return ApprovalNotRequired
	}
}

// IsDone reports whether the task counts as completed.
func (p Phase) IsDone() bool {
	return p.Status() == StatusDone
}

// DonePhases lists the phases counted as completed.
func DonePhases() []Phase {
	return []Phase{PhaseAwaitingApproval, PhaseApproved}
}

// WithStatus returns the phase reached by setting the execution status.
// Marking done always (re)enters review. A rejected task keeps its rejected
// marker while it stays in progress.
func (p Phase) WithStatus(s Status) Phase {
	switch s {
	case StatusDone:
		return PhaseAwaitingApproval
	case StatusInProgress:
		if p == PhaseRejected {
			return PhaseRejected
		}
		return PhaseInProgress
	default:
		return PhaseToDo
	}
}

// Approve returns the phase after a reviewer accepts the work.
func (p Phase) Approve() (Phase, error) {
	if p != PhaseAwaitingApproval {
		return p, apperr.Precondition("task is not pending approval (approval status: %s)", p.ApprovalStatus())
	}
	return PhaseApproved, nil
}

// Reject returns the phase after a reviewer sends the work back.
func (p Phase) Reject() (Phase, error) {
	if p != PhaseAwaitingApproval {
		return p, apperr.Precondition("task is not pending approval (approval status: %s)", p.ApprovalStatus())
	}
	return PhaseRejected, nil
}

// Reassign returns the phase after approved work is handed to someone new.
func (p Phase) Reassign() (Phase, error) {
	if p != PhaseApproved {
		return p, apperr.Precondition("only approved tasks can be reassigned (approval status: %s)", p.ApprovalStatus())
	}
	return PhaseToDo, nil
}

// Transition records a phase change.
type Transition struct {
	From Phase
	To   Phase
}

// CompletedDelta is the change a transition makes to a project's completed
// count: +1 when entering done, -1 when leaving it, 0 otherwise.
func (t Transition) CompletedDelta() int {
	switch {
	case !t.From.IsDone() && t.To.IsDone():
		return 1
	case t.From.IsDone() && !t.To.IsDone():
		return -1
	}
	return 0
}
