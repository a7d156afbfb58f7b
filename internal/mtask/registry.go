// Package mtask owns tasks and their ordered steps.
//
// Group tasks are assigned to a snapshot of the group's member ids taken at
// creation. Later membership changes never touch AssignedTo, while
// TasksForGroup selects by group id alone, so the two views can disagree.
package mtask

import (
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"kyri56xcaesar/pms-collab/internal/apperr"
	"kyri56xcaesar/pms-collab/internal/utils"
)

var validate = validator.New()

// MemberLookup resolves the member ids of a group at the time of the call.
// *mgroup.Registry implements it.
type MemberLookup interface {
	MemberIDs(groupID string) ([]string, bool)
}

type Registry struct {
	mu     sync.RWMutex
	tasks  []Task
	groups MemberLookup

	now   func() time.Time
	newID func() string
}

func NewRegistry(groups MemberLookup) *Registry {
	return &Registry{
		tasks:  []Task{},
		groups: groups,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Create stores a new pending task. When req.GroupID names an existing group,
// AssignedTo is that group's member ids right now; otherwise, including an
// unknown group id, it is just the creator.
func (r *Registry) Create(req CreateTaskRequest, creatorID string) (Task, error) {
	if err := apperr.FromValidator(validate.Struct(req)); err != nil {
		return Task{}, err
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}

	assigned := []string{creatorID}
	if req.GroupID != "" && r.groups != nil {
		if ids, ok := r.groups.MemberIDs(req.GroupID); ok {
			assigned = ids
		}
	}

	now := r.now()
	t := Task{
		ID:          r.newID(),
		Title:       req.Title,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Deadline:    req.Deadline,
		Status:      StatusPending,
		Priority:    req.Priority,
		AssignedTo:  assigned,
		CreatedBy:   creatorID,
		GroupID:     req.GroupID,
		Steps:       ReconcileSteps(nil, req.Steps, r.newID),
		Reminders:   []Reminder{},
	}

	r.mu.Lock()
	r.tasks = append(r.tasks, t)
	r.mu.Unlock()

	return t.clone(), nil
}

// Update merges the non-nil fields of req. The task is rebuilt off to the side
// and swapped in only when every field applied, and UpdatedAt always moves.
func (r *Registry) Update(id string, req UpdateTaskRequest) error {
	if err := apperr.FromValidator(validate.Struct(req)); err != nil {
		return err
	}
	if req.Steps != nil {
		if err := validateSteps(*req.Steps); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(id)
	if idx < 0 {
		return apperr.NotFound("task", id)
	}

	t := r.tasks[idx].clone()
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Deadline != nil {
		t.Deadline = *req.Deadline
	}
	if req.Priority != nil {
		t.Priority = *req.Priority
	}
	if req.GroupID != nil {
		t.GroupID = *req.GroupID
	}
	if req.Status != nil {
		t.Status = *req.Status
	}
	if req.Steps != nil {
		t.Steps = ReconcileSteps(t.Steps, *req.Steps, r.newID)
	}
	if req.Reminders != nil {
		t.Reminders = cloneReminders(*req.Reminders)
	}
	t.UpdatedAt = r.now()

	r.tasks[idx] = t
	return nil
}

// SetStatus sets the task status. Any value may follow any other.
func (r *Registry) SetStatus(id string, status Status) error {
	return r.Update(id, UpdateTaskRequest{Status: &status})
}

func (r *Registry) SetStepStatus(taskID, stepID string, status StepStatus) error {
	if status != StepPending && status != StepCompleted {
		return apperr.Invalid("Status", "must be one of [pending completed]")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(taskID)
	if idx < 0 {
		return apperr.NotFound("task", taskID)
	}
	t := &r.tasks[idx]
	for i := range t.Steps {
		if t.Steps[i].ID == stepID {
			t.Steps[i].Status = status
			t.UpdatedAt = r.now()
			return nil
		}
	}
	return apperr.NotFound("step", stepID)
}

func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.index(id)
	if idx < 0 {
		return apperr.NotFound("task", id)
	}
	r.tasks = append(r.tasks[:idx], r.tasks[idx+1:]...)
	return nil
}

func (r *Registry) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.index(id)
	if idx < 0 {
		return Task{}, false
	}
	return r.tasks[idx].clone(), true
}

// List returns every task in creation order.
func (r *Registry) List() []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return utils.Map(r.tasks, Task.clone)
}

// TasksForUser returns the tasks userID created or is assigned to. Each task
// appears once even when both hold.
func (r *Registry) TasksForUser(userID string) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mine := utils.Filter(r.tasks, func(t Task) bool {
		return t.CreatedBy == userID || utils.Contains(t.AssignedTo, userID)
	})
	return utils.Map(mine, Task.clone)
}

// TasksForGroup selects by GroupID only, never by AssignedTo. A group that no
// longer exists has no tasks, although the tasks keep its id.
func (r *Registry) TasksForGroup(groupID string) []Task {
	if groupID == "" {
		return []Task{}
	}
	if r.groups != nil {
		if _, ok := r.groups.MemberIDs(groupID); !ok {
			return []Task{}
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ours := utils.Filter(r.tasks, func(t Task) bool { return t.GroupID == groupID })
	return utils.Map(ours, Task.clone)
}

// index must be called with r.mu held.
func (r *Registry) index(id string) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
