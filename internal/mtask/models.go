package mtask

import (
	"time"

	"kyri56xcaesar/pms-collab/internal/utils"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type ReminderType string

const (
	ReminderNotification ReminderType = "notification"
	ReminderCall         ReminderType = "call"
	ReminderMessage      ReminderType = "message"
	ReminderRingtone     ReminderType = "ringtone"
)

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Deadline    time.Time  `json:"deadline"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	AssignedTo  []string   `json:"assignedTo"`
	CreatedBy   string     `json:"createdBy"`
	GroupID     string     `json:"groupId,omitempty"` // empty for personal tasks
	Steps       []Step     `json:"steps"`
	Reminders   []Reminder `json:"reminders"`
}

type Step struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Deadline    time.Time  `json:"deadline"`
	Status      StepStatus `json:"status"`
}

// Reminder is carried on a task verbatim; nothing schedules or fires it.
type Reminder struct {
	ID         string       `json:"id"`
	Type       ReminderType `json:"type"`
	Time       time.Time    `json:"time"`
	Message    string       `json:"message"`
	Recipients []string     `json:"recipients"`
}

type StepSpec struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Deadline    time.Time `json:"deadline"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description" validate:"required"`
	Deadline    time.Time  `json:"deadline"`
	Priority    Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	GroupID     string     `json:"groupId"`
	Steps       []StepSpec `json:"steps" validate:"dive"`
}

// UpdateTaskRequest carries the fields to merge; nil means untouched. A non-nil
// Steps, even an empty one, replaces the step list through ReconcileSteps.
type UpdateTaskRequest struct {
	Title       *string     `json:"title" validate:"omitnil,min=1"`
	Description *string     `json:"description" validate:"omitnil,min=1"`
	Deadline    *time.Time  `json:"deadline"`
	Priority    *Priority   `json:"priority" validate:"omitnil,oneof=low medium high"`
	GroupID     *string     `json:"groupId"`
	Status      *Status     `json:"status" validate:"omitnil,oneof=pending in-progress completed"`
	Steps       *[]StepSpec `json:"steps"`
	Reminders   *[]Reminder `json:"reminders"`
}

type StatusRequest struct {
	Status Status `json:"status"`
}

type StepStatusRequest struct {
	Status StepStatus `json:"status"`
}

// Progress counts completed steps against all steps.
func (t Task) Progress() (done, total int) {
	done = utils.Count(t.Steps, func(s Step) bool { return s.Status == StepCompleted })
	return done, len(t.Steps)
}

func (t Task) clone() Task {
	out := t
	out.AssignedTo = append([]string{}, t.AssignedTo...)
	out.Steps = append([]Step{}, t.Steps...)
	out.Reminders = cloneReminders(t.Reminders)
	return out
}

func cloneReminders(in []Reminder) []Reminder {
	out := make([]Reminder, len(in))
	for i, rem := range in {
		rem.Recipients = append([]string{}, rem.Recipients...)
		out[i] = rem
	}
	return out
}
