package model

// Status is the lifecycle state of a task. The three values are part of
// the wire format (API payloads and the tasks.status column store them
// verbatim), so they must never be renamed.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

// Statuses lists every status in declaration order. This order is the
// canonical one: selection widgets and the per-user report both follow it.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// IsValid reports whether s is one of the three known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// StatusChoice pairs a human-readable label with a status code.
type StatusChoice struct {
	Label string
	Value Status
}

// StatusChoices returns the fixed ordered label-to-code mapping used to
// populate selection widgets: To Do, In Progress, Done.
func StatusChoices() []StatusChoice {
	return []StatusChoice{
		{Label: "To Do", Value: StatusTodo},
		{Label: "In Progress", Value: StatusInProgress},
		{Label: "Done", Value: StatusDone},
	}
}
