package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

//Action is the kind of mutation recorded in a Task's audit trail
type Action int8

const (
	ActionCreated Action = iota
	ActionUpdated
	ActionDeleted
	ActionStatusChanged
)

func (a Action) String() string {
	switch a {
	case ActionCreated:
		return "created"
	case ActionUpdated:
		return "updated"
	case ActionDeleted:
		return "deleted"
	case ActionStatusChanged:
		return "status_changed"
	}
	return "invalid"
}

//ParseAction normalizes the received value to the canonical lowercase
//casing, unknown values are rejected as invalid arguments.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "created":
		return ActionCreated, nil
	case "updated":
		return ActionUpdated, nil
	case "deleted":
		return ActionDeleted, nil
	case "status_changed":
		return ActionStatusChanged, nil
	}
	return Action(-1), NewErrorf(ErrorCodeInvalidArgument, "unknown action: %q", s)
}

//TaskHistory is one immutable entry in a Task's append-only audit
//trail. Entries are never mutated or deleted once written, they
//outlive the Task they describe.
type TaskHistory struct {
	ID         uuid.UUID
	TaskID     uuid.UUID
	UserID     uuid.UUID
	Action     Action
	Details    string
	ChangeTime time.Time
}

//HistoryDetails renders the human readable detail string recorded for
//the received action.
func HistoryDetails(action Action, title string) string {
	switch action {
	case ActionCreated:
		return fmt.Sprintf("Task %q created.", title)
	case ActionUpdated:
		return fmt.Sprintf("Task %q updated.", title)
	case ActionDeleted:
		return fmt.Sprintf("Task %q deleted.", title)
	case ActionStatusChanged:
		return fmt.Sprintf("Task %q changed status.", title)
	}
	return ""
}

//StatusChangedDetails renders the detail string for a status toggle,
//naming the state the Task moved into.
func StatusChangedDetails(title string, to Status) string {
	return fmt.Sprintf("Task %q changed status to %s.", title, to)
}
