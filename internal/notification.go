package internal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

//DueSoonWindow is the fixed lookahead threshold that triggers an
//automatic notification at Task creation.
const DueSoonWindow = 48 * time.Hour

//Notification is a due-soon alert addressed to a Task's owner. It is
//created as a side effect of Task creation and mutated only by the
//read flag toggle.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TaskID    uuid.UUID
	Message   string
	Read      bool
	CreatedAt time.Time
}

//DueSoon reports whether a due date falls inside the lookahead window
//relative to the received time. The boundary itself counts as due soon.
func DueSoon(dueDate, now time.Time) bool {
	return !dueDate.After(now.Add(DueSoonWindow))
}

//DueSoonMessage renders the fixed-template alert message for a Task.
func DueSoonMessage(title string) string {
	return fmt.Sprintf("Task '%s' is due soon!", title)
}
