package job

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// TaskContactChanged is the job type name stored in Redis.
const TaskContactChanged = "contact:changed"

// Action is the mutation recorded by a contact:changed task.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// ContactChangedPayload is the JSON payload of the contact:changed task.
type ContactChangedPayload struct {
	Action     Action    `json:"action"`
	ContactID  string    `json:"contact_id"`
	Name       string    `json:"name,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewContactChangedTask builds the audit task.
//
// Audit entries are low priority and retried a few times.
func NewContactChangedTask(p ContactChangedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal contact changed payload: %w", err)
	}

	return asynq.NewTask(
		TaskContactChanged,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue(QueueLow),
		asynq.Timeout(30*time.Second),
	), nil
}
