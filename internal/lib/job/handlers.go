package job

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
)

// handleContactChangedTask writes the audit entry for a contact mutation.
//
// A payload that cannot be decoded is skipped rather than retried.
func (j *JobService) handleContactChangedTask(_ context.Context, t *asynq.Task) error {
	var p ContactChangedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return fmt.Errorf("failed to unmarshal contact changed payload: %v: %w", err, asynq.SkipRetry)
	}

	j.logger.Info().
		Str("type", TaskContactChanged).
		Str("action", string(p.Action)).
		Str("contact_id", p.ContactID).
		Str("name", p.Name).
		Time("occurred_at", p.OccurredAt).
		Msg("contact changed")

	return nil
}
