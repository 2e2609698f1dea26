package tasks

import (
	"encoding/json"

	"kymaclub/models"

	"github.com/hibiken/asynq"
)

const TypeCreditsGranted = "credits:granted"

// NewCreditsGrantedTask builds the queued notification task for a fresh
// credit grant.
func NewCreditsGrantedTask(payload models.CreditGrantPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeCreditsGranted, b)
	opts := []asynq.Option{asynq.MaxRetry(3)}

	return task, opts, nil
}
