package ledger

import (
	"context"
	"fmt"

	"kymaclub/models"
	"kymaclub/services/tasks"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// AsynqGrantNotifier queues credit-grant notifications on the asynq worker
// instead of pushing inline, so a slow FCM round-trip never sits inside the
// ledger transaction path.
type AsynqGrantNotifier struct {
	Client *asynq.Client
	Logger *zap.Logger
}

// NewAsynqGrantNotifier creates a notifier backed by the given asynq client.
func NewAsynqGrantNotifier(client *asynq.Client, logger *zap.Logger) *AsynqGrantNotifier {
	return &AsynqGrantNotifier{Client: client, Logger: logger}
}

// NotifyCreditsGranted enqueues a grant notification task.
func (n *AsynqGrantNotifier) NotifyCreditsGranted(ctx context.Context, payload models.CreditGrantPayload) error {
	task, opts, err := tasks.NewCreditsGrantedTask(payload)
	if err != nil {
		return fmt.Errorf("failed to build notification task: %w", err)
	}
	info, err := n.Client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification task: %w", err)
	}
	n.Logger.Debug("queued credit grant notification",
		zap.String("taskId", info.ID), zap.String("userId", payload.UserID))
	return nil
}
