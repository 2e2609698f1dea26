package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"kymaclub/config"
	"kymaclub/models"
	"kymaclub/services/credits"
	"kymaclub/services/notification"
	"kymaclub/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitNotificationWorker runs the async notification worker in background.
func InitNotificationWorker(notifSvc notification.NotificationService) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeCreditsGranted, handleCreditsGrantedTask(notifSvc))

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[NotificationWorker] 🚀 Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[NotificationWorker] ❌ Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[NotificationWorker] ❗ Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleCreditsGrantedTask(notifSvc notification.NotificationService) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.CreditGrantPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			log.Printf("[CreditsGrantedHandler] 🔴 Invalid payload: %v", err)
			return err
		}

		title := "Credits added"
		body := credits.FormatCredits(p.Amount) + " have been added to your account"
		data := map[string]string{
			"type":          "credits_granted",
			"transactionId": p.TransactionID,
			"kind":          p.Kind,
		}

		log.Printf("[CreditsGrantedHandler] 💳 Notifying user %s of %s grant (txn %s)", p.UserID, p.Kind, p.TransactionID)

		if err := notifSvc.SendUserPushNotification(ctx, p.UserID, title, body, data); err != nil {
			log.Printf("[CreditsGrantedHandler] ❌ Failed to send notification: %v", err)
			return err
		}
		return nil
	}
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[NotificationWorker] ⚠️ Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
