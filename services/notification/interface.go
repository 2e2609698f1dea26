package notification

import (
	"context"
	"fmt"

	userRepo "kymaclub/database/repository/user"
	"kymaclub/utils"

	"firebase.google.com/go/v4/messaging"
)

// NotificationService defines methods for sending FCM pushes.
type NotificationService interface {
	SendUserPushNotification(ctx context.Context, userID, title, body string, data map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Users userRepo.UserRepository
}

func NewDefaultNotificationService(users userRepo.UserRepository) (*DefaultNotificationService, error) {
	if users == nil {
		return nil, fmt.Errorf("notification service initialization error: user repository is nil")
	}
	return &DefaultNotificationService{Users: users}, nil
}

// SendUserPushNotification looks up a user's FCM token and sends a push.
func (s *DefaultNotificationService) SendUserPushNotification(
	ctx context.Context,
	userID, title, body string,
	data map[string]string,
) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SendUserPushNotification: could not find user %s: %w", userID, err)
	}
	token := u.FCMToken
	if token == "" {
		return fmt.Errorf("SendUserPushNotification: user %s has no FCM token", userID)
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		return fmt.Errorf("SendUserPushNotification: failed to send FCM message: %w", err)
	}
	return nil
}
