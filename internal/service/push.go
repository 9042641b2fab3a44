package service

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"library-lending-backend/internal/logger"
)

type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

type firebasePushService struct {
	client messageSender
}

// NewFirebasePushService sends FCM messages to the per-patron topic
// "patron-<id>" that client apps subscribe to.
func NewFirebasePushService(ctx context.Context, projectID, credentialsFile string) (PushService, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase messaging: %w", err)
	}
	return &firebasePushService{client: client}, nil
}

func PatronTopic(patronID string) string {
	return "patron-" + patronID
}

func (s *firebasePushService) NotifyPatron(ctx context.Context, patronID, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Topic: PatronTopic(patronID),
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	logger.ExternalServiceCall("fcm", "send", "topic", msg.Topic)
	id, err := s.client.Send(ctx, msg)
	logger.ExternalServiceResult("fcm", "send", err, "topic", msg.Topic, "messageID", id)
	if err != nil {
		return fmt.Errorf("failed to send push notification: %w", err)
	}
	return nil
}
