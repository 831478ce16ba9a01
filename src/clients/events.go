package clients

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"
	"github.com/rishipandey14/HRMS-Backend/src/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// Publisher is the part of *amqp.Channel the event publisher needs.
type Publisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// EventPublisher fans session lifecycle events out on the configured exchange.
type EventPublisher struct {
	channel Publisher
	cfg     *config.RabbitMQConfig
	appID   string
}

func NewEventPublisher(cfg *config.Configuration, channel Publisher) *EventPublisher {
	return &EventPublisher{
		channel: channel,
		cfg:     &cfg.Queue.RabbitMQ,
		appID:   cfg.App.Name,
	}
}

// PublishSessionEvent publishes a session_started or session_ended message.
func (p *EventPublisher) PublishSessionEvent(ctx context.Context, event *models.SessionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	routingKey, err := p.routingKey(event.Action)
	if err != nil {
		return err
	}
	if event.EventID == "" {
		event.EventID = uuid.NewString()
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal session event: %w", err)
	}

	err = p.channel.Publish(
		p.cfg.Exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.EventID,
			AppId:        p.appID,
			Type:         event.Action,
			Timestamp:    event.Timestamp,
			Body:         body,
		},
	)
	if err != nil {
		log.WithError(err).Error("Failed to publish session event")
		return fmt.Errorf("failed to publish session event: %w", err)
	}

	log.WithFields(logrus.Fields{
		"session_id":  event.SessionID,
		"action":      event.Action,
		"exchange":    p.cfg.Exchange,
		"routing_key": routingKey,
	}).Debug("Session event published")

	return nil
}

func (p *EventPublisher) routingKey(action string) (string, error) {
	switch action {
	case models.ActionSessionStarted:
		return p.cfg.RoutingKeys.SessionStarted, nil
	case models.ActionSessionEnded:
		return p.cfg.RoutingKeys.SessionEnded, nil
	}
	return "", fmt.Errorf("%w: unknown session event %q", models.ErrInvalidParams, action)
}
