package clients

import (
	"fmt"

	"github.com/rishipandey14/HRMS-Backend/src/internal/config"

	"github.com/streadway/amqp"
)

type RabbitMQ struct {
	Conn    *amqp.Connection
	Channel *amqp.Channel
	cfg     *config.RabbitMQConfig
}

func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	log.WithField("exchange", cfg.Exchange).Info("Connecting to RabbitMQ...")
	conn, err := amqp.Dial(cfg.Url)
	if err != nil {
		log.WithError(err).Errorf("Failed to connect to RabbitMQ: %v", err)
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		log.WithError(err).Errorf("Failed to open a channel: %v", err)
		_ = conn.Close()
		return nil, err
	}

	log.Info("Connected to RabbitMQ")

	return &RabbitMQ{
		Conn:    conn,
		Channel: channel,
		cfg:     cfg,
	}, nil
}

func (r *RabbitMQ) Close() error {
	var firstErr error

	if r.Channel != nil {
		if err := r.Channel.Close(); err != nil {
			log.WithError(err).Error("Failed to close RabbitMQ channel")
			firstErr = err
		} else {
			log.Info("RabbitMQ channel closed")
		}
	}

	if r.Conn != nil {
		if err := r.Conn.Close(); err != nil {
			log.WithError(err).Error("Failed to close RabbitMQ connection")
			if firstErr == nil {
				firstErr = err
			}
		} else {
			log.Info("RabbitMQ connection closed")
		}
	}

	return firstErr
}

// SetupExchange declares the exchange session events are published to.
func (r *RabbitMQ) SetupExchange() error {
	err := r.Channel.ExchangeDeclare(
		r.cfg.Exchange,
		r.cfg.ExchangeType,
		r.cfg.Durable,
		r.cfg.AutoDelete,
		r.cfg.Internal,
		r.cfg.NoWait,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to declare exchange: %v", err)
	}

	return nil
}
