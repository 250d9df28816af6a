package event

import (
	"fmt"
	"log/slog"

	"oracle-service/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
)

// BrokerConnection owns the AMQP connection and the channel the event
// publisher writes on. The policy event queue is declared once here, so
// publishing itself never re-declares.
type BrokerConnection struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

func ConnectRabbitMQ(cfg config.RabbitMQConfig) (*BrokerConnection, error) {
	url := fmt.Sprintf("amqp://%s:%s@%s:%s/",
		cfg.Username,
		cfg.Password,
		cfg.Host,
		cfg.Port,
	)

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(
		PolicyEventQueue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", PolicyEventQueue, err)
	}

	slog.Info("Connected to RabbitMQ",
		"host", cfg.Host,
		"port", cfg.Port,
		"queue", PolicyEventQueue)

	return &BrokerConnection{conn: conn, channel: ch}, nil
}

func (b *BrokerConnection) Close() error {
	if b.channel != nil {
		if err := b.channel.Close(); err != nil {
			slog.Error("Failed to close RabbitMQ channel", "error", err)
		}
	}
	if b.conn != nil {
		if err := b.conn.Close(); err != nil {
			slog.Error("Failed to close RabbitMQ connection", "error", err)
			return err
		}
	}
	slog.Info("RabbitMQ connection closed")
	return nil
}
