package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"oracle-service/internal/models"

	amqp "github.com/rabbitmq/amqp091-go"
)

const PolicyEventQueue = "policy_events"

type PolicyEventType string

const (
	EventClaimSettled  PolicyEventType = "claim_settled"
	EventPolicyExpired PolicyEventType = "policy_expired"
)

// PolicyEvent is the message body pushed to the notification consumer.
type PolicyEvent struct {
	Type            PolicyEventType    `json:"type"`
	ProductType     models.ProductType `json:"product_type"`
	OnChainPolicyID int64              `json:"on_chain_policy_id"`
	HolderAddress   string             `json:"holder_address"`
	Amount          float64            `json:"amount,omitempty"`
	TxHash          string             `json:"tx_hash,omitempty"`
	OccurredAt      time.Time          `json:"occurred_at"`
}

// PolicyEventPublisher publishes policy lifecycle events. A nil publisher is
// valid and drops events, so the service runs without a broker in dev.
type PolicyEventPublisher struct {
	broker *BrokerConnection
}

func NewPolicyEventPublisher(broker *BrokerConnection) *PolicyEventPublisher {
	return &PolicyEventPublisher{broker: broker}
}

func (p *PolicyEventPublisher) Publish(ctx context.Context, evt PolicyEvent) error {
	if p == nil || p.broker == nil {
		return nil
	}

	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal policy event: %w", err)
	}

	err = p.broker.channel.PublishWithContext(
		ctx,
		"",               // exchange
		PolicyEventQueue, // routing key (queue name)
		false,            // mandatory
		false,            // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
			Timestamp:    time.Now(),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish policy event: %w", err)
	}

	slog.Info("Policy event published",
		"queue", PolicyEventQueue,
		"type", evt.Type,
		"product_type", evt.ProductType,
		"on_chain_policy_id", evt.OnChainPolicyID)

	return nil
}
