package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"communerag/internal/model"
)

// InteractionPublisher pushes interaction records onto the durable log
// queue. The serving path fire-and-forgets; persistence happens in the
// worker, so a slow database never delays an answer.
type InteractionPublisher struct {
	conn      *amqp.Connection
	queueName string
}

func NewInteractionPublisher(conn *amqp.Connection, queueName string) *InteractionPublisher {
	return &InteractionPublisher{
		conn:      conn,
		queueName: queueName,
	}
}

func (p *InteractionPublisher) Publish(ctx context.Context, record model.Interaction) error {
	ch, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("open rabbitmq channel failed: %w", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(
		p.queueName,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare interaction queue failed: %w", err)
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal interaction payload failed: %w", err)
	}

	if err := ch.PublishWithContext(
		ctx,
		"",
		p.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp.Persistent,
		},
	); err != nil {
		return fmt.Errorf("publish interaction failed: %w", err)
	}
	return nil
}
