package events

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/rabbitmq/amqp091-go"
)

// Fanout exchanges consumed by downstream notification services.
const (
	ExchangeOrderPlaced     = "order_placed"
	ExchangeAdoptionDecided = "adoption_decided"
)

type OrderPlacedEvent struct {
	OrderID    string  `json:"orderId"`
	UserID     string  `json:"userId"`
	TotalPrice float64 `json:"totalPrice"`
	ItemCount  int     `json:"itemCount"`
}

type AdoptionDecidedEvent struct {
	RequestID string `json:"requestId"`
	UserID    string `json:"userId"`
	PetID     string `json:"petId"`
	PetName   string `json:"petName"`
	Status    string `json:"status"`
}

// Publisher fans application events out over AMQP. A nil Publisher is valid
// and drops everything, so callers never need to branch on configuration.
type Publisher struct {
	conn *amqp091.Connection
	ch   *amqp091.Channel
}

// Connect dials AMQP and declares the exchanges. An empty URL disables
// publishing and returns a nil Publisher without error.
func Connect(url string) (*Publisher, error) {
	if url == "" {
		return nil, nil
	}

	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	for _, exchange := range []string{ExchangeOrderPlaced, ExchangeAdoptionDecided} {
		if err := ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
			ch.Close()
			conn.Close()
			return nil, err
		}
	}

	log.Println("[EVENTS] [INFO] connected, exchanges declared")
	return &Publisher{conn: conn, ch: ch}, nil
}

// Publish is best effort: failures are logged, never surfaced to the caller.
func (p *Publisher) Publish(exchange string, payload interface{}) {
	if p == nil {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Println("[EVENTS] [ERROR] marshal failed:", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = p.ch.PublishWithContext(ctx, exchange, "", false, false, amqp091.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
	if err != nil {
		log.Printf("[EVENTS] [ERROR] publish to %s failed: %v", exchange, err)
		return
	}
	log.Printf("[EVENTS] [INFO] published to %s", exchange)
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.ch.Close()
	p.conn.Close()
}
