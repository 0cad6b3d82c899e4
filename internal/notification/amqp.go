package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nekogravitycat/stadium-booking-backend/internal/booking"
	"github.com/nekogravitycat/stadium-booking-backend/internal/schedule"
)

// Publisher publishes JSON messages to a durable topic exchange.
type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// JSONPublisher is the part of Publisher the broker sink uses.
type JSONPublisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BrokerSink publishes booking events under their routing key
// (booking.created, booking.confirmed, booking.cancelled).
type BrokerSink struct {
	pub JSONPublisher
}

func NewBrokerSink(pub JSONPublisher) *BrokerSink {
	return &BrokerSink{pub: pub}
}

func (s *BrokerSink) Name() string { return "broker" }

// EventMessage is the wire form of a booking event.
type EventMessage struct {
	Event      string          `json:"event"`
	BookingID  string          `json:"booking_id"`
	StadiumID  string          `json:"stadium_id"`
	OwnerID    string          `json:"owner_id"`
	UserID     string          `json:"user_id"`
	Date       string          `json:"date"`
	StartTime  string          `json:"start_time"`
	EndTime    string          `json:"end_time"`
	Status     string          `json:"status"`
	TotalPrice float64         `json:"total_price"`
	ActorID    string          `json:"actor_id"`
	ByCustomer bool            `json:"by_customer,omitempty"`
	Reason     string          `json:"reason,omitempty"`
	Recipients []RecipientInfo `json:"recipients"`
}

type RecipientInfo struct {
	UserID string `json:"user_id"`
	Type   string `json:"type"`
	Title  string `json:"title"`
	Body   string `json:"body"`
}

func NewEventMessage(e booking.Event, msgs []Notification) EventMessage {
	b := e.Booking
	m := EventMessage{
		Event:      string(e.Type),
		BookingID:  b.ID,
		StadiumID:  b.StadiumID,
		OwnerID:    b.OwnerID,
		UserID:     b.UserID,
		Date:       schedule.FormatDate(b.Date),
		StartTime:  b.StartTime.String(),
		EndTime:    b.EndTime.String(),
		Status:     string(b.Status),
		TotalPrice: b.TotalPrice,
		ActorID:    e.ActorID,
		ByCustomer: e.ByCustomer,
		Reason:     e.Reason,
		Recipients: make([]RecipientInfo, len(msgs)),
	}
	for i, n := range msgs {
		m.Recipients[i] = RecipientInfo{UserID: n.UserID, Type: string(n.Type), Title: n.Title, Body: n.Body}
	}
	return m
}

func (s *BrokerSink) Deliver(ctx context.Context, e booking.Event, msgs []Notification) error {
	if err := s.pub.PublishJSON(ctx, string(e.Type), NewEventMessage(e, msgs)); err != nil {
		return fmt.Errorf("publish %s: %w", e.Type, err)
	}
	return nil
}
