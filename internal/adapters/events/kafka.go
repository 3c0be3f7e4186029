// Package events publica los eventos de dominio (apuestas resueltas) hacia Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/alejandrodnm/truthbounty/internal/domain"
)

// DefaultTopic es el topic de apuestas resueltas.
const DefaultTopic = "truthbounty.trades.resolved"

// messageWriter es el subconjunto de *kafka.Writer que usamos.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher implementa ports.EventPublisher.
type KafkaPublisher struct {
	writer messageWriter
	topic  string
}

// NewKafkaPublisher crea un writer sobre los brokers dados.
func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("events.NewKafkaPublisher: %w: no brokers", domain.ErrInvalidInput)
	}
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		BatchTimeout:           10 * time.Millisecond,
		ReadTimeout:            10 * time.Second,
		WriteTimeout:           10 * time.Second,
	}
	return newKafkaPublisher(w, topic), nil
}

func newKafkaPublisher(w messageWriter, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: w, topic: topic}
}

// PublishResolution serializa el evento en JSON con el id de la apuesta como key.
func (p *KafkaPublisher) PublishResolution(ctx context.Context, evt domain.TradeResolved) error {
	value, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("events.PublishResolution: marshal: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.BetID),
		Value: value,
		Time:  evt.ResolvedAt,
		Headers: []kafka.Header{
			{Key: "platform", Value: []byte(evt.Platform)},
			{Key: "status", Value: []byte(evt.Status)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("events.PublishResolution: topic %s: %w", p.topic, err)
	}

	slog.Debug("published trade resolution", "bet", evt.BetID, "status", evt.Status)
	return nil
}

// Close cierra el writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Noop descarta los eventos (Kafka no configurado).
type Noop struct{}

func (Noop) PublishResolution(context.Context, domain.TradeResolved) error { return nil }
func (Noop) Close() error                                                  { return nil }
