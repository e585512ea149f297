package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-users/internal/config"
	"ms-users/internal/models"
)

// MessageWriter is the subset of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

const (
	publishMaxAttempts = 3
	publishBackoffMin  = 50 * time.Millisecond
	publishBackoffMax  = 250 * time.Millisecond
)

// Producer writes synchronously. Timeout, when set, caps each publish.
type Producer struct {
	Writer  MessageWriter
	Topics  config.TopicConfig
	Timeout time.Duration
}

func NewProducer(brokers []string, topics config.TopicConfig, timeout time.Duration) *Producer {
	writer := &kafka.Writer{
		Addr:            kafka.TCP(brokers...),
		Balancer:        &kafka.Hash{},
		BatchTimeout:    10 * time.Millisecond,
		RequiredAcks:    kafka.RequireOne,
		MaxAttempts:     publishMaxAttempts,
		WriteBackoffMin: publishBackoffMin,
		WriteBackoffMax: publishBackoffMax,
		WriteTimeout:    timeout,
		ReadTimeout:     timeout,
	}
	return &Producer{Writer: writer, Topics: topics, Timeout: timeout}
}

func (p *Producer) topicFor(eventType models.UserEventType) (string, error) {
	switch eventType {
	case models.UserCreated:
		return p.Topics.UserCreated, nil
	case models.UserUpdated:
		return p.Topics.UserUpdated, nil
	case models.UserDeleted:
		return p.Topics.UserDeleted, nil
	}
	return "", fmt.Errorf("unknown user event type %q", eventType)
}

// buildMessage keys by user id so every event for one user lands on one partition.
func (p *Producer) buildMessage(event models.UserEvent) (kafka.Message, error) {
	topic, err := p.topicFor(event.Type)
	if err != nil {
		return kafka.Message{}, err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Topic: topic,
		Key:   []byte(strconv.FormatInt(event.UserID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	}, nil
}

func (p *Producer) PublishUserEvent(ctx context.Context, event models.UserEvent) error {
	msg, err := p.buildMessage(event)
	if err != nil {
		return err
	}
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event.Type, msg.Topic, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
