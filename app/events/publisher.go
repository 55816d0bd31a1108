// Package events publishes post lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Type names a post lifecycle event.
type Type string

const (
	PostCreated   Type = "post.created"
	PostUpdated   Type = "post.updated"
	PostPublished Type = "post.published"
	PostDeleted   Type = "post.deleted"
)

const DefaultTopic = "posts"

// Event describes a change to a post
type Event struct {
	ID       string    `json:"id"`
	Type     Type      `json:"type"`
	PostID   string    `json:"post_id"`
	AuthorID string    `json:"author_id,omitempty"`
	At       time.Time `json:"at"`
}

// NewEvent builds an event with a fresh id
func NewEvent(t Type, postID, authorID string, at time.Time) Event {
	return Event{ID: uuid.NewString(), Type: t, PostID: postID, AuthorID: authorID, At: at}
}

// Publisher delivers events to interested consumers
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// NopPublisher drops every event
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

func (NopPublisher) Close() error { return nil }

// KafkaPublisher sends events to a Kafka topic through an async producer.
// Messages are keyed by post id so events of one post stay ordered.
type KafkaPublisher struct {
	producer sarama.AsyncProducer
	topic    string
	done     chan struct{}
}

// KafkaConfig returns the producer configuration used by NewKafkaPublisher
func KafkaConfig(retries int, timeout time.Duration) *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Errors = true
	cfg.Producer.Retry.Max = retries
	if timeout > 0 {
		cfg.Producer.Timeout = timeout
	}
	return cfg
}

// NewKafkaPublisher connects an async producer to brokers
func NewKafkaPublisher(brokers []string, topic string, cfg *sarama.Config) (*KafkaPublisher, error) {
	const op = "events.NewKafkaPublisher"
	producer, err := sarama.NewAsyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewKafkaPublisherWithProducer(producer, topic), nil
}

// NewKafkaPublisherWithProducer wraps an existing producer
func NewKafkaPublisherWithProducer(producer sarama.AsyncProducer, topic string) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	p := &KafkaPublisher{producer: producer, topic: topic, done: make(chan struct{})}
	go p.drainErrors()
	return p
}

func (p *KafkaPublisher) drainErrors() {
	defer close(p.done)
	for err := range p.producer.Errors() {
		log.Error().Err(err.Err).Str("op", "events.KafkaPublisher").Str("topic", err.Msg.Topic).Msg("failed to deliver event")
	}
}

// Publish queues the event on the producer
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	const op = "events.Publish"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Key:       sarama.StringEncoder(event.PostID),
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.At,
	}
	select {
	case p.producer.Input() <- msg:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// Close flushes pending messages and stops the producer
func (p *KafkaPublisher) Close() error {
	err := p.producer.Close()
	<-p.done
	return err
}
