package events

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/IBM/sarama"
)

// Handler processes one decoded event. Returning an error leaves the message
// unmarked so it is redelivered.
type Handler func(ctx context.Context, e Event) error

// Consumer reads events as part of a consumer group.
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	groupID string
	handle  Handler
}

// ConsumerConfig holds Kafka consumer configuration
type ConsumerConfig struct {
	Brokers []string
	Topic   string
	GroupID string
	Handler Handler
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(config ConsumerConfig) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, err
	}
	return &Consumer{group: group, topic: config.Topic, groupID: config.GroupID, handle: config.Handler}, nil
}

// Run consumes until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	go func() {
		for err := range c.group.Errors() {
			log.Printf("❌ Kafka consumer error: %v", err)
		}
	}()
	log.Printf("✅ Kafka consumer started (group: %s, topic: %s)", c.groupID, c.topic)

	handler := &groupHandler{handle: c.handle}
	for {
		if err := c.group.Consume(ctx, []string{c.topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) || errors.Is(err, context.Canceled) {
				return nil
			}
			log.Printf("Error from Kafka consumer: %v", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// Close gracefully shuts down the consumer
func (c *Consumer) Close() error {
	log.Println("Closing Kafka consumer...")
	return c.group.Close()
}

type groupHandler struct {
	handle Handler
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if h.process(session.Context(), message.Value) {
				session.MarkMessage(message, "")
			}
		case <-session.Context().Done():
			return nil
		}
	}
}

// process reports whether the message should be marked. Undecodable
// messages are marked so they are skipped.
func (h *groupHandler) process(ctx context.Context, value []byte) bool {
	var e Event
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("❌ Failed to unmarshal event: %v", err)
		return true
	}
	if e.Type == "" {
		return true
	}
	if err := h.handle(ctx, e); err != nil {
		log.Printf("❌ Failed to handle %s event: %v", e.Type, err)
		return false
	}
	return true
}
