package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"briefcast/types"

	"github.com/IBM/sarama"
)

const queueSize = 64

// Publisher sends events from a background goroutine so hooks never block
// on the broker.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	now      func() time.Time

	queue chan Event
	done  chan struct{}
	once  sync.Once
}

// NewPublisher connects a sync producer to brokers.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForLocal
	cfg.Producer.Return.Successes = true
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	log.Printf("✅ Kafka producer ready (topic: %s)", topic)
	return NewPublisherWithProducer(producer, topic), nil
}

// NewPublisherWithProducer wraps an existing producer.
func NewPublisherWithProducer(producer sarama.SyncProducer, topic string) *Publisher {
	p := &Publisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
	}
	go p.run()
	return p
}

func (p *Publisher) run() {
	defer close(p.done)
	for e := range p.queue {
		if err := p.send(e); err != nil {
			log.Printf("❌ Failed to publish %s event: %v", e.Type, err)
		}
	}
}

func (p *Publisher) send(e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(e.TrackID),
		Value: sarama.ByteEncoder(body),
	})
	return err
}

// Publish queues e. Events are dropped when the queue is full.
func (p *Publisher) Publish(e Event) {
	if e.At.IsZero() {
		e.At = p.now()
	}
	select {
	case p.queue <- e:
	default:
		log.Printf("⚠️  Event queue full, dropping %s for %s", e.Type, e.TrackID)
	}
}

// Close drains the queue and closes the producer.
func (p *Publisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		<-p.done
		err = p.producer.Close()
	})
	return err
}

func (p *Publisher) TrackStarted(track types.Track, cached bool) {
	p.Publish(Event{Type: TrackStarted, TrackID: track.ID, Title: track.Title, Src: track.Src, Cached: cached})
}

func (p *Publisher) TrackEnded(track types.Track) {
	p.Publish(Event{Type: TrackEnded, TrackID: track.ID, Title: track.Title, Src: track.Src})
}

func (p *Publisher) GenerationFinished(gen types.GenerationState, took time.Duration, err error) {
	e := Event{Type: GenerationSucceeded, TrackID: gen.ID, Title: gen.Title, DurationMS: took.Milliseconds()}
	if err != nil {
		e.Type = GenerationFailed
		e.Error = err.Error()
	}
	p.Publish(e)
}
