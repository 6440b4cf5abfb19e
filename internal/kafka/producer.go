package kafka

import (
	"context"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

type Producer struct {
	w       *kafka.Writer
	inbox   chan kafka.Message
	closeCh chan struct{}
	once    sync.Once
	log     *logrus.Entry
}

func NewProducer(brokers []string, topic string, buf int, log *logrus.Entry) *Producer {
	p := &Producer{
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		log:     log.WithField("topic", topic),
	}
	p.w = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true, // errors surface through Completion
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				p.log.WithError(err).WithField("count", len(msgs)).Error("kafka write failed")
			}
		},
	}
	return p
}

// Start runs the write loop until Close is called and the inbox is drained.
func (p *Producer) Start() {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			if err := p.w.WriteMessages(context.Background(), m); err != nil {
				p.log.WithError(err).Error("kafka enqueue failed")
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.WithError(err).Warn("kafka writer close")
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	p.inbox <- kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
}

// Close stops accepting messages; the loop flushes what is left and exits.
func (p *Producer) Close() { p.once.Do(func() { close(p.inbox) }) }

// WaitClosed blocks until the loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
