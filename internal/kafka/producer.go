package kafka

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer queues messages in an inbox and writes them from one goroutine.
// Publish never blocks: when the inbox is full the message is dropped and
// logged.
type Producer struct {
	w       messageWriter
	log     zerolog.Logger
	inbox   chan kafka.Message
	closeCh chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func NewProducer(brokers []string, topic string, buf int, log zerolog.Logger) *Producer {
	log = log.With().Str("topic", topic).Logger()
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				log.Error().Err(err).Int("messages", len(msgs)).Msg("kafka async write failed")
			}
		},
	}, buf, log)
}

func newProducer(w messageWriter, buf int, log zerolog.Logger) *Producer {
	return &Producer{
		w:       w,
		log:     log,
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
	}
}

func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for m := range p.inbox {
			// drain with a fresh context once ctx is done
			wctx := ctx
			if ctx.Err() != nil {
				wctx = context.Background()
			}
			if err := p.w.WriteMessages(wctx, m); err != nil {
				p.log.Error().Err(err).Str("key", string(m.Key)).Msg("kafka write failed")
			}
		}
		if err := p.w.Close(); err != nil {
			p.log.Warn().Err(err).Msg("kafka writer close")
		}
	}()
}

func (p *Producer) Publish(key, value []byte, headers ...kafka.Header) {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case p.inbox <- m:
	default:
		p.dropped.Add(1)
		p.log.Warn().Str("key", string(key)).Msg("kafka inbox full, message dropped")
	}
}

// Dropped reports how many messages Publish discarded.
func (p *Producer) Dropped() int64 { return p.dropped.Load() }

// Close stops accepting messages; the loop flushes what is queued and exits.
func (p *Producer) Close() { p.once.Do(func() { close(p.inbox) }) }

// WaitClosed blocks until the loop has flushed and closed the writer.
func (p *Producer) WaitClosed() { <-p.closeCh }
