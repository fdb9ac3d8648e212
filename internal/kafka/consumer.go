package kafka

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Handler returns nil only when the message was processed and its offset
// may be committed. A non-nil error is retried.
type Handler func(ctx context.Context, m kafka.Message) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Consumer fans messages out to one lane per worker, keyed by partition.
// A lane handles its partitions in offset order and retries a failing
// message until it succeeds, so a commit never skips past a failure.
type Consumer struct {
	r          messageReader
	workers    int
	log        zerolog.Logger
	newBackOff func() backoff.BackOff
}

func NewConsumer(brokers []string, group, topic string, workers int, log zerolog.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return newConsumer(r, workers, log.With().Str("topic", topic).Str("group", group).Logger())
}

func newConsumer(r messageReader, workers int, log zerolog.Logger) *Consumer {
	if workers <= 0 {
		workers = 1
	}
	return &Consumer{r: r, workers: workers, log: log, newBackOff: retryBackOff}
}

func retryBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 10 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Start consumes until ctx is done. Queued messages that were not handled
// stay uncommitted and are redelivered.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()
	ctx, cancel := context.WithCancel(ctx)

	lanes := make([]chan kafka.Message, c.workers)
	var wg sync.WaitGroup
	for i := range lanes {
		lanes[i] = make(chan kafka.Message, 64)
		wg.Add(1)
		go func(in <-chan kafka.Message) {
			defer wg.Done()
			for m := range in {
				if ctx.Err() != nil {
					continue
				}
				c.handle(ctx, h, m)
			}
		}(lanes[i])
	}
	defer func() {
		for _, l := range lanes {
			close(l)
		}
		cancel()
		wg.Wait()
	}()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		select {
		case lanes[m.Partition%len(lanes)] <- m:
		case <-ctx.Done():
			return nil
		}
	}
}

func (c *Consumer) handle(ctx context.Context, h Handler, m kafka.Message) {
	log := c.log.With().Int("partition", m.Partition).Int64("offset", m.Offset).Logger()

	err := backoff.RetryNotify(func() error {
		return h(ctx, m)
	}, backoff.WithContext(c.newBackOff(), ctx), func(err error, wait time.Duration) {
		log.Warn().Err(err).Dur("retry_in", wait).Msg("handler failed")
	})
	if err != nil {
		// only a cancelled ctx ends the retries; the offset stays uncommitted
		log.Warn().Err(err).Msg("handler abandoned")
		return
	}
	if err := c.r.CommitMessages(ctx, m); err != nil {
		log.Error().Err(err).Msg("commit failed")
	}
}
