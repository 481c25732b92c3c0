package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adjust/rmq/v5"
	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/transferboard/pkg/ctdf"
)

type RedisConsumer struct {
	Connection rmq.Connection
	QueueName  string

	NumberConsumers int
	BatchSize       int

	Timeout time.Duration

	Consumer rmq.BatchConsumer
}

func (c *RedisConsumer) Setup() error {
	log.Info().Str("queue", c.QueueName).Msg("Starting consumers")

	queue, err := c.Connection.OpenQueue(c.QueueName)
	if err != nil {
		return err
	}
	if err := queue.StartConsuming(int64(c.NumberConsumers*c.BatchSize), 1*time.Second); err != nil {
		return err
	}

	for i := 0; i < c.NumberConsumers; i++ {
		log.Debug().Msgf("Starting %s consumer %d", c.QueueName, i)

		if _, err := queue.AddBatchConsumer(fmt.Sprintf("%s-%d", c.QueueName, i), int64(c.BatchSize), c.Timeout, c.Consumer); err != nil {
			return err
		}
	}

	return nil
}

type queuedEvent struct {
	Type      ctdf.EventType
	Timestamp time.Time
	Body      json.RawMessage
}

// BatchConsumer logs every refresh event and, when Verbose is set, dumps the
// decoded summary to Output.
type BatchConsumer struct {
	Output  io.Writer
	Verbose bool
}

func NewBatchConsumer(verbose bool) *BatchConsumer {
	return &BatchConsumer{
		Output:  os.Stdout,
		Verbose: verbose,
	}
}

func (consumer *BatchConsumer) Consume(batch rmq.Deliveries) {
	for _, delivery := range batch {
		summary, eventType, err := decodeEvent(delivery.Payload())
		if err != nil {
			log.Error().Err(err).Msg("Failed to decode event")

			if err := delivery.Reject(); err != nil {
				log.Error().Err(err).Msg("Failed to reject event")
			}
			continue
		}

		log.Info().
			Str("type", string(eventType)).
			Int("counter", summary.Counter).
			Int("rows", len(summary.Rows)).
			Int("skippedsources", summary.SkippedSources).
			Msg("Transfer table event")

		if consumer.Verbose {
			pretty.Fprintf(consumer.Output, "%# v\n", summary)
		}

		if err := delivery.Ack(); err != nil {
			log.Error().Err(err).Msg("Failed to ack event")
		}
	}
}

func decodeEvent(payload string) (ctdf.TransferTableSummary, ctdf.EventType, error) {
	var event queuedEvent
	var summary ctdf.TransferTableSummary

	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return summary, "", err
	}

	switch event.Type {
	case ctdf.EventTypeTransferTableRefreshed, ctdf.EventTypeTransferTableEmpty:
	default:
		return summary, event.Type, fmt.Errorf("unknown event type %q", event.Type)
	}

	if err := json.Unmarshal(event.Body, &summary); err != nil {
		return summary, event.Type, err
	}

	return summary, event.Type, nil
}
