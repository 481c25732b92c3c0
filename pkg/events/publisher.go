package events

import (
	"context"
	"encoding/json"

	"github.com/adjust/rmq/v5"
	"github.com/travigo/transferboard/pkg/ctdf"
	"github.com/travigo/transferboard/pkg/refresh"
)

const QueueName = "transferboard-events"

// Publisher pushes a summary event onto the queue after every refresh.
type Publisher struct {
	queue rmq.Queue
}

func NewPublisher(connection rmq.Connection) (*Publisher, error) {
	queue, err := connection.OpenQueue(QueueName)
	if err != nil {
		return nil, err
	}

	return &Publisher{queue: queue}, nil
}

func (p *Publisher) Publish(ctx context.Context, state refresh.State) error {
	eventBytes, err := json.Marshal(NewRefreshEvent(state))
	if err != nil {
		return err
	}

	return p.queue.PublishBytes(eventBytes)
}

func NewRefreshEvent(state refresh.State) ctdf.Event {
	eventType := ctdf.EventTypeTransferTableRefreshed
	if state.Table.Empty() {
		eventType = ctdf.EventTypeTransferTableEmpty
	}

	return ctdf.Event{
		Type:      eventType,
		Timestamp: state.LastUpdated,
		Body: ctdf.TransferTableSummary{
			Counter:        state.Counter,
			LastUpdated:    state.LastUpdated,
			Rows:           state.Rows(),
			SkippedSources: state.Table.SkippedSources(),
		},
	}
}
