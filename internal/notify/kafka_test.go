package notify

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twmb/franz-go/pkg/kgo"

	"orgbook/internal/company/models"

	id "orgbook/pkg/domain"
)

// captureProducer records produced records in place of a real broker.
type captureProducer struct {
	mu      sync.Mutex
	records []*kgo.Record
}

func (p *captureProducer) ProduceSync(_ context.Context, records ...*kgo.Record) kgo.ProduceResults {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, records...)

	results := make(kgo.ProduceResults, 0, len(records))
	for _, r := range records {
		results = append(results, kgo.ProduceResult{Record: r})
	}
	return results
}

func (p *captureProducer) produced() []*kgo.Record {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*kgo.Record(nil), p.records...)
}

func testEvent(ws id.WorkspaceID) models.CompanyBatchCreated {
	return models.CompanyBatchCreated{
		WorkspaceID: ws,
		RecordType:  models.RecordTypeCompany,
		Entries: []models.CreatedEntry{
			{ID: id.CompanyID(uuid.New()), Domain: "acme.com", Name: "Acme", Position: 1},
		},
		OccurredAt: time.Now().UTC(),
	}
}

func TestKafkaNotifierEnqueueNeverBlocks(t *testing.T) {
	// No Run loop is draining, so the buffer fills up; enqueueing past
	// capacity must drop instead of blocking the reconciler.
	n := NewKafka(nil, WithBufferSize(2))

	ctx := context.Background()
	event := testEvent(id.WorkspaceID(uuid.New()))
	require.NoError(t, n.CompanyBatchCreated(ctx, event))
	require.NoError(t, n.CompanyBatchCreated(ctx, event))
	require.NoError(t, n.CompanyBatchCreated(ctx, event)) // dropped, not blocked

	assert.Len(t, n.inbox, 2)
}

// TestKafkaNotifierCloseFlushesBufferedEvents covers the one-shot process
// shape: the event is enqueued, the process is about to exit, and Close must
// not return before the worker has published what is still in the buffer.
func TestKafkaNotifierCloseFlushesBufferedEvents(t *testing.T) {
	producer := &captureProducer{}
	n := NewKafka(producer, WithBufferSize(8))

	ws := id.WorkspaceID(uuid.New())
	require.NoError(t, n.CompanyBatchCreated(context.Background(), testEvent(ws)))

	// The event is already buffered when the worker starts.
	runErr := make(chan error, 1)
	go func() {
		runErr <- n.Run(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, n.Close(ctx))
	require.NoError(t, <-runErr)

	records := producer.produced()
	require.Len(t, records, 1)
	assert.Equal(t, DefaultTopic, records[0].Topic)
	assert.Equal(t, ws.String(), string(records[0].Key))

	// Close is idempotent, and late enqueues neither panic nor publish.
	require.NoError(t, n.Close(ctx))
	require.NoError(t, n.CompanyBatchCreated(context.Background(), testEvent(ws)))
	assert.Len(t, producer.produced(), 1)
}

func TestNoopNotifier(t *testing.T) {
	var n Noop
	assert.NoError(t, n.CompanyBatchCreated(context.Background(), models.CompanyBatchCreated{}))
}
