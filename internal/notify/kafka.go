package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"orgbook/internal/company/models"
)

// Producer is the subset of the franz-go client the notifier publishes with.
type Producer interface {
	ProduceSync(ctx context.Context, records ...*kgo.Record) kgo.ProduceResults
}

const (
	// DefaultTopic carries company batch-created events.
	DefaultTopic = "orgbook.company.batch_created"

	defaultBufferSize = 256
)

// KafkaNotifier publishes batch-created events to Kafka through a bounded
// in-process buffer drained by Run. Enqueueing never blocks the reconciler:
// when the buffer is full the event is dropped and counted in the log, which
// is acceptable for a notification that carries no correctness weight.
type KafkaNotifier struct {
	client Producer
	topic  string
	inbox  chan models.CompanyBatchCreated
	logger *slog.Logger

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// KafkaOption configures a KafkaNotifier.
type KafkaOption func(*KafkaNotifier)

// WithTopic overrides the destination topic.
func WithTopic(topic string) KafkaOption {
	return func(n *KafkaNotifier) {
		if topic != "" {
			n.topic = topic
		}
	}
}

// WithBufferSize sets the in-process buffer capacity.
func WithBufferSize(size int) KafkaOption {
	return func(n *KafkaNotifier) {
		if size > 0 {
			n.inbox = make(chan models.CompanyBatchCreated, size)
		}
	}
}

// WithLogger sets a logger for publish failures and drops.
func WithLogger(logger *slog.Logger) KafkaOption {
	return func(n *KafkaNotifier) {
		n.logger = logger
	}
}

// NewKafka constructs a notifier over an existing franz-go client.
// Call Run to start draining the buffer and Close to flush it before exit.
func NewKafka(client Producer, opts ...KafkaOption) *KafkaNotifier {
	n := &KafkaNotifier{
		client: client,
		topic:  DefaultTopic,
		inbox:  make(chan models.CompanyBatchCreated, defaultBufferSize),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// CompanyBatchCreated enqueues an event for publishing. It never blocks; a
// full buffer drops the event.
func (n *KafkaNotifier) CompanyBatchCreated(ctx context.Context, event models.CompanyBatchCreated) error {
	select {
	case n.inbox <- event:
		return nil
	default:
		if n.logger != nil {
			n.logger.WarnContext(ctx, "notification buffer full, dropping event",
				"workspace_id", event.WorkspaceID,
				"entries", len(event.Entries),
			)
		}
		return nil
	}
}

// Run drains the buffer and publishes events until ctx is cancelled or Close
// is called. Publish failures are logged and the event is discarded; there is
// no retry beyond what the Kafka client does internally.
func (n *KafkaNotifier) Run(ctx context.Context) error {
	defer close(n.done)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-n.inbox:
			n.publish(ctx, event)
		case <-n.stop:
			n.flush(ctx)
			return nil
		}
	}
}

// Close stops the worker after it has published every buffered event, so a
// short-lived process does not exit with the batch notification still queued.
// Run must have been started; ctx bounds the wait.
func (n *KafkaNotifier) Close(ctx context.Context) error {
	n.stopOnce.Do(func() { close(n.stop) })
	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *KafkaNotifier) flush(ctx context.Context) {
	for {
		select {
		case event := <-n.inbox:
			n.publish(ctx, event)
		default:
			return
		}
	}
}

func (n *KafkaNotifier) publish(ctx context.Context, event models.CompanyBatchCreated) {
	payload, err := json.Marshal(event)
	if err != nil {
		if n.logger != nil {
			n.logger.ErrorContext(ctx, "marshal batch-created event", "error", err)
		}
		return
	}

	record := &kgo.Record{
		Topic: n.topic,
		Key:   []byte(event.WorkspaceID.String()),
		Value: payload,
	}
	if err := n.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		if n.logger != nil {
			n.logger.WarnContext(ctx, "publish batch-created event failed",
				"topic", n.topic,
				"workspace_id", event.WorkspaceID,
				"error", err,
			)
		}
	}
}

// EnsureTopic creates the notification topic if it does not exist yet.
// Safe to call on every startup.
func EnsureTopic(ctx context.Context, client *kgo.Client, topic string, partitions int32) error {
	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, partitions, 1, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			return fmt.Errorf("create topic %s: %w", r.Topic, r.Err)
		}
	}
	return nil
}
