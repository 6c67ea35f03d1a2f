//go:build integration

package notify_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"orgbook/internal/company/models"
	"orgbook/internal/notify"
	"orgbook/pkg/testutil/containers"

	id "orgbook/pkg/domain"
)

type KafkaNotifierSuite struct {
	suite.Suite
	redpanda *containers.RedpandaContainer
}

func TestKafkaNotifierSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaNotifierSuite))
}

func (s *KafkaNotifierSuite) SetupSuite() {
	s.redpanda = containers.GetManager().GetRedpanda(s.T())
}

func (s *KafkaNotifierSuite) TestPublishAndConsume() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	topic := "orgbook.test." + uuid.NewString()

	producer, err := kgo.NewClient(kgo.SeedBrokers(s.redpanda.Brokers...))
	s.Require().NoError(err)
	defer producer.Close()

	s.Require().NoError(notify.EnsureTopic(ctx, producer, topic, 1))
	// Creating an existing topic must be a no-op.
	s.Require().NoError(notify.EnsureTopic(ctx, producer, topic, 1))

	notifier := notify.NewKafka(producer, notify.WithTopic(topic))
	go func() {
		_ = notifier.Run(context.Background())
	}()

	ws := id.WorkspaceID(uuid.New())
	companyID := id.CompanyID(uuid.New())
	event := models.CompanyBatchCreated{
		WorkspaceID: ws,
		RecordType:  models.RecordTypeCompany,
		Entries: []models.CreatedEntry{
			{ID: companyID, Domain: "acme.com", Name: "Acme", Position: 1},
		},
		OccurredAt: time.Now().UTC(),
	}
	s.Require().NoError(notifier.CompanyBatchCreated(ctx, event))
	// Close flushes the buffered event before the consumer looks for it.
	s.Require().NoError(notifier.Close(ctx))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.redpanda.Brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())

	records := fetches.Records()
	s.Require().Len(records, 1)
	s.Equal(ws.String(), string(records[0].Key))

	var decoded models.CompanyBatchCreated
	s.Require().NoError(json.Unmarshal(records[0].Value, &decoded))
	s.Equal(models.RecordTypeCompany, decoded.RecordType)
	s.Require().Len(decoded.Entries, 1)
	s.Equal("acme.com", decoded.Entries[0].Domain)
	s.Equal(int64(1), decoded.Entries[0].Position)
}
