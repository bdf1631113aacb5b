//go:build integration

package activity_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"claimsight/internal/activity"
	"claimsight/internal/platform/kafka"
	"claimsight/internal/platform/postgres"
	"claimsight/pkg/testutil/containers"
)

type JournalSuite struct {
	suite.Suite
	store *activity.PostgresStore
}

func TestJournalSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(JournalSuite))
}

func (s *JournalSuite) SetupSuite() {
	ctx := context.Background()
	pg := containers.NewPostgresContainer(s.T())
	db, err := postgres.OpenDB(ctx, pg.DSN)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = db.Close() })

	s.store = activity.NewPostgresStore(db)
	s.Require().NoError(s.store.Migrate(ctx))
}

func (s *JournalSuite) TestAppendIsIdempotentAndFilterable() {
	ctx := context.Background()
	now := time.Now().UTC()
	events := []activity.Event{
		{ID: "e1", ClaimID: "CLM-PG", Action: activity.ActionClaimSubmitted, Actor: "Alex Doe", Timestamp: now},
		{ID: "e2", ClaimID: "CLM-PG", Action: activity.ActionStatusChanged, Actor: "Alex Doe", Timestamp: now,
			Details: map[string]string{"from": "Pending", "to": "Investigation"}},
		{ID: "e3", ClaimID: "CLM-PG", Action: activity.ActionCommentAdded, Actor: "Alex Doe", Timestamp: now},
	}
	for _, e := range events {
		s.Require().NoError(s.store.Append(ctx, e))
	}
	s.Require().NoError(s.store.Append(ctx, events[0]))

	all, err := s.store.ListByClaim(ctx, "CLM-PG")
	s.Require().NoError(err)
	s.Len(all, 3)

	changes, err := s.store.ListByClaim(ctx, "CLM-PG", activity.ActionStatusChanged)
	s.Require().NoError(err)
	s.Require().Len(changes, 1)
	s.Equal("Investigation", changes[0].Details["to"])
}

type KafkaSinkSuite struct {
	suite.Suite
	broker string
}

func TestKafkaSinkSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaSinkSuite))
}

func (s *KafkaSinkSuite) SetupSuite() {
	s.broker = containers.NewKafkaContainer(s.T()).Broker
}

func (s *KafkaSinkSuite) TestPublishesKeyedByClaim() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	const topic = "claimsight.claim-activity.test"

	producer, err := kafka.NewClient(ctx, []string{s.broker})
	s.Require().NoError(err)
	defer producer.Close()
	s.Require().NoError(kafka.EnsureTopic(ctx, producer, topic, 1))

	sink := activity.NewKafkaSink(producer, topic)
	s.Require().NoError(sink.Publish(ctx, activity.Event{ID: "k1", ClaimID: "CLM-K", Action: activity.ActionCommentAdded}))

	consumer, err := kafka.NewClient(ctx, []string{s.broker},
		kgo.ConsumeTopics(topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().NoError(fetches.Err())
	records := fetches.Records()
	s.Require().NotEmpty(records)
	s.Equal("CLM-K", string(records[0].Key))

	var got activity.Event
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal(activity.ActionCommentAdded, got.Action)
}
