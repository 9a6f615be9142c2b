package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"riskserve/internal/audit"
)

// Mirror publishes inference records to a Kafka topic so downstream drift
// monitoring can consume the stream without reading the serving database.
type Mirror struct {
	client *kgo.Client
	topic  string
}

// New connects to the brokers and makes sure the topic exists. Single
// partition is enough; the stream is low volume and ordering per topic keeps
// consumers simple.
func New(ctx context.Context, brokers []string, topic string) (*Mirror, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(5*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	adm := kadm.NewClient(client)
	resp, err := adm.CreateTopics(ctx, 1, 1, nil, topic)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("create topic %q: %w", topic, err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			client.Close()
			return nil, fmt.Errorf("create topic %q: %w", topic, r.Err)
		}
	}

	return &Mirror{client: client, topic: topic}, nil
}

// Append publishes one record as a JSON message keyed by request id.
func (m *Mirror) Append(ctx context.Context, rec audit.Record) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal inference record: %w", err)
	}

	record := &kgo.Record{
		Topic: m.topic,
		Key:   []byte(rec.RequestID),
		Value: payload,
	}
	if err := m.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce inference record: %w", err)
	}
	return nil
}

func (m *Mirror) Close() {
	m.client.Close()
}
