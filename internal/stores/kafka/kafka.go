package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

const produceTimeout = 5 * time.Second

// Conf wraps a franz-go client used to publish storefront events.
type Conf struct {
	client *kgo.Client
}

// NewConf connects to the given seed brokers.
func NewConf(brokers []string) (*Conf, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.AllowAutoTopicCreation(),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Conf{client: client}, nil
}

// ProduceMessage synchronously writes one record to topic.
func (c *Conf) ProduceMessage(topic string, key, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), produceTimeout)
	defer cancel()

	record := &kgo.Record{Topic: topic, Key: key, Value: value}
	if err := c.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

// Close releases the broker connections.
func (c *Conf) Close() {
	c.client.Close()
}
