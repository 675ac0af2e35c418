package kafka

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProducer struct {
	mu      sync.Mutex
	topics  []string
	keys    []string
	values  [][]byte
	failErr error
}

func (r *recordingProducer) ProduceMessage(topic string, key, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	r.keys = append(r.keys, string(key))
	r.values = append(r.values, value)
	return r.failErr
}

func (r *recordingProducer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.topics)
}

func TestPublishAsyncProducesEncodedEvent(t *testing.T) {
	p := &recordingProducer{}
	PublishAsync(p, TopicOrderPlaced, "7", OrderPlacedEvent{OrderID: 7, Total: "10"}, "trace")

	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Equal(t, TopicOrderPlaced, p.topics[0])
	assert.Equal(t, "7", p.keys[0])
	var got OrderPlacedEvent
	require.NoError(t, json.Unmarshal(p.values[0], &got))
	assert.Equal(t, int64(7), got.OrderID)
}

func TestPublishAsyncNilProducer(t *testing.T) {
	assert.NotPanics(t, func() {
		PublishAsync(nil, TopicCustomerCreated, "1", CustomerCreatedEvent{}, "trace")
	})
}

func TestPublishAsyncSwallowsProducerError(t *testing.T) {
	p := &recordingProducer{failErr: errors.New("broker down")}
	PublishAsync(p, TopicCustomerCreated, "1", CustomerCreatedEvent{ID: 1}, "trace")
	require.Eventually(t, func() bool { return p.count() == 1 }, time.Second, 5*time.Millisecond)
}

func TestNewConfRequiresBrokers(t *testing.T) {
	_, err := NewConf(nil)
	assert.Error(t, err)
}
