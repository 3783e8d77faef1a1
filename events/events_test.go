package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewPublisher_Disabled(t *testing.T) {
	tests := []struct {
		name    string
		brokers string
	}{
		{name: "empty string", brokers: ""},
		{name: "only separators and whitespace", brokers: " , , "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPublisher(tt.brokers)
			assert.False(t, p.Enabled())
			assert.Nil(t, p.writer)
			assert.NoError(t, p.Close())
		})
	}
}

func TestNewPublisher_Enabled(t *testing.T) {
	p := NewPublisher("localhost:9092, localhost:9093")

	assert.True(t, p.Enabled())
	require.NotNil(t, p.writer)
	assert.Equal(t, OrdersTopic, p.writer.Topic)
	assert.Len(t, p.brokers, 2)
	assert.NoError(t, p.Close())
}

func TestPublish_DisabledIsNoOp(t *testing.T) {
	p := NewPublisher("")

	err := p.Publish(context.Background(), OrderEvent{
		Name:    OrderPlaced,
		OrderID: "652f1a2b3c4d5e6f78901234",
		Amount:  10375,
	})
	assert.NoError(t, err)
}

func TestPublishAsync_DisabledSpawnsNothing(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := NewPublisher("")
	p.PublishAsync(OrderEvent{
		Name:       OrderShipped,
		OrderID:    "652f1a2b3c4d5e6f78901234",
		OccurredAt: time.Now(),
	})
}
