package messaging_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mealforge/recipe-service/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishBuffersUntilBatchSize(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var (
		mu        sync.Mutex
		published int
	)

	mockTopic := MockTopic{
		id: "recipe-events",
		publishFunc: func(ctx context.Context, msg messaging.Message) messaging.PublishResult {
			mu.Lock()
			published++
			mu.Unlock()
			return MockPublishResult{
				getFunc: func(ctx context.Context) (string, error) { return "message-id", nil },
				readyCh: make(chan struct{}, 1),
			}
		},
	}

	client := &MockClient{topics: map[string]messaging.Topic{"recipe-events": mockTopic}}

	publisher, err := messaging.NewBufferedPublisherWithRetry(ctx, client, messaging.TopicPublishConfig{
		BatchSize:           3,
		MaxRetryCount:       1,
		FlushDelayThreshold: time.Hour, // keep the periodic flusher out of the way
	})
	require.NoError(t, err)

	msg := &messaging.MsgPayload{Data: []byte(`{"kind":"recipe.created"}`)}

	require.NoError(t, publisher.Publish(ctx, "recipe-events", msg))
	require.NoError(t, publisher.Publish(ctx, "recipe-events", msg))

	mu.Lock()
	assert.Equal(t, 0, published, "messages must stay buffered below batch size")
	mu.Unlock()

	// third message reaches the batch size and triggers the flush
	require.NoError(t, publisher.Publish(ctx, "recipe-events", msg))

	mu.Lock()
	assert.Equal(t, 3, published)
	mu.Unlock()

	assert.Empty(t, publisher.GetBufferedMessages("recipe-events"))

	require.NoError(t, publisher.Close(ctx))
	assert.True(t, client.closed)
}

func TestRetryLogicAndBackgroundRoutine(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	maxRetryCount := int16(3)
	transientFailures := int16(2)

	var (
		retryCountMutex sync.Mutex
		attempts        int16
	)

	mockResult := MockPublishResult{
		getFunc: func(ctx context.Context) (string, error) {
			retryCountMutex.Lock()
			defer retryCountMutex.Unlock()

			attempts++
			if attempts <= transientFailures {
				return "", errors.New("publish error")
			}

			cancel()
			return "message-id", nil
		},
		readyCh: make(chan struct{}, 1),
	}

	mockTopic := MockTopic{
		id: "recipe-events",
		publishFunc: func(ctx context.Context, msg messaging.Message) messaging.PublishResult {
			return mockResult
		},
	}

	client := &MockClient{topics: map[string]messaging.Topic{"recipe-events": mockTopic}}

	publisher, err := messaging.NewBufferedPublisherWithRetry(ctx, client, messaging.TopicPublishConfig{
		BatchSize:            1,
		MaxRetryCount:        maxRetryCount,
		FlushDelayThreshold:  10 * time.Millisecond,
		InitialRetryInterval: time.Millisecond,
	})
	require.NoError(t, err)

	err = publisher.Publish(ctx, "recipe-events", &messaging.MsgPayload{Data: []byte("payload")})
	require.NoError(t, err)

	// wait until the retry goroutine worked through the failed attempts
	<-ctx.Done()

	retryCountMutex.Lock()
	defer retryCountMutex.Unlock()
	assert.Equal(t, transientFailures+1, attempts)
}

func TestPublishAfterCloseFails(t *testing.T) {
	ctx := context.Background()

	client := &MockClient{topics: map[string]messaging.Topic{}}

	publisher, err := messaging.NewBufferedPublisherWithRetry(ctx, client, messaging.TopicPublishConfig{
		BatchSize:           10,
		FlushDelayThreshold: time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, publisher.Close(ctx))

	err = publisher.Publish(ctx, "recipe-events", &messaging.MsgPayload{Data: []byte("payload")})
	assert.Error(t, err)
}
