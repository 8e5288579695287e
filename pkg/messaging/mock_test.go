package messaging_test

import (
	"context"

	"github.com/mealforge/recipe-service/pkg/messaging"
)

// MockClient - messaging.Client test double.
type MockClient struct {
	topics map[string]messaging.Topic
	closed bool
}

func (c *MockClient) Topic(id string) messaging.Topic {
	return c.topics[id]
}

func (c *MockClient) Close() error {
	c.closed = true
	return nil
}

// MockTopic - messaging.Topic test double.
type MockTopic struct {
	id          string
	publishFunc func(ctx context.Context, msg messaging.Message) messaging.PublishResult
}

func (t MockTopic) Publish(ctx context.Context, msg messaging.Message) messaging.PublishResult {
	return t.publishFunc(ctx, msg)
}

func (t MockTopic) Stop()  {}
func (t MockTopic) Flush() {}

func (t MockTopic) String() string {
	return t.id
}

func (t MockTopic) ConfigPublishSettings(config messaging.TopicPublishConfig) {}

// MockPublishResult - messaging.PublishResult test double.
type MockPublishResult struct {
	getFunc func(ctx context.Context) (string, error)
	readyCh chan struct{}
}

func (r MockPublishResult) Get(ctx context.Context) (string, error) {
	return r.getFunc(ctx)
}

func (r MockPublishResult) Ready() <-chan struct{} {
	return r.readyCh
}
