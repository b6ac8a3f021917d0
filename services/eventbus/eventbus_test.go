package eventbus

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New()

	var got interface{}
	bus.Subscribe(TopicDataUpdated, func(payload interface{}) {
		got = payload
	})

	bus.Publish(TopicDataUpdated, "hello")
	assert.Equal(t, "hello", got)
}

func TestPublishIsTopicScoped(t *testing.T) {
	bus := New()

	called := false
	bus.Subscribe(TopicError, func(interface{}) { called = true })

	bus.Publish(TopicDataUpdated, nil)
	assert.False(t, called)
}

func TestLateSubscriberMissesEarlierEvents(t *testing.T) {
	bus := New()

	bus.Publish(TopicCacheCleared, nil)

	called := false
	bus.Subscribe(TopicCacheCleared, func(interface{}) { called = true })
	assert.False(t, called, "no replay for late subscribers")

	bus.Publish(TopicCacheCleared, nil)
	assert.True(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := New()

	count := 0
	sub := bus.Subscribe(TopicOddsUpdated, func(interface{}) { count++ })

	bus.Publish(TopicOddsUpdated, nil)
	bus.Unsubscribe(sub)
	bus.Publish(TopicOddsUpdated, nil)

	assert.Equal(t, 1, count)
	assert.Equal(t, 0, bus.SubscriberCount(TopicOddsUpdated))
}

func TestMultipleSubscribersAllDelivered(t *testing.T) {
	bus := New()

	count := 0
	for i := 0; i < 3; i++ {
		bus.Subscribe(TopicDataUpdated, func(interface{}) { count++ })
	}

	bus.Publish(TopicDataUpdated, nil)
	assert.Equal(t, 3, count)
}
