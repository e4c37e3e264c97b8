package realtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoboard/internal/models"
)

func TestTaskHub_PublishReachesSubscribers(t *testing.T) {
	hub := NewTaskHub()
	a, cancelA := hub.Subscribe()
	b, cancelB := hub.Subscribe()
	defer cancelA()
	defer cancelB()

	hub.Publish(models.TaskEvent{Type: models.EventTaskCreated, TaskID: "1"})

	for _, ch := range []<-chan models.TaskEvent{a, b} {
		select {
		case ev := <-ch:
			assert.Equal(t, "1", ev.TaskID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestTaskHub_CancelUnsubscribes(t *testing.T) {
	hub := NewTaskHub()
	ch, cancel := hub.Subscribe()
	require.Equal(t, 1, hub.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, hub.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	hub.Publish(models.TaskEvent{Type: models.EventTaskDeleted, TaskID: "1"})
}

func TestTaskHub_PublishDoesNotBlockOnSlowSubscriber(t *testing.T) {
	hub := NewTaskHub()
	_, cancel := hub.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*4; i++ {
			hub.Publish(models.TaskEvent{Type: models.EventTaskUpdated, TaskID: "x"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
}
