package eventbus_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/launchpath/launchpath/pkg/channels/gochannel"
	"github.com/launchpath/launchpath/pkg/eventbus"
	"github.com/launchpath/launchpath/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	return bus
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	var (
		mu       sync.Mutex
		received []*events.StepCompleted
	)

	err := bus.Handle(events.StepCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.StepCompleted)
		require.True(t, ok)

		mu.Lock()
		received = append(received, completed)
		mu.Unlock()

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	event := events.StepCompleted{
		BaseEvent:      events.NewBaseEvent(events.StepCompletedEvent, "ob-1"),
		StepProgressID: "sp-1",
		StepID:         "st-1",
		Progress:       50,
	}

	require.NoError(t, bus.Publish(ctx, "ob-1", event))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, "ob-1", received[0].OnboardingID)
	assert.Equal(t, "sp-1", received[0].StepProgressID)
	assert.Equal(t, 50, received[0].Progress)
}

func TestWatermillEventBus_UnhandledTypeIsAcked(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	handled := make(chan struct{}, 1)

	err := bus.Handle(events.OnboardingCompletedEvent, func(_ context.Context, _ any) error {
		handled <- struct{}{}

		return nil
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	require.NoError(t, bus.Subscribe(ctx))

	reminder := events.ReminderSent{
		BaseEvent: events.NewBaseEvent(events.ReminderSentEvent, "ob-1"),
	}
	require.NoError(t, bus.Publish(ctx, "ob-1", reminder))

	completed := events.OnboardingCompleted{
		BaseEvent:   events.NewBaseEvent(events.OnboardingCompletedEvent, "ob-1"),
		CompletedAt: time.Now().UTC(),
	}
	require.NoError(t, bus.Publish(ctx, "ob-1", completed))

	select {
	case <-handled:
	case <-time.After(time.Second):
		t.Fatal("handler was not invoked")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newTestBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
