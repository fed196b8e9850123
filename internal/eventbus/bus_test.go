package eventbus

import (
	"testing"

	"github.com/rs/zerolog"
)

func newTestBus() *Bus {
	return New(zerolog.Nop())
}

func TestPublishOrderTypedThenWildcard(t *testing.T) {
	b := newTestBus()
	var order []string

	b.Subscribe(Wildcard, func(any) { order = append(order, "wild1") })
	b.Subscribe(EventFrameReceived, func(any) { order = append(order, "typed1") })
	b.Subscribe(EventFrameReceived, func(any) { order = append(order, "typed2") })
	b.Subscribe(Wildcard, func(any) { order = append(order, "wild2") })

	b.Publish(EventFrameReceived, nil)

	want := []string{"typed1", "typed2", "wild1", "wild2"}
	if len(order) != len(want) {
		t.Fatalf("got %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order mismatch: got %v, want %v", order, want)
		}
	}
}

func TestSubscriberPanicDoesNotBlockOthers(t *testing.T) {
	b := newTestBus()
	called := false
	b.Subscribe(EventDeviceError, func(any) { panic("boom") })
	b.Subscribe(EventDeviceError, func(any) { called = true })

	b.Publish(EventDeviceError, nil)

	if !called {
		t.Fatal("second subscriber was not invoked after first panicked")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := newTestBus()
	calls := 0
	unsub := b.Subscribe(EventStatsUpdate, func(any) { calls++ })
	b.Publish(EventStatsUpdate, nil)
	unsub()
	b.Publish(EventStatsUpdate, nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRemoveAllListenersClearsBothSets(t *testing.T) {
	b := newTestBus()
	calls := 0
	b.Subscribe(EventFrameReceived, func(any) { calls++ })
	b.Subscribe(Wildcard, func(any) { calls++ })
	b.RemoveAllListeners()
	b.Publish(EventFrameReceived, nil)
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}
