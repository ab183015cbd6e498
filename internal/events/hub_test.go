package events

import (
	"testing"
	"time"
)

func TestHubSubscribePublish(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("shoot-1")
	defer cancel()

	h.Publish(Event{ShootID: "shoot-1", Attempt: 1, Score: 75})

	select {
	case evt := <-ch:
		if evt.Attempt != 1 || evt.Score != 75 {
			t.Errorf("unexpected event: %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestHubIsolatesShoots(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("shoot-1")
	defer cancel()

	h.Publish(Event{ShootID: "shoot-2", Attempt: 1})

	select {
	case evt := <-ch:
		t.Errorf("received another shoot's event: %+v", evt)
	default:
	}
}

func TestHubFansOutToAllSubscribers(t *testing.T) {
	h := NewHub()

	ch1, cancel1 := h.Subscribe("shoot-1")
	defer cancel1()
	ch2, cancel2 := h.Subscribe("shoot-1")
	defer cancel2()

	h.Publish(Event{ShootID: "shoot-1", Attempt: 3})

	for i, ch := range []<-chan Event{ch1, ch2} {
		select {
		case evt := <-ch:
			if evt.Attempt != 3 {
				t.Errorf("subscriber %d got unexpected event: %+v", i, evt)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d timed out", i)
		}
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub()

	ch, cancel := h.Subscribe("shoot-1")
	cancel()

	if _, open := <-ch; open {
		t.Error("channel must be closed after cancel")
	}

	// Publishing after cancel must not panic or deliver.
	h.Publish(Event{ShootID: "shoot-1", Attempt: 1})

	// Calling cancel twice is safe.
	cancel()
}

func TestHubPublishNeverBlocks(t *testing.T) {
	h := NewHub()

	_, cancel := h.Subscribe("shoot-1")
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Overfill the subscriber buffer without anyone draining it.
		for i := 0; i < subscriberBuffer*2; i++ {
			h.Publish(Event{ShootID: "shoot-1", Attempt: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}
}
