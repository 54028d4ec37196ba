package ws

import (
	"testing"

	"go.uber.org/zap"

	"predictmarket/internal/config"
)

func TestHubPublishesToSubscribers(t *testing.T) {
	hub := NewHub(config.LiveFeedConfig{MaxPerMarket: 10, SendBufferLen: 4}, zap.NewNop())

	ch1, cancel1, err := hub.Subscribe("m1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel1()
	ch2, cancel2, err := hub.Subscribe("m1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel2()
	chOther, cancelOther, err := hub.Subscribe("m2")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancelOther()

	hub.MarketUpdated("m1", 60, 40, 5)

	for _, ch := range []<-chan Update{ch1, ch2} {
		select {
		case update := <-ch:
			if update.MarketID != "m1" || update.YesPct != 60 || update.Votes != 5 {
				t.Fatalf("update = %+v", update)
			}
		default:
			t.Fatalf("subscriber did not receive the update")
		}
	}
	select {
	case update := <-chOther:
		t.Fatalf("unrelated market received %+v", update)
	default:
	}
}

func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := NewHub(config.LiveFeedConfig{MaxPerMarket: 10, SendBufferLen: 2}, zap.NewNop())

	ch, cancel, err := hub.Subscribe("m1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	defer cancel()

	// Third publish must not block even though nobody is reading.
	hub.MarketUpdated("m1", 10, 90, 1)
	hub.MarketUpdated("m1", 20, 80, 2)
	hub.MarketUpdated("m1", 30, 70, 3)

	if len(ch) != 2 {
		t.Fatalf("buffered updates = %d, want 2", len(ch))
	}
	first := <-ch
	if first.Votes != 1 {
		t.Fatalf("first buffered update = %+v", first)
	}
}

func TestHubSubscriberLimit(t *testing.T) {
	hub := NewHub(config.LiveFeedConfig{MaxPerMarket: 1, SendBufferLen: 1}, zap.NewNop())

	_, cancel, err := hub.Subscribe("m1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if _, _, err := hub.Subscribe("m1"); err != ErrTooManySubscribers {
		t.Fatalf("err = %v, want ErrTooManySubscribers", err)
	}

	// Cancelling frees the slot.
	cancel()
	if hub.SubscriberCount("m1") != 0 {
		t.Fatalf("subscriber count = %d after cancel", hub.SubscriberCount("m1"))
	}
	if _, _, err := hub.Subscribe("m1"); err != nil {
		t.Fatalf("Subscribe after cancel: %v", err)
	}
}

func TestHubCancelStopsDelivery(t *testing.T) {
	hub := NewHub(config.LiveFeedConfig{}, zap.NewNop())

	ch, cancel, err := hub.Subscribe("m1")
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	cancel()
	hub.MarketUpdated("m1", 50, 50, 2)

	select {
	case update := <-ch:
		t.Fatalf("cancelled subscriber received %+v", update)
	default:
	}
}
