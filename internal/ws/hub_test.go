package ws

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValidTopic(t *testing.T) {
	tests := []struct {
		topic string
		want  bool
	}{
		{"products", true},
		{"chalets", true},
		{"orders:12", true},
		{"orders:", false},
		{"orders", false},
		{"employees", false},
		{"", false},
	}

	for _, tc := range tests {
		if got := ValidTopic(tc.topic); got != tc.want {
			t.Errorf("ValidTopic(%q) = %v, want %v", tc.topic, got, tc.want)
		}
	}
}

func subscriber(topic string) *Client {
	return &Client{topic: topic, send: make(chan []byte, 4)}
}

func TestBroadcastReachesOnlyTopicSubscribers(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	products := subscriber("products")
	tab12 := subscriber("orders:12")
	tab7 := subscriber("orders:7")
	hub.register <- products
	hub.register <- tab12
	hub.register <- tab7

	hub.Broadcast("orders:12", Event{Type: "orders.snapshot", Payload: json.RawMessage(`[]`)})

	select {
	case raw := <-tab12.send:
		var ev Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			t.Fatal(err)
		}
		if ev.Type != "orders.snapshot" {
			t.Errorf("unexpected event type: %s", ev.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("orders:12 subscriber never received the snapshot")
	}

	select {
	case <-products.send:
		t.Error("products subscriber must not receive tab snapshots")
	case <-tab7.send:
		t.Error("another chalet's subscriber must not receive this tab")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := subscriber("chalets")
	hub.register <- c
	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected the send channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("send channel never closed")
	}

	// Broadcasting to the emptied room must not panic or block.
	hub.Broadcast("chalets", Event{Type: "chalets.snapshot", Payload: json.RawMessage(`[]`)})
}

func TestBroadcastDropsSlowSubscriber(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	slow := &Client{topic: "products", send: make(chan []byte)} // no buffer, never drained
	probe := subscriber("products")
	hub.register <- slow
	hub.register <- probe

	hub.Broadcast("products", Event{Type: "products.snapshot", Payload: json.RawMessage(`[]`)})

	// Once the buffered probe has its copy the broadcast has been processed,
	// so the undrained subscriber is already dropped.
	select {
	case <-probe.send:
	case <-time.After(time.Second):
		t.Fatal("probe subscriber never received the snapshot")
	}

	select {
	case _, ok := <-slow.send:
		if ok {
			t.Error("expected the slow subscriber's channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("slow subscriber never dropped")
	}
}
