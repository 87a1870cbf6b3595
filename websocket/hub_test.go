package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
)

func newTestClient(h *Hub, userID string) *Client {
	c := &Client{
		hub:      h,
		send:     make(chan []byte, 8),
		userID:   userID,
		families: make(map[string]bool),
	}
	h.clients[c] = true
	return c
}

// drain decodes every message buffered on the client's send channel.
func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var msgs []Message
	for {
		select {
		case raw := <-c.send:
			var msg Message
			if err := json.Unmarshal(raw, &msg); err != nil {
				t.Fatalf("failed to decode message %q: %v", raw, err)
			}
			msgs = append(msgs, msg)
		default:
			return msgs
		}
	}
}

func presenceCountOf(t *testing.T, msg Message) (string, int) {
	t.Helper()
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		t.Fatalf("presence payload = %T, want object", msg.Payload)
	}
	count, ok := payload["count"].(float64)
	if !ok {
		t.Fatalf("presence count missing: %v", payload)
	}
	familyID, _ := payload["family_id"].(string)
	return familyID, int(count)
}

func TestPresenceCountsFollowJoinsAndLeaves(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "alice")
	bob := newTestClient(h, "bob")

	h.joinFamily(alice, "fam-1")
	if got := h.presenceCount("fam-1"); got != 1 {
		t.Errorf("count after first join = %d, want 1", got)
	}

	h.joinFamily(bob, "fam-1")
	if got := h.presenceCount("fam-1"); got != 2 {
		t.Errorf("count after second join = %d, want 2", got)
	}

	// Both sockets heard about bob's arrival
	msgs := drain(t, alice)
	last := msgs[len(msgs)-1]
	if last.Type != "presence" {
		t.Fatalf("type = %q, want presence", last.Type)
	}
	familyID, count := presenceCountOf(t, last)
	if familyID != "fam-1" || count != 2 {
		t.Errorf("presence = (%q, %d), want (fam-1, 2)", familyID, count)
	}

	h.leaveFamily(bob, "fam-1")
	if got := h.presenceCount("fam-1"); got != 1 {
		t.Errorf("count after leave = %d, want 1", got)
	}
	msgs = drain(t, alice)
	if _, count := presenceCountOf(t, msgs[len(msgs)-1]); count != 1 {
		t.Errorf("presence count after leave = %d, want 1", count)
	}

	// Empty channels are dropped entirely
	h.leaveFamily(alice, "fam-1")
	h.mu.RLock()
	_, exists := h.families["fam-1"]
	h.mu.RUnlock()
	if exists {
		t.Error("empty family channel not cleaned up")
	}
}

func TestBroadcastScopedToFamilyChannel(t *testing.T) {
	h := NewHub()
	alice := newTestClient(h, "alice")
	bob := newTestClient(h, "bob")
	h.joinFamily(alice, "fam-1")
	h.joinFamily(bob, "fam-2")
	drain(t, alice)
	drain(t, bob)

	payload, _ := json.Marshal(Message{Type: "todo:created", Payload: map[string]string{"id": "t-1"}})
	h.broadcastToFamily("fam-1", payload)

	msgs := drain(t, alice)
	if len(msgs) != 1 || msgs[0].Type != "todo:created" {
		t.Errorf("alice got %v, want one todo:created", msgs)
	}
	if msgs := drain(t, bob); len(msgs) != 0 {
		t.Errorf("bob got %v, want nothing from a foreign channel", msgs)
	}
}

// Broadcasts come in from request goroutines while Run mutates the client
// set. The race detector trips here if the hub's maps are touched without
// the write lock.
func TestBroadcastSafeWithConcurrentRegistrations(t *testing.T) {
	h := NewHub()
	go h.Run()

	const broadcasters = 4
	const perBroadcaster = 50

	members := make([]*Client, 4)
	for i := range members {
		c := &Client{
			hub: h,
			// Large enough for every broadcast plus the presence messages,
			// so no client is evicted mid-test
			send:     make(chan []byte, broadcasters*perBroadcaster+8),
			userID:   fmt.Sprintf("user-%d", i),
			families: make(map[string]bool),
		}
		members[i] = c
		h.register <- c
		h.joinFamily(c, "fam-1")
	}

	payload, _ := json.Marshal(Message{Type: "ping"})

	var wg sync.WaitGroup
	for i := 0; i < broadcasters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perBroadcaster; j++ {
				h.broadcastToFamily("fam-1", payload)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 50; i++ {
			h.register <- &Client{
				hub:      h,
				send:     make(chan []byte, 8),
				userID:   fmt.Sprintf("extra-%d", i),
				families: make(map[string]bool),
			}
		}
	}()
	wg.Wait()

	if got := h.presenceCount("fam-1"); got != len(members) {
		t.Errorf("count = %d, want %d", got, len(members))
	}
	for i, c := range members {
		pings := 0
		for _, msg := range drain(t, c) {
			if msg.Type == "ping" {
				pings++
			}
		}
		if pings != broadcasters*perBroadcaster {
			t.Errorf("client %d received %d pings, want %d", i, pings, broadcasters*perBroadcaster)
		}
	}
}

func TestSlowClientEvicted(t *testing.T) {
	h := NewHub()
	stuck := &Client{
		hub:      h,
		send:     make(chan []byte), // unbuffered and never read
		userID:   "stuck",
		families: make(map[string]bool),
	}
	h.clients[stuck] = true
	h.joinFamily(stuck, "fam-1")

	payload, _ := json.Marshal(Message{Type: "ping", Payload: nil})
	h.broadcastToFamily("fam-1", payload)

	if _, ok := h.clients[stuck]; ok {
		t.Error("client with a full send buffer should be dropped")
	}
	if got := h.presenceCount("fam-1"); got != 0 {
		t.Errorf("count = %d, want 0 after eviction", got)
	}
}
