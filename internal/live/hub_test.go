package live

import "testing"

// Tests here exercise topic membership and delivery through the send
// channels directly; the websocket pumps are covered by the handler
// tests that dial a real server.

func newTestClient(h *Hub, topic string) *Client {
	return NewClient(h, nil, topic, nil)
}

func recvOne(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.send:
		return msg
	default:
		t.Fatal("no message queued")
		return nil
	}
}

func TestBroadcastReachesOnlyOwnTopic(t *testing.T) {
	h := NewHub()
	admin := newTestClient(h, TopicAdmin)
	public := newTestClient(h, TopicPublic)
	h.Register(admin)
	h.Register(public)

	h.Broadcast(TopicAdmin, []byte("full rows"))

	if got := string(recvOne(t, admin)); got != "full rows" {
		t.Errorf("admin got %q", got)
	}
	select {
	case msg := <-public.send:
		t.Fatalf("public client received admin frame %q", msg)
	default:
	}
}

func TestSwitchMovesMembershipAtomically(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	h.Register(c)

	h.Switch(c, TopicAdmin)

	h.Broadcast(TopicPublic, []byte("public frame"))
	select {
	case msg := <-c.send:
		t.Fatalf("switched client still receives old topic: %q", msg)
	default:
	}

	h.Broadcast(TopicAdmin, []byte("admin frame"))
	if got := string(recvOne(t, c)); got != "admin frame" {
		t.Errorf("got %q after switch", got)
	}
	if c.Topic() != TopicAdmin {
		t.Errorf("Topic() = %q", c.Topic())
	}
}

func TestSwitchToSameTopicKeepsDelivery(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	h.Register(c)

	h.Switch(c, TopicPublic)

	h.Broadcast(TopicPublic, []byte("frame"))
	if got := string(recvOne(t, c)); got != "frame" {
		t.Errorf("got %q", got)
	}
}

func TestUnregisterClosesSendOnce(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	h.Register(c)

	h.Unregister(c)
	// A second unregister (read pump teardown racing a broadcast
	// eviction) must not close the channel again.
	h.Unregister(c)

	if _, ok := <-c.send; ok {
		t.Fatal("send channel not closed")
	}
}

func TestSendAfterUnregisterIsDropped(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	h.Register(c)
	h.Unregister(c)

	// The connect-time snapshot goroutine can lose the race against
	// the read pump's teardown; the frame must be dropped, not sent
	// on the closed channel.
	h.Send(c, []byte("late snapshot"))
}

func TestSendReachesRegisteredClient(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	h.Register(c)

	h.Send(c, []byte("snapshot"))

	if got := string(recvOne(t, c)); got != "snapshot" {
		t.Errorf("got %q", got)
	}
}

func TestBroadcastDropsStalledClient(t *testing.T) {
	h := NewHub()
	c := newTestClient(h, TopicPublic)
	c.send = make(chan []byte) // unbuffered with no reader: always full
	h.Register(c)

	h.Broadcast(TopicPublic, []byte("frame"))

	if _, ok := <-c.send; ok {
		t.Fatal("stalled client was not evicted")
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.topics[TopicPublic][c] {
		t.Fatal("stalled client still registered")
	}
}
