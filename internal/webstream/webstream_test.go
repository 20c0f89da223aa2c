package webstream

import (
	"testing"

	"fastnu.dev/pointportal/internal/feed"
)

func TestBroadcastReachesSubscribers(t *testing.T) {
	h := NewHub()
	s1 := h.subscribe()
	s2 := h.subscribe()
	h.Broadcast(feed.Position{Lat: 1, Lng: 2})
	if len(s1.loc) != 1 || len(s2.loc) != 1 {
		t.Errorf("expected one buffered sample per subscriber, got %d and %d", len(s1.loc), len(s2.loc))
	}
}

func TestPushSkipsWhenFull(t *testing.T) {
	s := &WsSubscriber{loc: make(chan feed.Position, 2)}
	for i := 0; i < 5; i++ {
		s.Push(feed.Position{Lat: float64(i)})
	}
	if s.pushed != 2 {
		t.Errorf("pushed = %d, want 2", s.pushed)
	}
	if s.skipped != 3 {
		t.Errorf("skipped = %d, want 3", s.skipped)
	}
}

func TestDrop(t *testing.T) {
	h := NewHub()
	s := h.subscribe()
	h.drop(s.id)
	h.Broadcast(feed.Position{Lat: 1})
	if len(s.loc) != 0 {
		t.Error()
	}
}
