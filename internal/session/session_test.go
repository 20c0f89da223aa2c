package session

import (
	"testing"
	"time"

	"fastnu.dev/pointportal/internal/store"
)

func studentRecord(id, name string) *store.Principal {
	return &store.Principal{Role: store.RoleStudent, Fields: map[string]string{
		"Student_ID": id,
		"Name":       name,
		"Point_no":   "7",
		"Phone":      "0300",
		"Fee_Status": "paid",
	}}
}

func TestEstablishThenCurrent(t *testing.T) {
	m := NewManager(0)
	rec := studentRecord("K123456", "Ali")
	sid := m.Establish("", rec)
	if sid == "" {
		t.Fatal("expected a session id")
	}
	got, ok := m.Current(sid)
	if !ok {
		t.Fatal("expected a session")
	}
	if len(got.Fields) != len(rec.Fields) {
		t.Fatalf("field count changed: got %d want %d", len(got.Fields), len(rec.Fields))
	}
	for k, v := range rec.Fields {
		if got.Fields[k] != v {
			t.Fatalf("field %q = %q, want %q", k, got.Fields[k], v)
		}
	}
}

func TestEstablishOverwrites(t *testing.T) {
	m := NewManager(0)
	a := studentRecord("K111111", "A")
	b := studentRecord("K222222", "B")
	sid := m.Establish("", a)
	sid2 := m.Establish(sid, b)
	if sid2 != sid {
		t.Fatalf("re-establish changed the session id: %q -> %q", sid, sid2)
	}
	got, ok := m.Current(sid)
	if !ok {
		t.Fatal("expected a session")
	}
	if got.Fields["Student_ID"] != "K222222" {
		t.Fatalf("expected the second record, got %q", got.Fields["Student_ID"])
	}
}

func TestUnknownSidGetsFreshId(t *testing.T) {
	m := NewManager(0)
	sid := m.Establish("stale-or-forged", studentRecord("K123456", "Ali"))
	if sid == "stale-or-forged" {
		t.Fatal("client-supplied unknown id must not be adopted")
	}
	if _, ok := m.Current("stale-or-forged"); ok {
		t.Fatal("no session may exist under the unknown id")
	}
}

func TestClear(t *testing.T) {
	m := NewManager(0)
	sid := m.Establish("", studentRecord("K123456", "Ali"))
	m.Clear(sid)
	if _, ok := m.Current(sid); ok {
		t.Fatal("expected no session after Clear")
	}
}

func TestCurrentAbsentBeforeLogin(t *testing.T) {
	m := NewManager(0)
	if _, ok := m.Current("nope"); ok {
		t.Fatal("expected no session before any Establish")
	}
}

func TestTTLExpiry(t *testing.T) {
	m := NewManager(time.Minute)
	now := time.Unix(1000, 0)
	m.nowFunc = func() time.Time { return now }
	sid := m.Establish("", studentRecord("K123456", "Ali"))
	if _, ok := m.Current(sid); !ok {
		t.Fatal("expected a live session")
	}
	now = now.Add(2 * time.Minute)
	if _, ok := m.Current(sid); ok {
		t.Fatal("expected the session to have expired")
	}
}
