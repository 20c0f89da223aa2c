package session

import (
	"sync"
	"time"

	"fastnu.dev/pointportal/internal/store"
	"fastnu.dev/pointportal/internal/util"
)

// CookieName is the cookie carrying the session id.
const CookieName = "PSESS"

// Manager holds one session per client context, keyed by the opaque id the
// client carries in its cookie. Sessions never expire on their own unless a
// TTL is configured; lifetime is otherwise bound to the cookie.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	nowFunc  func() time.Time
}

type entry struct {
	principal  *store.Principal
	validUntil time.Time
}

// NewManager returns a session registry. ttl == 0 disables server-side
// expiry, the stated configuration point for session lifetime.
func NewManager(ttl time.Duration) *Manager {
	m := &Manager{}
	m.sessions = make(map[string]*entry)
	m.ttl = ttl
	m.nowFunc = time.Now
	return m
}

// Establish stores the principal for the client, overwriting any existing
// session content unconditionally. A known sid keeps its id; an empty or
// unknown sid gets a freshly generated one. The returned id is what the
// client must carry from now on.
func (m *Manager) Establish(sid string, p *store.Principal) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[sid]; !ok {
		sid = util.GenRandomString(nil, 24)
	}
	e := &entry{principal: p}
	if m.ttl > 0 {
		e.validUntil = m.nowFunc().Add(m.ttl)
	}
	m.sessions[sid] = e
	return sid
}

// Current returns the last-established principal for sid, or false when no
// session exists (or the configured TTL has passed).
func (m *Manager) Current(sid string) (*store.Principal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sid]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && m.nowFunc().After(e.validUntil) {
		delete(m.sessions, sid)
		return nil, false
	}
	return e.principal, true
}

// Clear removes all session content for sid.
func (m *Manager) Clear(sid string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sid)
}
