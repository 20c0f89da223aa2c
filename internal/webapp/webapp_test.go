package webapp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"fastnu.dev/pointportal/internal/auth"
	"fastnu.dev/pointportal/internal/feed"
	"fastnu.dev/pointportal/internal/session"
	"fastnu.dev/pointportal/internal/store"
)

type fakePrincipalStore struct {
	calls     int
	principal *store.Principal
	err       error
}

func (f *fakePrincipalStore) LookupPrincipal(ctx context.Context, role, identifier, secret string) (*store.Principal, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.principal, nil
}

type fakeLocations struct {
	pos store.Position
	err error
	put []store.Position
}

func (f *fakeLocations) PutPosition(ctx context.Context, p store.Position) error {
	f.put = append(f.put, p)
	return f.err
}

func (f *fakeLocations) LatestPosition(ctx context.Context) (store.Position, error) {
	return f.pos, f.err
}

type fakeRecords struct{}

func (fakeRecords) InsertStudent(ctx context.Context, s *store.Student) error { return nil }
func (fakeRecords) ListStudents(ctx context.Context) ([]*store.Student, error) {
	return []*store.Student{}, nil
}
func (fakeRecords) DeleteStudent(ctx context.Context, id string) error      { return nil }
func (fakeRecords) InsertDriver(ctx context.Context, d *store.Driver) error { return nil }
func (fakeRecords) ListDrivers(ctx context.Context) ([]*store.Driver, error) {
	return []*store.Driver{}, nil
}
func (fakeRecords) DeleteDriver(ctx context.Context, id string) error { return nil }

type fakeStream struct {
	got []feed.Position
}

func (f *fakeStream) Broadcast(p feed.Position) { f.got = append(f.got, p) }

func newTestApi(ps *fakePrincipalStore, loc *fakeLocations, stream Broadcaster) *Api {
	return NewApi(auth.NewVerifier(ps), session.NewManager(0), fakeRecords{}, loc, stream, &ApiConfig{ListenAddr: ":0"})
}

func postLogin(h http.Handler, role, identifier, secret string) *httptest.ResponseRecorder {
	form := url.Values{}
	form.Set("role", role)
	form.Set("identifier", identifier)
	form.Set("secret", secret)
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			return ck
		}
	}
	t.Fatal("no session cookie set")
	return nil
}

func TestLoginFormatErrorSkipsStore(t *testing.T) {
	ps := &fakePrincipalStore{}
	api := newTestApi(ps, &fakeLocations{}, nil)

	w := postLogin(api.Handler(), "student", "K12345", "pw")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if ps.calls != 0 {
		t.Fatalf("store queried %d times for malformed id, want 0", ps.calls)
	}

	// session stays empty
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	w2 := httptest.NewRecorder()
	api.Handler().ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("session view status = %d, want 401", w2.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	ps := &fakePrincipalStore{err: store.ErrNoMatch}
	api := newTestApi(ps, &fakeLocations{}, nil)

	w := postLogin(api.Handler(), "student", "K123456", "pw")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	for _, ck := range w.Result().Cookies() {
		if ck.Name == session.CookieName {
			t.Fatal("no session cookie may be set on failure")
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	w2 := httptest.NewRecorder()
	api.Handler().ServeHTTP(w2, req)
	if w2.Code != http.StatusUnauthorized {
		t.Fatalf("session view status = %d, want 401", w2.Code)
	}
}

func TestLoginStoreUnavailable(t *testing.T) {
	ps := &fakePrincipalStore{err: errors.New("connect: connection refused")}
	api := newTestApi(ps, &fakeLocations{}, nil)

	w := postLogin(api.Handler(), "admin", "admin@fast.edu", "pw")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	api := newTestApi(&fakePrincipalStore{}, &fakeLocations{}, nil)
	w := postLogin(api.Handler(), "", "K123456", "pw")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoginSessionLifecycle(t *testing.T) {
	fields := map[string]string{
		"Student_ID": "K123456",
		"Name":       "Ali",
		"Point_no":   "7",
		"Phone":      "0300",
		"Fee_Status": "paid",
	}
	ps := &fakePrincipalStore{principal: &store.Principal{Role: store.RoleStudent, Fields: fields}}
	api := newTestApi(ps, &fakeLocations{}, nil)
	h := api.Handler()

	w := postLogin(h, "student", "K123456", "pw")
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200", w.Code)
	}
	ck := sessionCookie(t, w)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(ck)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("session view status = %d, want 200", w2.Code)
	}
	var view sessionViewResponse
	if err := json.NewDecoder(w2.Body).Decode(&view); err != nil {
		t.Fatalf("decode session view: %v", err)
	}
	if view.Role != store.RoleStudent || len(view.Fields) != len(fields) {
		t.Fatalf("unexpected view: %+v", view)
	}
	for k, v := range fields {
		if view.Fields[k] != v {
			t.Fatalf("field %q = %q, want %q", k, view.Fields[k], v)
		}
	}

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(ck)
	w3 := httptest.NewRecorder()
	h.ServeHTTP(w3, req)
	if w3.Code != http.StatusOK {
		t.Fatalf("logout status = %d, want 200", w3.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(ck)
	w4 := httptest.NewRecorder()
	h.ServeHTTP(w4, req)
	if w4.Code != http.StatusUnauthorized {
		t.Fatalf("session view after logout = %d, want 401", w4.Code)
	}
}

func TestLatestPosition(t *testing.T) {
	loc := &fakeLocations{pos: store.Position{Latitude: 40.7128, Longitude: -74.0060}}
	api := newTestApi(&fakePrincipalStore{}, loc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/getLatestPosition", nil)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var pos feed.Position
	if err := json.NewDecoder(w.Body).Decode(&pos); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if pos.Lat != 40.7128 || pos.Lng != -74.0060 {
		t.Fatalf("got %+v", pos)
	}
}

func TestLatestPositionEmptyFeed(t *testing.T) {
	loc := &fakeLocations{err: store.ErrNoMatch}
	api := newTestApi(&fakePrincipalStore{}, loc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/getLatestPosition", nil)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestUpdatePosition(t *testing.T) {
	loc := &fakeLocations{}
	stream := &fakeStream{}
	api := newTestApi(&fakePrincipalStore{}, loc, stream)

	req := httptest.NewRequest(http.MethodPost, "/api/updatePosition", strings.NewReader(`{"lat":41.0,"lng":-73.0}`))
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(loc.put) != 1 || loc.put[0].Latitude != 41.0 {
		t.Fatalf("stored samples: %+v", loc.put)
	}
	if len(stream.got) != 1 || stream.got[0].Lng != -73.0 {
		t.Fatalf("broadcast samples: %+v", stream.got)
	}
}

func TestUpdatePositionRejectsPartialPayload(t *testing.T) {
	api := newTestApi(&fakePrincipalStore{}, &fakeLocations{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/updatePosition", strings.NewReader(`{"lat":41.0}`))
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRecordsRequireAdminSession(t *testing.T) {
	api := newTestApi(&fakePrincipalStore{}, &fakeLocations{}, nil)
	req := httptest.NewRequest(http.MethodGet, "/records/students", nil)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestChallan(t *testing.T) {
	ps := &fakePrincipalStore{principal: &store.Principal{Role: store.RoleStudent, Fields: map[string]string{"Student_ID": "K123456"}}}
	api := newTestApi(ps, &fakeLocations{}, nil)
	h := api.Handler()

	w := postLogin(h, "student", "K123456", "pw")
	ck := sessionCookie(t, w)

	form := url.Values{}
	form.Set("name", "Ali")
	form.Set("student-id", "K123456")
	form.Set("point-number", "7")
	req := httptest.NewRequest(http.MethodPost, "/challan", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(ck)
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, req)
	if w2.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w2.Code)
	}
	body := w2.Body.String()
	if !strings.Contains(body, "Rs 35000") || !strings.Contains(body, "K123456") {
		t.Fatalf("unexpected challan body: %s", body)
	}
}

func TestChallanRequiresSession(t *testing.T) {
	api := newTestApi(&fakePrincipalStore{}, &fakeLocations{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/challan", nil)
	w := httptest.NewRecorder()
	api.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
