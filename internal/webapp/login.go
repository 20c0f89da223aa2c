package webapp

import (
	"errors"
	"net/http"

	"fastnu.dev/pointportal/internal/auth"
	"fastnu.dev/pointportal/internal/session"
	"fastnu.dev/pointportal/internal/util"
)

type loginForm struct {
	Role       string `validate:"required,oneof=student admin"`
	Identifier string `validate:"required"`
	Secret     string `validate:"required"`
}

type LoginResponse struct {
	Status int    `json:"status"`
	Role   string `json:"role"`
	Name   string `json:"name,omitempty"`
}

// Login verifies the submitted credentials and establishes the session on
// success. Failure leaves any existing session untouched: 400 for a
// malformed student id, 401 for wrong credentials, 503 when the store is
// unreachable.
func (api *Api) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := loginForm{
		Role:       r.PostFormValue("role"),
		Identifier: r.PostFormValue("identifier"),
		Secret:     r.PostFormValue("secret"),
	}
	if err := api.vld.Struct(form); err != nil {
		http.Error(w, "role, identifier and secret are required", http.StatusBadRequest)
		return
	}

	p, err := api.verifier.Verify(r.Context(), form.Role, form.Identifier, form.Secret)
	switch {
	case errors.Is(err, auth.ErrBadFormat):
		http.Error(w, "Invalid Student ID format. It should start with 'K' followed by 6 digits.", http.StatusBadRequest)
	case errors.Is(err, auth.ErrInvalidCredentials):
		http.Error(w, "Invalid identifier or password", http.StatusUnauthorized)
	case err != nil:
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
	default:
		var prev string
		if ck, cerr := r.Cookie(session.CookieName); cerr == nil {
			prev = ck.Value
		}
		sid := api.sessions.Establish(prev, p)
		login_success_setCookie(w, sid, api.config.CookieDomain)
		util.JsonWrite(w, LoginResponse{Status: 0, Role: p.Role, Name: p.Fields["Name"]})
	}
}

// No Expires on purpose: session lifetime is bound to the cookie, server-side
// TTL is the session manager's knob.
func login_success_setCookie(w http.ResponseWriter, sessionId, domain string) {
	http.SetCookie(w, &http.Cookie{
		Domain:   domain,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Name:     session.CookieName,
		Value:    sessionId,
		Path:     "/",
	})
}
