package webapp

import (
	"net/http"
	"time"

	"fastnu.dev/pointportal/internal/session"
)

func (api *Api) Logout(w http.ResponseWriter, r *http.Request) {
	ck, err := r.Cookie(session.CookieName)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	api.sessions.Clear(ck.Value)
	http.SetCookie(w, &http.Cookie{
		Domain:   api.config.CookieDomain,
		HttpOnly: true,
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
	})
	w.WriteHeader(http.StatusOK)
}
