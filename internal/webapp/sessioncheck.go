package webapp

import (
	"net/http"

	"fastnu.dev/pointportal/internal/util"
)

type sessionViewResponse struct {
	Status int               `json:"status"`
	Role   string            `json:"role"`
	Fields map[string]string `json:"fields"`
}

// SessionView surfaces the current principal's fields, the per-client
// key-value view the rest of the portal reads after login.
func (api *Api) SessionView(w http.ResponseWriter, r *http.Request) {
	p, _, ok := api.current(r)
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	util.JsonWrite(w, sessionViewResponse{Status: 0, Role: p.Role, Fields: p.Fields})
}
