package webapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"fastnu.dev/pointportal/internal/feed"
	"fastnu.dev/pointportal/internal/store"
	"fastnu.dev/pointportal/internal/util"
	"fastnu.dev/pointportal/internal/webapp/common"
)

type updatePositionRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

// LatestPosition serves the freshest known sample as the {lat,lng} pair the
// map poller consumes every interval.
func (api *Api) LatestPosition(w http.ResponseWriter, r *http.Request) {
	pos, err := api.locations.LatestPosition(r.Context())
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			http.Error(w, "no position reported yet", http.StatusNotFound)
			return
		}
		api.log.Error().Err(err).Msg("latest position lookup failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	util.JsonWrite(w, feed.Position{Lat: pos.Latitude, Lng: pos.Longitude})
}

// UpdatePosition ingests a sample from the vehicle feed, persists it and
// pushes it to live stream subscribers.
func (api *Api) UpdatePosition(w http.ResponseWriter, r *http.Request) {
	req_body := updatePositionRequest{}
	err := json.NewDecoder(r.Body).Decode(&req_body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = api.vld.Struct(req_body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	err = api.locations.PutPosition(r.Context(), store.Position{Latitude: *req_body.Lat, Longitude: *req_body.Lng})
	if err != nil {
		api.log.Error().Err(err).Msg("storing position failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	if api.stream != nil {
		api.stream.Broadcast(feed.Position{Lat: *req_body.Lat, Lng: *req_body.Lng})
	}
	util.JsonWrite(w, common.BasicResponse{Status: 0})
}
