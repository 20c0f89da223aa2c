package webstream

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"fastnu.dev/pointportal/internal/feed"
	"fastnu.dev/pointportal/internal/util"
)

// Hub fans fresh position samples out to subscribed map clients.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]*WsSubscriber
	logger zerolog.Logger
}

type WsSubscriber struct {
	id      string
	loc     chan feed.Position
	skipped uint64
	pushed  uint64
}

// Push hands a sample to the subscriber without blocking; a slow client
// skips samples instead of stalling the hub.
func (wsub *WsSubscriber) Push(p feed.Position) {
	select {
	case wsub.loc <- p:
		atomic.AddUint64(&wsub.pushed, 1)
	default:
		atomic.AddUint64(&wsub.skipped, 1)
	}
}

func NewHub() *Hub {
	h := &Hub{}
	h.subs = make(map[string]*WsSubscriber)
	h.logger = log.With().Str("module", "webstream").Logger()
	return h
}

func (h *Hub) Broadcast(p feed.Position) {
	h.mu.Lock()
	for _, s := range h.subs {
		s.Push(p)
	}
	h.mu.Unlock()
}

func (h *Hub) subscribe() *WsSubscriber {
	s := &WsSubscriber{id: util.GenUUID(), loc: make(chan feed.Position, 10)}
	h.mu.Lock()
	h.subs[s.id] = s
	h.mu.Unlock()
	return s
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	delete(h.subs, id)
	h.mu.Unlock()
}

type WebstreamServer struct {
	server *http.Server
	logger zerolog.Logger
	hub    *Hub
}

func NewWebstream(addr string, hub *Hub) *WebstreamServer {
	o := &WebstreamServer{hub: hub}
	o.server = &http.Server{
		Addr:           addr,
		Handler:        o,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	o.logger = log.With().Str("module", "websocket").Logger()
	return o
}

func (ws *WebstreamServer) Run() {
	err := ws.server.ListenAndServe()
	if err != nil {
		panic(err)
	}
}

func (ws *WebstreamServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		ws.logger.Err(err).Msg("Error while upgrading websocket")
		return
	}
	defer c.Close(websocket.StatusInternalError, "stream aborted")

	sub := ws.hub.subscribe()
	defer ws.hub.drop(sub.id)
	ws.logger.Info().Str("conn_id", sub.id).Msg("map client subscribed")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			c.Close(websocket.StatusNormalClosure, "")
			return
		case pos := <-sub.loc:
			writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := wsjson.Write(writeCtx, c, pos)
			cancel()
			if err != nil {
				ws.logger.Err(err).Str("conn_id", sub.id).Msg("error writing position")
				return
			}
		}
	}
}
