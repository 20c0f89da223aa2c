package webapp

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"fastnu.dev/pointportal/internal/feed"
	"fastnu.dev/pointportal/internal/session"
	"fastnu.dev/pointportal/internal/store"
	"fastnu.dev/pointportal/internal/webapp/record"
)

type ApiConfig struct {
	ListenAddr   string
	CookieDomain string
}

// Verifier is what the login handler needs from the credential subsystem.
type Verifier interface {
	Verify(ctx context.Context, role, identifier, secret string) (*store.Principal, error)
}

// Broadcaster forwards fresh position samples to live stream subscribers.
type Broadcaster interface {
	Broadcast(p feed.Position)
}

type Api struct {
	r         chi.Router
	s         *http.Server
	config    *ApiConfig
	log       log.Logger
	vld       *validator.Validate
	verifier  Verifier
	sessions  *session.Manager
	locations store.LocationStore
	stream    Broadcaster
}

func NewApi(verifier Verifier, sessions *session.Manager, records store.RecordStore, locations store.LocationStore, stream Broadcaster, config *ApiConfig) *Api {
	api := &Api{config: config}
	api.log = log.DefaultLogger
	api.log.Context = log.NewContext(nil).Str("module", "api-server").Value()
	api.vld = validator.New()
	api.verifier = verifier
	api.sessions = sessions
	api.locations = locations
	api.stream = stream

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Recoverer)

	r.Post("/login", api.Login)
	r.Post("/logout", api.Logout)
	r.Get("/session", api.SessionView)
	r.Get("/api/getLatestPosition", api.LatestPosition)
	r.Post("/api/updatePosition", api.UpdatePosition)
	r.Post("/challan", api.Challan)

	record_api := record.NewRecordApi(records)
	r.Route("/records", func(r chi.Router) {
		r.Use(api.requireAdmin)
		r.Post("/students", record_api.AddStudent)
		r.Get("/students", record_api.GetStudents)
		r.Delete("/students/{id}", record_api.DeleteStudent)
		r.Post("/drivers", record_api.AddDriver)
		r.Get("/drivers", record_api.GetDrivers)
		r.Delete("/drivers/{id}", record_api.DeleteDriver)
	})

	api.r = r
	api.s = &http.Server{
		Addr:           api.config.ListenAddr,
		Handler:        api.r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	return api
}

// Handler exposes the router, used by tests.
func (api *Api) Handler() http.Handler {
	return api.r
}

func (api *Api) Run() {
	api.log.Info().Msgf("starting api-server on : %s", api.s.Addr)
	err := api.s.ListenAndServe()
	if err != nil {
		api.log.Error().Err(err).Msg("")
		panic(err)
	}
}

// current resolves the request's session cookie to the established
// principal, if any.
func (api *Api) current(r *http.Request) (*store.Principal, string, bool) {
	ck, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, "", false
	}
	p, ok := api.sessions.Current(ck.Value)
	return p, ck.Value, ok
}

func (api *Api) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _, ok := api.current(r)
		if !ok || p.Role != store.RoleAdmin {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
