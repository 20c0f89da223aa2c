package main

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"fastnu.dev/pointportal/internal/auth"
	"fastnu.dev/pointportal/internal/config"
	"fastnu.dev/pointportal/internal/session"
	"fastnu.dev/pointportal/internal/store/pgstore"
	"fastnu.dev/pointportal/internal/webapp"
	"fastnu.dev/pointportal/internal/webstream"
)

func main() {
	cfg := config.Load()
	pool, err := pgxpool.Connect(context.Background(), cfg.DBUrl)
	if err != nil {
		panic(err.Error())
	}

	st := pgstore.NewStore(pool, &pgstore.StoreConfig{QueryTimeout: cfg.QueryTimeout})
	verifier := auth.NewVerifier(st)
	sessions := session.NewManager(cfg.SessionLength)

	hub := webstream.NewHub()
	stream := webstream.NewWebstream(cfg.StreamListenAddr, hub)
	go stream.Run()

	api := webapp.NewApi(verifier, sessions, st, st, hub, &webapp.ApiConfig{
		ListenAddr:   cfg.ListenAddr,
		CookieDomain: cfg.CookieDomain,
	})
	api.Run()
}
