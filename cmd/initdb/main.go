package main

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"fastnu.dev/pointportal/internal/config"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS student (
		student_id text PRIMARY KEY,
		name text NOT NULL,
		point_no text NOT NULL,
		phone text NOT NULL,
		fee_status text NOT NULL,
		driver_id text,
		student_password text NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS driver (
		driver_id text PRIMARY KEY,
		name text NOT NULL,
		phone text NOT NULL,
		route_no text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_login (
		id serial PRIMARY KEY,
		email text UNIQUE NOT NULL,
		admin_password text NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vehicle_location (
		id serial PRIMARY KEY,
		latitude double precision NOT NULL,
		longitude double precision NOT NULL,
		recorded_at timestamptz NOT NULL
	)`,
}

func main() {
	cfg := config.Load()
	pool, err := pgxpool.Connect(context.Background(), cfg.DBUrl)
	if err != nil {
		panic(err.Error())
	}
	for _, stmt := range ddl {
		_, err = pool.Exec(context.Background(), stmt)
		if err != nil {
			panic(err.Error())
		}
	}
	sqlStmt := `INSERT INTO admin_login (email,admin_password) VALUES ($1,$2) ON CONFLICT (email) DO NOTHING`
	_, err = pool.Exec(context.Background(), sqlStmt, "admin@fast.edu", "admin")
	if err != nil {
		panic(err.Error())
	}
}
