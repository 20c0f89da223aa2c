package store

import (
	"context"
	"errors"
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// ErrNoMatch is returned when a lookup does not resolve to exactly one row.
var ErrNoMatch = errors.New("no matching row")

// ErrDuplicate is returned when an insert collides with an existing key.
var ErrDuplicate = errors.New("duplicate key")

// Principal is the full row matched during credential lookup. Fields carries
// every selected column by name; callers decide what to retain.
type Principal struct {
	Role   string
	Fields map[string]string
}

type Position struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

type Student struct {
	StudentID string
	Name      string
	PointNo   string
	Phone     string
	FeeStatus string
	DriverID  string
}

type Driver struct {
	DriverID string
	Name     string
	Phone    string
	RouteNo  string
}

type PrincipalStore interface {
	// LookupPrincipal resolves identifier+secret to a principal row for the
	// given role. It returns ErrNoMatch unless exactly one row matches.
	LookupPrincipal(ctx context.Context, role, identifier, secret string) (*Principal, error)
}

type RecordStore interface {
	InsertStudent(ctx context.Context, s *Student) error
	ListStudents(ctx context.Context) ([]*Student, error)
	DeleteStudent(ctx context.Context, studentID string) error
	InsertDriver(ctx context.Context, d *Driver) error
	ListDrivers(ctx context.Context) ([]*Driver, error)
	DeleteDriver(ctx context.Context, driverID string) error
}

type LocationStore interface {
	PutPosition(ctx context.Context, p Position) error
	// LatestPosition returns the freshest sample only, ErrNoMatch when the
	// feed has not reported yet.
	LatestPosition(ctx context.Context) (Position, error)
}
