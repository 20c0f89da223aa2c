package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"

	"fastnu.dev/pointportal/internal/store"
)

// Store runs every operation against the shared pool; a connection is
// acquired per call and released when the call returns, no connection is
// held between requests.
type Store struct {
	db     *pgxpool.Pool
	log    log.Logger
	config *StoreConfig
}

type StoreConfig struct {
	QueryTimeout time.Duration
}

func NewStore(db *pgxpool.Pool, config *StoreConfig) *Store {
	o := &Store{}
	o.db = db
	o.config = config
	if o.config.QueryTimeout == 0 {
		o.config.QueryTimeout = 5 * time.Second
	}
	o.log = log.DefaultLogger
	o.log.Context = log.NewContext(nil).Str("module", "pgstore").Value()
	return o
}

func (st *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, st.config.QueryTimeout)
}

func (st *Store) LookupPrincipal(ctx context.Context, role, identifier, secret string) (*store.Principal, error) {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	switch role {
	case store.RoleStudent:
		return st.lookupStudent(ctx, identifier, secret)
	case store.RoleAdmin:
		return st.lookupAdmin(ctx, identifier, secret)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func (st *Store) lookupStudent(ctx context.Context, identifier, secret string) (*store.Principal, error) {
	sqlStmt := `SELECT student_id,name,point_no,phone,fee_status,driver_id FROM student WHERE student_id = $1 AND student_password = $2`
	rows, err := st.db.Query(ctx, sqlStmt, identifier, secret)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var p *store.Principal
	matched := 0
	for rows.Next() {
		matched++
		if matched > 1 {
			continue
		}
		var student_id, name, point_no, phone, fee_status string
		var driver_id *string
		err := rows.Scan(&student_id, &name, &point_no, &phone, &fee_status, &driver_id)
		if err != nil {
			return nil, err
		}
		fields := map[string]string{
			"Student_ID": student_id,
			"Name":       name,
			"Point_no":   point_no,
			"Phone":      phone,
			"Fee_Status": fee_status,
		}
		if driver_id != nil {
			fields["Driver_ID"] = *driver_id
		}
		p = &store.Principal{Role: store.RoleStudent, Fields: fields}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	// num_rows == 1 is the success condition; more than one match is a
	// data-integrity problem and is treated the same as no match.
	if matched != 1 {
		if matched > 1 {
			st.log.Warn().Int("matched", matched).Msg("credential lookup matched more than one row")
		}
		return nil, store.ErrNoMatch
	}
	return p, nil
}

func (st *Store) lookupAdmin(ctx context.Context, identifier, secret string) (*store.Principal, error) {
	sqlStmt := `SELECT id::text,email FROM admin_login WHERE email = $1 AND admin_password = $2`
	rows, err := st.db.Query(ctx, sqlStmt, identifier, secret)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var p *store.Principal
	matched := 0
	for rows.Next() {
		matched++
		if matched > 1 {
			continue
		}
		var id, email string
		err := rows.Scan(&id, &email)
		if err != nil {
			return nil, err
		}
		p = &store.Principal{Role: store.RoleAdmin, Fields: map[string]string{
			"user_id":    id,
			"user_email": email,
		}}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if matched != 1 {
		if matched > 1 {
			st.log.Warn().Int("matched", matched).Msg("credential lookup matched more than one row")
		}
		return nil, store.ErrNoMatch
	}
	return p, nil
}

func (st *Store) InsertStudent(ctx context.Context, s *store.Student) error {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	sqlStmt := `INSERT INTO student (student_id,name,point_no,phone,fee_status,driver_id) VALUES ($1,$2,$3,$4,$5,$6)`
	_, err := st.db.Exec(ctx, sqlStmt, s.StudentID, s.Name, s.PointNo, s.Phone, s.FeeStatus, s.DriverID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			st.log.Warn().Str("student_id", s.StudentID).Msg("trying to insert student with existing id")
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (st *Store) ListStudents(ctx context.Context) ([]*store.Student, error) {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	sqlStmt := `SELECT student_id,name,point_no,phone,fee_status,driver_id FROM student`
	rows, err := st.db.Query(ctx, sqlStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	students := make([]*store.Student, 0)
	for rows.Next() {
		s := &store.Student{}
		var driver_id *string
		err := rows.Scan(&s.StudentID, &s.Name, &s.PointNo, &s.Phone, &s.FeeStatus, &driver_id)
		if err != nil {
			return nil, err
		}
		if driver_id != nil {
			s.DriverID = *driver_id
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (st *Store) DeleteStudent(ctx context.Context, studentID string) error {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	ct, err := st.db.Exec(ctx, `DELETE FROM student WHERE student_id = $1`, studentID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return store.ErrNoMatch
	}
	return nil
}

func (st *Store) InsertDriver(ctx context.Context, d *store.Driver) error {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	sqlStmt := `INSERT INTO driver (driver_id,name,phone,route_no) VALUES ($1,$2,$3,$4)`
	_, err := st.db.Exec(ctx, sqlStmt, d.DriverID, d.Name, d.Phone, d.RouteNo)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			st.log.Warn().Str("driver_id", d.DriverID).Msg("trying to insert driver with existing id")
			return store.ErrDuplicate
		}
		return err
	}
	return nil
}

func (st *Store) ListDrivers(ctx context.Context) ([]*store.Driver, error) {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	sqlStmt := `SELECT driver_id,name,phone,route_no FROM driver`
	rows, err := st.db.Query(ctx, sqlStmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	drivers := make([]*store.Driver, 0)
	for rows.Next() {
		d := &store.Driver{}
		err := rows.Scan(&d.DriverID, &d.Name, &d.Phone, &d.RouteNo)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

func (st *Store) DeleteDriver(ctx context.Context, driverID string) error {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	ct, err := st.db.Exec(ctx, `DELETE FROM driver WHERE driver_id = $1`, driverID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() != 1 {
		return store.ErrNoMatch
	}
	return nil
}

func (st *Store) PutPosition(ctx context.Context, p store.Position) error {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	if p.Timestamp.IsZero() {
		p.Timestamp = time.Now().UTC()
	}
	sqlStmt := `INSERT INTO vehicle_location (latitude,longitude,recorded_at) VALUES ($1,$2,$3)`
	_, err := st.db.Exec(ctx, sqlStmt, p.Latitude, p.Longitude, p.Timestamp)
	return err
}

func (st *Store) LatestPosition(ctx context.Context) (store.Position, error) {
	ctx, cancel := st.withTimeout(ctx)
	defer cancel()
	sqlStmt := `SELECT latitude,longitude,recorded_at FROM vehicle_location ORDER BY recorded_at DESC LIMIT 1`
	var p store.Position
	err := st.db.QueryRow(ctx, sqlStmt).Scan(&p.Latitude, &p.Longitude, &p.Timestamp)
	if err == pgx.ErrNoRows {
		return p, store.ErrNoMatch
	} else if err != nil {
		return p, err
	}
	return p, nil
}
