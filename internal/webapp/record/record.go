package record

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/phuslu/log"

	"fastnu.dev/pointportal/internal/store"
	"fastnu.dev/pointportal/internal/util"
	"fastnu.dev/pointportal/internal/webapp/common"
)

// RecordApi carries the admin-side student and driver record management.
type RecordApi struct {
	records store.RecordStore
	vld     *validator.Validate
	log     log.Logger
}

func NewRecordApi(records store.RecordStore) *RecordApi {
	r := &RecordApi{}
	r.records = records
	r.vld = validator.New()
	r.log = log.DefaultLogger
	r.log.Context = log.NewContext(nil).Str("module", "record").Value()
	return r
}

type AddStudentRequest struct {
	StudentID string `json:"Student_ID" validate:"required"`
	Name      string `json:"Name" validate:"required"`
	PointNo   string `json:"Point_no" validate:"required"`
	Phone     string `json:"Phone" validate:"required"`
	FeeStatus string `json:"Fee_Status" validate:"required"`
	DriverID  string `json:"Driver_ID"`
}

type StudentModel struct {
	StudentID string `json:"Student_ID"`
	Name      string `json:"Name"`
	PointNo   string `json:"Point_no"`
	Phone     string `json:"Phone"`
	FeeStatus string `json:"Fee_Status"`
	DriverID  string `json:"Driver_ID"`
}

type AddDriverRequest struct {
	DriverID string `json:"Driver_ID" validate:"required"`
	Name     string `json:"Name" validate:"required"`
	Phone    string `json:"Phone" validate:"required"`
	RouteNo  string `json:"Route_no" validate:"required"`
}

type DriverModel struct {
	DriverID string `json:"Driver_ID"`
	Name     string `json:"Name"`
	Phone    string `json:"Phone"`
	RouteNo  string `json:"Route_no"`
}

func (ra *RecordApi) AddStudent(w http.ResponseWriter, r *http.Request) {
	req_body := AddStudentRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req_body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ra.vld.Struct(req_body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s := &store.Student{
		StudentID: req_body.StudentID,
		Name:      req_body.Name,
		PointNo:   req_body.PointNo,
		Phone:     req_body.Phone,
		FeeStatus: req_body.FeeStatus,
		DriverID:  req_body.DriverID,
	}
	err := ra.records.InsertStudent(r.Context(), s)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.JsonWrite(w, common.BasicResponse{Status: -1, Message: "Student ID already exists"})
			return
		}
		ra.log.Error().Err(err).Msg("insert student failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	util.JsonWrite(w, common.BasicResponse{Status: 0, Message: "New student added successfully"})
}

func (ra *RecordApi) GetStudents(w http.ResponseWriter, r *http.Request) {
	students, err := ra.records.ListStudents(r.Context())
	if err != nil {
		ra.log.Error().Err(err).Msg("list students failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	out := make([]*StudentModel, 0, len(students))
	for _, s := range students {
		out = append(out, &StudentModel{
			StudentID: s.StudentID,
			Name:      s.Name,
			PointNo:   s.PointNo,
			Phone:     s.Phone,
			FeeStatus: s.FeeStatus,
			DriverID:  s.DriverID,
		})
	}
	util.JsonWrite(w, out)
}

func (ra *RecordApi) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := ra.records.DeleteStudent(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			util.JsonWrite(w, common.BasicResponse{Status: -1, Message: "Student not found"})
			return
		}
		ra.log.Error().Err(err).Msg("delete student failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	util.JsonWrite(w, common.BasicResponse{Status: 0, Message: "Student deleted successfully"})
}

func (ra *RecordApi) AddDriver(w http.ResponseWriter, r *http.Request) {
	req_body := AddDriverRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req_body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := ra.vld.Struct(req_body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	d := &store.Driver{
		DriverID: req_body.DriverID,
		Name:     req_body.Name,
		Phone:    req_body.Phone,
		RouteNo:  req_body.RouteNo,
	}
	err := ra.records.InsertDriver(r.Context(), d)
	if err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			util.JsonWrite(w, common.BasicResponse{Status: -1, Message: "Driver ID already exists"})
			return
		}
		ra.log.Error().Err(err).Msg("insert driver failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	util.JsonWrite(w, common.BasicResponse{Status: 0, Message: "New driver added successfully"})
}

func (ra *RecordApi) GetDrivers(w http.ResponseWriter, r *http.Request) {
	drivers, err := ra.records.ListDrivers(r.Context())
	if err != nil {
		ra.log.Error().Err(err).Msg("list drivers failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	out := make([]*DriverModel, 0, len(drivers))
	for _, d := range drivers {
		out = append(out, &DriverModel{
			DriverID: d.DriverID,
			Name:     d.Name,
			Phone:    d.Phone,
			RouteNo:  d.RouteNo,
		})
	}
	util.JsonWrite(w, out)
}

func (ra *RecordApi) DeleteDriver(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := ra.records.DeleteDriver(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNoMatch) {
			util.JsonWrite(w, common.BasicResponse{Status: -1, Message: "Driver not found"})
			return
		}
		ra.log.Error().Err(err).Msg("delete driver failed")
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	util.JsonWrite(w, common.BasicResponse{Status: 0, Message: "Driver deleted successfully"})
}
