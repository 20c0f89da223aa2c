package webapp

import (
	"html/template"
	"net/http"
	"time"

	hashids "github.com/speps/go-hashids/v2"
)

var challanTmpl = template.Must(template.New("challan").Parse(`<div id="challanToPrint">
<h1>FAST UNIVERSITY</h1>
<p><strong>Challan No:</strong> {{.Ref}}</p>
<p><strong>Student Name:</strong> {{.Name}}</p>
<p><strong>Student ID:</strong> {{.StudentID}}</p>
<p><strong>Point Number:</strong> {{.PointNo}}</p>
<p><strong>Fee Amount:</strong> Rs 35000</p>
<p><strong>Fee Challan generated successfully</strong></p>
</div>
`))

type challanData struct {
	Ref       string
	Name      string
	StudentID string
	PointNo   string
}

// Challan renders the printable fee challan for a logged-in user. The fee
// amount is fixed.
func (api *Api) Challan(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := api.current(r); !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	name := r.PostFormValue("name")
	student_id := r.PostFormValue("student-id")
	point_no := r.PostFormValue("point-number")
	if name == "" || student_id == "" || point_no == "" {
		http.Error(w, "Please fill in all fields correctly.", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := challanTmpl.Execute(w, challanData{
		Ref:       challanRef(time.Now()),
		Name:      name,
		StudentID: student_id,
		PointNo:   point_no,
	})
	if err != nil {
		api.log.Error().Err(err).Msg("")
	}
}

func challanRef(t time.Time) string {
	hd := hashids.NewData()
	hd.Salt = "pointportal-challan"
	hd.MinLength = 8
	h, err := hashids.NewWithData(hd)
	if err != nil {
		panic(err)
	}
	ref, err := h.EncodeInt64([]int64{t.Unix()})
	if err != nil {
		panic(err)
	}
	return ref
}
