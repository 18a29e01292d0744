package web

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/export"
)

type clockInRequest struct {
	Employee string `json:"employee"`
}

// handleListAttendance returns records newest clock-in first. With
// ?employee= and ?active=true it narrows to that employee's open records.
func (s *Server) handleListAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employee := strings.TrimSpace(q.Get("employee"))
	active, _ := strconv.ParseBool(q.Get("active"))

	var records []domain.AttendanceRecord
	switch {
	case employee != "" && active:
		records = s.svc.State.ActiveAttendance(employee)
	case employee != "":
		for _, rec := range s.svc.State.Attendance() {
			if rec.EmployeeName == employee {
				records = append(records, rec)
			}
		}
	default:
		records = s.svc.State.Attendance()
	}
	if records == nil {
		records = []domain.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) handleClockIn(w http.ResponseWriter, r *http.Request) {
	var req clockInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	rec, err := s.svc.Journey.ClockIn(r.Context(), req.Employee)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleClockOut(w http.ResponseWriter, r *http.Request) {
	rec, err := s.svc.Journey.ClockOut(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleExportCanvasing(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := export.Canvasing(&buf, s.svc.State.Attendance(), s.svc.State.Location()); err != nil {
		s.writeExportError(w, r, err)
		return
	}
	s.writeCSV(w, domain.CollectionAttendance, buf.Bytes())
}
