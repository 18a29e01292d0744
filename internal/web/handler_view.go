package web

import (
	"html/template"
	"net/http"
	"net/url"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/history"
	"github.com/vbonduro/konsinyasi/internal/stock"
)

var historyTitles = map[domain.Collection]string{
	domain.CollectionDropoffs: "Riwayat Dropping",
	domain.CollectionReturns:  "Riwayat Return",
}

func (s *Server) handleStockPage(w http.ResponseWriter, r *http.Request) {
	summary := s.svc.State.Stock()
	s.renderView(w, r, struct {
		ActiveNav  string
		Lines      []stock.Line
		TotalValue int64
	}{"stock", summary.Lines(), summary.TotalValue}, "pages/stock.html")
}

func (s *Server) handleHistoryPage(w http.ResponseWriter, r *http.Request) {
	c := domain.Collection(r.PathValue("collection"))
	title, ok := historyTitles[c]
	if !ok {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	f, err := history.FilterFromQuery(q, s.svc.State.Location())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.renderView(w, r, struct {
		ActiveNav string
		Title     string
		ExportURL string
		Query     url.Values
		Records   []domain.Transaction
	}{string(c), title, "/api/" + string(c) + "/export?" + q.Encode(), q, s.svc.State.History(c, f)}, "pages/history.html")
}

func (s *Server) handleCanvasingPage(w http.ResponseWriter, r *http.Request) {
	s.renderView(w, r, struct {
		ActiveNav string
		Records   []domain.AttendanceRecord
	}{"canvasing", s.svc.State.Attendance()}, "pages/canvasing.html")
}

func (s *Server) renderView(w http.ResponseWriter, r *http.Request, data any, page string) {
	if err := s.renderPage(w, data, "base.html", page); err != nil {
		s.logger.Error("render page failed", "path", r.URL.Path, "error", err)
	}
}

// renderPage parses and executes a full-page template set.
func (s *Server) renderPage(w http.ResponseWriter, data any, files ...string) error {
	tmpl, err := template.New("").Funcs(s.tmplFuncs).ParseFS(s.templates, files...)
	if err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", data)
}
