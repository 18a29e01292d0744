package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/export"
	"github.com/vbonduro/konsinyasi/internal/history"
	"github.com/vbonduro/konsinyasi/internal/service"
)

// exportKinds names the CSV download of each collection.
var exportKinds = map[domain.Collection]string{
	domain.CollectionDropoffs:   "dropping",
	domain.CollectionReturns:    "return",
	domain.CollectionAttendance: "canvasing",
}

func (s *Server) handleListTransactions(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := history.FilterFromQuery(r.URL.Query(), s.svc.State.Location())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		txns := s.svc.State.History(c, f)
		if txns == nil {
			txns = []domain.Transaction{}
		}
		writeJSON(w, http.StatusOK, txns)
	}
}

type submitResponse struct {
	Saved   int                  `json:"saved"`
	Message string               `json:"message"`
	Records []domain.Transaction `json:"records"`
}

func (s *Server) handleSubmitTransactions(ts *service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var sub service.Submission
		if err := decodeJSON(w, r, &sub); err != nil {
			s.writeError(w, r, err)
			return
		}

		txns, err := ts.Submit(r.Context(), sub)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, submitResponse{
			Saved:   len(txns),
			Message: fmt.Sprintf("%d item berhasil disimpan", len(txns)),
			Records: txns,
		})
	}
}

type deleteResponse struct {
	Deleted *domain.Transaction `json:"deleted"`
	Message string              `json:"message"`
}

func (s *Server) handleDeleteTransaction(ts *service.TransactionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.PathValue("id"))
		if id == "" {
			s.writeError(w, r, domain.NewValidationError("id", "id is required"))
			return
		}

		txn, err := ts.Delete(r.Context(), id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, deleteResponse{
			Deleted: txn,
			Message: fmt.Sprintf("Data %s di %s telah dihapus", txn.ProductName, txn.PartnerName),
		})
	}
}

// handleExportTransactions downloads the filtered history as CSV. An empty
// result is answered with 204 instead of an empty file.
func (s *Server) handleExportTransactions(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loc := s.svc.State.Location()
		f, err := history.FilterFromQuery(r.URL.Query(), loc)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		var buf bytes.Buffer
		if err := export.Transactions(&buf, s.svc.State.History(c, f), loc); err != nil {
			s.writeExportError(w, r, err)
			return
		}
		s.writeCSV(w, c, buf.Bytes())
	}
}

func (s *Server) writeExportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, export.ErrNoRows) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.writeError(w, r, err)
}

func (s *Server) writeCSV(w http.ResponseWriter, c domain.Collection, data []byte) {
	name := export.Filename(exportKinds[c], s.now(), s.svc.State.Location())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if _, err := w.Write(data); err != nil {
		s.logger.Error("write export failed", "collection", c, "error", err)
	}
}
