package web

import (
	"net/http"

	"github.com/vbonduro/konsinyasi/internal/domain"
	"github.com/vbonduro/konsinyasi/internal/stock"
)

type nameRequest struct {
	Name string `json:"name"`
}

type pricesRequest struct {
	Prices map[string]int64 `json:"prices"`
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.State.Products())
}

func (s *Server) handleListEntries(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if c == domain.CollectionPartners {
			writeJSON(w, http.StatusOK, s.svc.State.Partners())
			return
		}
		writeJSON(w, http.StatusOK, s.svc.State.Employees())
	}
}

func (s *Server) handleAddProduct(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.Catalog.AddProduct(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleAddEntry(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req nameRequest
		if err := decodeJSON(w, r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}

		add := s.svc.Catalog.AddEmployee
		if c == domain.CollectionPartners {
			add = s.svc.Catalog.AddPartner
		}
		e, err := add(r.Context(), req.Name)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, e)
	}
}

func (s *Server) handleUpdatePrices(w http.ResponseWriter, r *http.Request) {
	var req pricesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.Catalog.UpdatePrices(r.Context(), req.Prices); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": len(req.Prices)})
}

type stockLine struct {
	stock.Line
	PriceDisplay string `json:"price_display"`
	ValueDisplay string `json:"value_display"`
}

type stockResponse struct {
	Lines        []stockLine `json:"lines"`
	TotalValue   int64       `json:"total_value"`
	TotalDisplay string      `json:"total_display"`
}

func (s *Server) handleStock(w http.ResponseWriter, _ *http.Request) {
	summary := s.svc.State.Stock()
	resp := stockResponse{
		Lines:        make([]stockLine, 0, len(summary.PerProduct)),
		TotalValue:   summary.TotalValue,
		TotalDisplay: stock.FormatRupiah(summary.TotalValue),
	}
	for _, l := range summary.Lines() {
		resp.Lines = append(resp.Lines, stockLine{
			Line:         l,
			PriceDisplay: stock.FormatRupiah(l.Price),
			ValueDisplay: stock.FormatRupiah(l.Value),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
