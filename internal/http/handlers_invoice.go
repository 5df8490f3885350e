package http

import (
	"bytes"
	"net/http"
	"strconv"

	"gastos/internal/services"
)

func (s *Server) handleInvoicePDF(w http.ResponseWriter, r *http.Request) {
	s.serveInvoice(w, r, services.InvoicePDF, "application/pdf")
}

func (s *Server) handleInvoiceCSV(w http.ResponseWriter, r *http.Request) {
	s.serveInvoice(w, r, services.InvoiceCSV, "text/csv; charset=utf-8")
}

// serveInvoice renders into memory first so a generation failure can still
// be reported as JSON.
func (s *Server) serveInvoice(w http.ResponseWriter, r *http.Request, format, contentType string) {
	var buf bytes.Buffer
	if err := s.opts.Invoices.Write(r.Context(), &buf, format); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="fatura_simulada.`+format+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
