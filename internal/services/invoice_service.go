package services

import (
	"context"
	"io"
	"sync"

	"gastos/internal/core"
	"gastos/internal/invoice"
	"gastos/internal/log"
)

// Invoice formats.
const (
	InvoicePDF = "pdf"
	InvoiceCSV = "csv"
)

// InvoiceService renders simulated invoices. The generator's random source
// is not safe for concurrent use, so item generation is serialized.
type InvoiceService struct {
	mu  sync.Mutex
	gen *invoice.Generator
}

func NewInvoiceService(gen *invoice.Generator) *InvoiceService {
	return &InvoiceService{gen: gen}
}

func (s *InvoiceService) items() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen.Items(s.gen.RandomCount())
}

// Write renders a fresh invoice in the given format.
func (s *InvoiceService) Write(ctx context.Context, w io.Writer, format string) error {
	items := s.items()
	log.FromContext(ctx).WithComponent(log.ComponentInvoice).DebugContext(ctx, "Invoice generated",
		log.FieldOperation, log.OpGenerate,
		"format", format,
		"items", len(items))
	if format == InvoiceCSV {
		return invoice.WriteCSV(w, items)
	}
	return invoice.WritePDF(w, items)
}
