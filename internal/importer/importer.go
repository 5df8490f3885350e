// Package importer turns uploaded files into validated transaction batches.
//
// Importers never persist anything. They return a core.BatchResult and the
// caller commits it only when it carries no row errors.
package importer

import (
	"gastos/internal/core"
)

// Importer runs raw rows through the shared validator.
type Importer struct {
	validator *core.Validator
	extractor TextExtractor
	banners   []string
}

// Option configures an Importer.
type Option func(*Importer)

// WithExtractor replaces the document text extractor.
func WithExtractor(e TextExtractor) Option {
	return func(im *Importer) { im.extractor = e }
}

// WithBanners replaces the heading texts skipped by the document importer.
func WithBanners(banners ...string) Option {
	return func(im *Importer) { im.banners = banners }
}

// New returns an Importer validating rows with v.
func New(v *core.Validator, opts ...Option) *Importer {
	if v == nil {
		v = core.NewValidator(nil)
	}
	im := &Importer{
		validator: v,
		extractor: PDFExtractor{},
		banners:   []string{DefaultBanner},
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// validateRows accumulates row errors without stopping at the first one.
func (im *Importer) validateRows(rows []core.RawRow) core.BatchResult {
	var res core.BatchResult
	for _, raw := range rows {
		rec, err := im.validator.Prepare(raw)
		if err != nil {
			res.Errors = append(res.Errors, core.RowError{Line: raw.Line, Reason: err.Error()})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
