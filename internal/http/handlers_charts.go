package http

import (
	"net/http"
	"strings"

	"gastos/internal/core"
)

type categoryTotalResponse struct {
	Categoria  string      `json:"categoria"`
	Valor      core.Amount `json:"valor"`
	Percentual float64     `json:"percentual"`
}

type monthTotalResponse struct {
	Mes   string      `json:"mes"`
	Valor core.Amount `json:"valor"`
}

type monthlyResponse struct {
	Meses     []monthTotalResponse `json:"meses"`
	SomaTotal core.Amount          `json:"soma_total"`
}

type spendResponse struct {
	Descricao string      `json:"descricao"`
	Valor     core.Amount `json:"valor"`
}

type insightsResponse struct {
	MaiorCategoria      *string        `json:"maior_categoria"`
	MaiorCategoriaValor core.Amount    `json:"maior_categoria_valor"`
	MediaSemanal        core.Amount    `json:"media_semanal"`
	MaiorGasto          *spendResponse `json:"maior_gasto"`
	MenorGasto          *spendResponse `json:"menor_gasto"`
	DiaMaiorGastoMedia  *int           `json:"dia_maior_gasto_media"`
}

// orZero turns an unknown total into 0 so numeric chart fields are never null.
func orZero(a core.Amount) core.Amount {
	if !a.Valid {
		return core.NewAmount(0)
	}
	return a
}

func toSpend(sp *core.Spend) *spendResponse {
	if sp == nil {
		return nil
	}
	return &spendResponse{Descricao: sp.Description, Valor: sp.Amount}
}

// chartFilter reads the date range and one exact category label. Listing
// filters such as amounts and search do not apply to charts.
func chartFilter(w http.ResponseWriter, r *http.Request) (core.Filter, bool) {
	q := r.URL.Query()
	f := core.Filter{Category: strings.TrimSpace(q.Get(paramCategory))}
	var err error
	if f.From, err = parseDateParam(q.Get(paramFrom)); err == nil {
		f.To, err = parseDateParam(q.Get(paramTo))
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return f, false
	}
	return f, true
}

func (s *Server) handleChartByCategory(w http.ResponseWriter, r *http.Request) {
	f, ok := chartFilter(w, r)
	if !ok {
		return
	}
	rows, err := s.opts.Charts.ByCategory(r.Context(), currentUser(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]categoryTotalResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, categoryTotalResponse{
			Categoria:  row.Category,
			Valor:      orZero(row.Total),
			Percentual: row.Percent,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChartByMonth(w http.ResponseWriter, r *http.Request) {
	f, ok := chartFilter(w, r)
	if !ok {
		return
	}
	summary, err := s.opts.Charts.ByMonth(r.Context(), currentUser(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := monthlyResponse{
		Meses:     make([]monthTotalResponse, 0, len(summary.Months)),
		SomaTotal: orZero(summary.Total),
	}
	for _, m := range summary.Months {
		resp.Meses = append(resp.Meses, monthTotalResponse{Mes: core.MonthName(m.Month), Valor: orZero(m.Total)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleChartInsights(w http.ResponseWriter, r *http.Request) {
	f, ok := chartFilter(w, r)
	if !ok {
		return
	}
	in, err := s.opts.Charts.Insights(r.Context(), currentUser(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, insightsResponse{
		MaiorCategoria:      in.TopCategory,
		MaiorCategoriaValor: orZero(in.TopCategoryTotal),
		MediaSemanal:        orZero(in.Average),
		MaiorGasto:          toSpend(in.Largest),
		MenorGasto:          toSpend(in.Smallest),
		DiaMaiorGastoMedia:  in.BestDayOfMonth,
	})
}
