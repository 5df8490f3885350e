package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"gastos/internal/auth"
	"gastos/internal/core"
	"gastos/internal/services"
)

const (
	msgNoFile        = "Nenhum arquivo enviado"
	msgFileTooLarge  = "Arquivo muito grande"
	msgMissingFields = "Campos obrigatórios faltando: data, descricao, valor"
	msgInvalidID     = "ID inválido"
)

// transactionResponse is the wire shape of a record.
type transactionResponse struct {
	ID        int64       `json:"id"`
	Data      string      `json:"data"`
	Descricao string      `json:"descricao"`
	Valor     core.Amount `json:"valor"`
	Categoria string      `json:"categoria"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:        t.ID,
		Data:      t.Date.String(),
		Descricao: t.Description,
		Valor:     t.Amount,
		Categoria: t.Category,
	}
}

type uploadResponse struct {
	Message   string `json:"message"`
	Processed int    `json:"transacoes_processadas"`
}

type createResponse struct {
	Message   string              `json:"message"`
	Transacao transactionResponse `json:"transacao"`
}

type categoriesResponse struct {
	Categorias []string `json:"categorias"`
}

// currentUser returns the id placed in the context by the auth middleware.
func currentUser(r *http.Request) int64 {
	u, _ := auth.UserFromContext(r.Context())
	return u.ID
}

type importFunc func(ctx context.Context, userID int64, r io.Reader) (services.ImportResult, error)

func (s *Server) handleUploadCSV(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.opts.Transactions.ImportCSV, "CSV processado com sucesso!")
}

func (s *Server) handleUploadPDF(w http.ResponseWriter, r *http.Request) {
	s.handleUpload(w, r, s.opts.Transactions.ImportPDF, "PDF processado com sucesso!")
}

// handleUpload reads the multipart "file" field and hands it to the importer.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, importFn importFunc, okMsg string) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, msgNoFile)
		return
	}
	defer file.Close()

	res, err := importFn(r.Context(), currentUser(r), file)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{Message: okMsg, Processed: len(res.Transactions)})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	records, err := s.opts.Transactions.List(r.Context(), currentUser(r), f)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	out := make([]transactionResponse, 0, len(records))
	for _, t := range records {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	body, err := ParseJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var in services.TransactionInput
	fields := []struct {
		key string
		dst *string
	}{
		{"data", &in.Date},
		{"descricao", &in.Description},
		{"valor", &in.Amount},
		{"categoria", &in.Category},
	}
	for _, fld := range fields {
		if *fld.dst, err = body.Get(fld.key); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	// A null valor is an unknown amount, but the field itself is required.
	if _, present, _ := body.Lookup("valor"); !present || strings.TrimSpace(in.Date) == "" || strings.TrimSpace(in.Description) == "" {
		writeError(w, http.StatusBadRequest, msgMissingFields)
		return
	}

	t, err := s.opts.Transactions.Create(r.Context(), currentUser(r), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, createResponse{
		Message:   "Transação criada com sucesso!",
		Transacao: toTransactionResponse(t),
	})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	body, err := ParseJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var p services.TransactionPatch
	fields := []struct {
		key string
		dst **string
	}{
		{"data", &p.Date},
		{"descricao", &p.Description},
		{"valor", &p.Amount},
		{"categoria", &p.Category},
	}
	for _, fld := range fields {
		if *fld.dst, err = body.Optional(fld.key); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	if _, err := s.opts.Transactions.Update(r.Context(), currentUser(r), id, p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Message("Transação atualizada").Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, msgInvalidID)
		return
	}
	if err := s.opts.Transactions.Delete(r.Context(), currentUser(r), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Message("Transação deletada").Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.opts.Transactions.Categories(r.Context(), currentUser(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categorias: cats})
}
