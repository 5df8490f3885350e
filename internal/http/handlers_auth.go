package http

import (
	"net/http"
)

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	username, password, ok := readCredentials(w, r)
	if !ok {
		return
	}
	if _, err := s.opts.Accounts.Register(r.Context(), username, password); err != nil {
		writeServiceError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Message("Usuário criado com sucesso").Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	username, password, ok := readCredentials(w, r)
	if !ok {
		return
	}
	token, err := s.opts.Accounts.Login(r.Context(), username, password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// readCredentials decodes {username, password}. Missing fields are left to
// the service, which reports them together.
func readCredentials(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	body, err := ParseJSONBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	username, err := body.Get("username")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	password, err := body.Get("password")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", "", false
	}
	return username, password, true
}
