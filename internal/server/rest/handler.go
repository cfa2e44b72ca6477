package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/dmitrijs2005/authgate/internal/common"
	"github.com/dmitrijs2005/authgate/internal/server/users"
)

type loginRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type signupResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// login signs the caller up or logs them in. A body that is not JSON is
// treated like one without credentials.
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&in); err != nil {
		in = loginRequest{}
	}

	res, err := s.users.Authenticate(r.Context(), users.Credentials{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	})
	if err != nil {
		s.writeAuthError(w, r, err)
		return
	}

	if res.Created {
		writeJSON(w, http.StatusOK, signupResponse{Token: res.Token})
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{UserID: res.UserID, Token: res.Token})
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrMissingCredentials):
		w.WriteHeader(http.StatusNotFound)
	case errors.Is(err, common.ErrorUnauthorized):
		errorJSON(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, common.ErrAlreadyExists):
		errorJSON(w, http.StatusConflict, "user already exists")
	default:
		s.logger.Error(r.Context(), "login failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *Server) getContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.contacts.Contacts(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "contacts failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(contacts)
}

func (s *Server) hello(w http.ResponseWriter, r *http.Request) {
	writeText(w, http.StatusOK, "Hello")
}

// getTokenSecret returns a fresh random signing secret. It is meant for
// one-off manual setup and is not authenticated.
func (s *Server) getTokenSecret(w http.ResponseWriter, r *http.Request) {
	secret, err := common.MakeRandHexString(common.TokenSecretSize)
	if err != nil {
		s.logger.Error(r.Context(), "secret generation failed", "error", err)
		errorJSON(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeText(w, http.StatusOK, secret)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeText(w http.ResponseWriter, status int, s string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, s)
}
