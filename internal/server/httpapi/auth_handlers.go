package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/crmconsole/internal/server/users"
	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

const maxBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v); err != nil {
		return shared.NewValidationError("Malformed JSON body")
	}
	return nil
}

func (s *HTTPServer) tokenResponse(pair *users.TokenPair, u *users.User) tokenResponse {
	return tokenResponse{
		AccessToken:  pair.AccessToken,
		TokenType:    "bearer",
		ExpiresIn:    int64(s.users.AccessTokenValidity().Seconds()),
		RefreshToken: pair.RefreshToken,
		User:         toUserDTO(u),
	}
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := s.users.Register(r.Context(), users.Registration{
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, registerResponse{Email: u.Email, User: toUserDTO(u)})
}

// verifyEmail checks a code, or issues a new one when the code is empty.
func (s *HTTPServer) verifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeError(w, shared.NewValidationError("Email is required"))
		return
	}

	if strings.TrimSpace(req.Code) == "" {
		if err := s.users.ResendOTP(r.Context(), req.Email); err != nil {
			writeError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Verification code sent")
		return
	}

	pair, u, err := s.users.VerifyEmail(r.Context(), req.Email, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.tokenResponse(pair, u))
}

// login is an OAuth2 password grant token endpoint.
func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, detailBody{Detail: "Malformed form body"})
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		writeJSON(w, http.StatusBadRequest, detailBody{Detail: "Unsupported grant type"})
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	if username == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, detailBody{Detail: "Username and password are required"})
		return
	}

	pair, u, err := s.users.Login(r.Context(), username, password)
	if err != nil {
		writeDetail(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, s.tokenResponse(pair, u))
}

func (s *HTTPServer) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toUserDTO(userFrom(r.Context())))
}
