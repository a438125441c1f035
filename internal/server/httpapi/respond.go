package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/crmconsole/internal/shared"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type messageBody struct {
	Message string `json:"message"`
}

type detailBody struct {
	Detail string `json:"detail"`
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

// errorStatus maps a service error to its status code and client message.
func errorStatus(err error) (int, string) {
	var ve *shared.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Msg
	case errors.Is(err, shared.ErrorValidation):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, shared.ErrorNotFound):
		return http.StatusNotFound, "Not found"
	case errors.Is(err, shared.ErrorAlreadyExists):
		return http.StatusConflict, "Email already registered"
	case errors.Is(err, shared.ErrorInvalidCode):
		return http.StatusBadRequest, "Invalid or expired verification code"
	case errors.Is(err, shared.ErrorTokenExpired):
		return http.StatusUnauthorized, "Token expired"
	case errors.Is(err, shared.ErrorInvalidToken):
		return http.StatusUnauthorized, "Could not validate credentials"
	case errors.Is(err, shared.ErrorInvalidAuthheaderFormat):
		return http.StatusUnauthorized, "Invalid authorization header"
	case errors.Is(err, shared.ErrorInvalidLoginPassword):
		return http.StatusUnauthorized, "Incorrect email or password"
	case errors.Is(err, shared.ErrorNotVerified):
		return http.StatusForbidden, "Email not verified"
	case errors.Is(err, shared.ErrorInactive):
		return http.StatusForbidden, "Account is disabled"
	case errors.Is(err, shared.ErrorForbidden):
		return http.StatusForbidden, "Not enough permissions"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func writeError(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeMessage(w, status, msg)
}

// writeDetail is writeError in the {"detail": ...} shape used by the
// token endpoint.
func writeDetail(w http.ResponseWriter, err error) {
	status, msg := errorStatus(err)
	writeJSON(w, status, detailBody{Detail: msg})
}
