// Package apperr define a taxonomia de erros compartilhada pelos dois serviços
// e o mapeamento para respostas HTTP.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrConflict        = errors.New("conflict")
	ErrTransport       = errors.New("transport failure")
	ErrParse           = errors.New("parse failure")
)

// Response é o corpo de erro devolvido pelas APIs
type Response struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

// Status devolve o código HTTP e o código de erro para err.
func Status(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrParse):
		return http.StatusBadRequest, "invalid_argument"
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrTransport):
		return http.StatusServiceUnavailable, "transport_failure"
	}
	return http.StatusInternalServerError, "internal"
}

// WriteHTTP escreve err como JSON. Erros inesperados não vazam detalhes.
func WriteHTTP(w http.ResponseWriter, err error) {
	code, kind := Status(err)
	detail := err.Error()
	if code == http.StatusInternalServerError {
		detail = "Internal Server Error"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(Response{Error: kind, Detail: detail})
}
