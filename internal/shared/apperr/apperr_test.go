package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStatus(t *testing.T) {
	for _, tc := range []struct {
		err  error
		code int
		kind string
	}{
		{fmt.Errorf("event 9: %w", ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("amount: %w", ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("body: %w", ErrParse), http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("A -> B: %w", ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("publish: %w", ErrTransport), http.StatusServiceUnavailable, "transport_failure"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	} {
		code, kind := Status(tc.err)
		if code != tc.code || kind != tc.kind {
			t.Errorf("Status(%v) = %d,%s want %d,%s", tc.err, code, kind, tc.code, tc.kind)
		}
	}
}

func TestWriteHTTP_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteHTTP(rec, errors.New("pq: password authentication failed"))

	var body Response
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if rec.Code != http.StatusInternalServerError || body.Detail != "Internal Server Error" {
		t.Errorf("got %d %+v", rec.Code, body)
	}
}
