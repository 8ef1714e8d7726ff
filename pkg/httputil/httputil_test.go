package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/nimbusmart/catalog/pkg/errors"
	"github.com/nimbusmart/catalog/pkg/validator"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"name": "Wireless Mouse"}})

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	resp := decodeResponse(t, rec)
	data, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("data type = %T, want map", resp.Data)
	}
	if data["name"] != "Wireless Mouse" {
		t.Errorf("data.name = %v, want Wireless Mouse", data["name"])
	}
}

func TestWriteError_AppError(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products/abc", nil)

	WriteError(rec, req, apperrors.NotFound("product", "abc"), discardLogger())

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil {
		t.Fatal("expected error in response")
	}
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Error.Code)
	}
	if resp.Error.Message != "product with id abc not found" {
		t.Errorf("message = %q, want %q", resp.Error.Message, "product with id abc not found")
	}
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", fmt.Errorf("load product: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{"already exists", fmt.Errorf("insert: %w", apperrors.ErrAlreadyExists), http.StatusConflict, "ALREADY_EXISTS"},
		{"invalid input", fmt.Errorf("parse: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/products", nil)

			WriteError(rec, req, tt.err, discardLogger())

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			resp := decodeResponse(t, rec)
			if resp.Error == nil {
				t.Fatal("expected error in response")
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestWriteError_InternalHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/products", nil)

	WriteError(rec, req, errors.New("pq: connection refused"), discardLogger())

	resp := decodeResponse(t, rec)
	if resp.Error.Message == "pq: connection refused" {
		t.Error("internal error detail leaked to the client")
	}
}

func TestWriteValidationError_FieldErrors(t *testing.T) {
	type input struct {
		Name  string  `json:"name" validate:"required"`
		Price float64 `json:"price" validate:"gte=0"`
	}

	err := validator.Validate(input{Price: -1})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	rec := httptest.NewRecorder()
	WriteValidationError(rec, err)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Error == nil {
		t.Fatal("expected error in response")
	}
	if resp.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", resp.Error.Code)
	}
	if _, ok := resp.Error.Fields["Name"]; !ok {
		t.Errorf("fields = %v, want entry for Name", resp.Error.Fields)
	}
	if _, ok := resp.Error.Fields["Price"]; !ok {
		t.Errorf("fields = %v, want entry for Price", resp.Error.Fields)
	}
}

func TestWriteValidationError_PlainError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("body must be valid JSON"))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Error.Code != "INVALID_INPUT" {
		t.Errorf("code = %q, want INVALID_INPUT", resp.Error.Code)
	}
}

func TestParseUUID(t *testing.T) {
	rec := httptest.NewRecorder()
	id, ok := ParseUUID(rec, "0d9bdb23-dde5-40ae-a0fb-5aa48affae76")
	if !ok {
		t.Fatal("expected valid UUID to parse")
	}
	if id.String() != "0d9bdb23-dde5-40ae-a0fb-5aa48affae76" {
		t.Errorf("id = %s", id)
	}

	rec = httptest.NewRecorder()
	_, ok = ParseUUID(rec, "not-a-uuid")
	if ok {
		t.Fatal("expected invalid UUID to be rejected")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	resp := decodeResponse(t, rec)
	if resp.Error.Code != "INVALID_PARAMETER" {
		t.Errorf("code = %q, want INVALID_PARAMETER", resp.Error.Code)
	}
}
