package middleware

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
)

type samplePayload struct {
	Name     string  `json:"name" validate:"required,min=1,max=100"`
	Quantity float64 `json:"quantity" validate:"required,gt=0"`
	ID       string  `json:"id" validate:"omitempty,uuid"`
}

func TestDecodeAndValidate(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid payload", `{"name":"Beras","quantity":2}`, false},
		{"malformed json", `{"name":`, true},
		{"missing required field", `{"quantity":2}`, true},
		{"non-positive quantity", `{"name":"Beras","quantity":0}`, true},
		{"bad uuid", `{"name":"Beras","quantity":1,"id":"nope"}`, true},
		{"valid uuid", `{"name":"Beras","quantity":1,"id":"b4aa9f4e-8acc-4a7f-bd9a-1a51cdbd0a53"}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/", strings.NewReader(tc.body))

			var payload samplePayload
			err := DecodeAndValidate(req, &payload)
			if (err != nil) != tc.wantErr {
				t.Fatalf("DecodeAndValidate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestFormatValidationErrors(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity":0}`))

	var payload samplePayload
	err := DecodeAndValidate(req, &payload)
	if err == nil {
		t.Fatal("expected a validation error")
	}

	errs := FormatValidationErrors(err)
	if len(errs) != 2 {
		t.Fatalf("expected 2 field errors, got %d: %+v", len(errs), errs)
	}
	for _, fe := range errs {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("incomplete field error: %+v", fe)
		}
	}

	// Non-validation errors yield nothing
	if got := FormatValidationErrors(errors.New("boom")); got != nil {
		t.Errorf("expected nil for non-validation error, got %+v", got)
	}
}
