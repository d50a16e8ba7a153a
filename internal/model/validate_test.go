package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func validRequest() NewRequest {
	return NewRequest{
		Code: NewRequestCode(),
		Type: RequestTypeDomiciliary,
		Items: []LineItem{
			{PointID: 1, Quantity: decimal.NewFromInt(100)},
		},
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *NewRequest)
		wantErr string
	}{
		{"valid", func(r *NewRequest) {}, ""},
		{"no items", func(r *NewRequest) { r.Items = nil }, "detalles"},
		{"empty items", func(r *NewRequest) { r.Items = []LineItem{} }, "detalles"},
		{"zero quantity", func(r *NewRequest) { r.Items[0].Quantity = decimal.Zero }, "cantidad_solicitada"},
		{"negative quantity", func(r *NewRequest) { r.Items[0].Quantity = decimal.NewFromInt(-5) }, "cantidad_solicitada"},
		{"fractional quantity", func(r *NewRequest) { r.Items[0].Quantity = decimal.RequireFromString("0.5") }, ""},
		{"tiny quantity", func(r *NewRequest) { r.Items[0].Quantity = decimal.New(1, -400) }, ""},
		{"tiny negative quantity", func(r *NewRequest) { r.Items[0].Quantity = decimal.New(-1, -400) }, "cantidad_solicitada must be greater than 0"},
		{"missing point", func(r *NewRequest) { r.Items[0].PointID = 0 }, "id_punto"},
		{"short code", func(r *NewRequest) { r.Code = "SOL" }, "codigo_solicitud"},
		{"unknown type", func(r *NewRequest) { r.Type = "AGRICOLA" }, "tipo_solicitud"},
	}

	for _, tt := range tests {
		req := validRequest()
		tt.mutate(&req)
		err := Validate(req)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("%s: expected ErrInvalidRequest, got %v", tt.name, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: expected error naming %q, got %q", tt.name, tt.wantErr, err)
		}
	}
}

func TestValidateTicket(t *testing.T) {
	ticket := NewTicket{
		Holder:      "Juan Pérez",
		Quantity:    decimal.NewFromInt(50),
		PickupDate:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		PickupPoint: "Plaza Principal",
	}
	if err := Validate(ticket); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ticket.PickupDate = time.Time{}
	if err := Validate(ticket); !errors.Is(err, ErrInvalidRequest) {
		t.Errorf("expected error for missing pickup date, got %v", err)
	}
}

func TestNewRequestCodeUniqueAndOrdered(t *testing.T) {
	prev := NewRequestCode()
	for i := 0; i < 100; i++ {
		code := NewRequestCode()
		if !strings.HasPrefix(code, "SOL-") {
			t.Fatalf("expected SOL- prefix, got %q", code)
		}
		if code <= prev {
			t.Fatalf("codes not increasing: %q then %q", prev, code)
		}
		prev = code
	}
}

func TestValidateProfile(t *testing.T) {
	tests := []struct {
		profile Profile
		wantErr bool
	}{
		{Profile{Name: "Ana", Email: "ana@example.com", Role: RoleRequester, Password: "1234"}, false},
		{Profile{Name: "Ana", Email: "ana@example.com", Role: RoleResidentAdmin, Password: "secret"}, false},
		{Profile{Email: "ana@example.com", Role: RoleRequester, Password: "1234"}, true},
		{Profile{Name: "Ana", Email: "ana.example.com", Role: RoleRequester, Password: "1234"}, true},
		{Profile{Name: "Ana", Email: "ana@example.com", Role: RoleRequester, Password: "123"}, true},
		{Profile{Name: "Ana", Email: "ana@example.com", Role: "ADMIN", Password: "1234"}, true},
	}

	for _, tt := range tests {
		err := Validate(tt.profile)
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%+v) error = %v, wantErr %v", tt.profile, err, tt.wantErr)
		}
	}
}
