package core

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	v := NewValidator(nil)

	cases := []struct {
		name     string
		raw      RawRow
		wantErr  error
		wantDate string
		wantDesc string
		wantAmt  Amount
		wantCat  string
	}{
		{
			name:     "auto category",
			raw:      RawRow{Date: "2024-01-05", Description: "  Uber trip ", Amount: "23.50"},
			wantDate: "2024-01-05", wantDesc: "Uber trip", wantAmt: NewAmount(2350), wantCat: "transporte",
		},
		{
			name:     "explicit category is title-cased",
			raw:      RawRow{Date: "2024-01-05", Description: "x", Amount: "10", Category: "  mercado LIVRE "},
			wantDate: "2024-01-05", wantDesc: "x", wantAmt: NewAmount(1000), wantCat: "Mercado Livre",
		},
		{
			name:     "missing amount is null",
			raw:      RawRow{Date: "2024-02-01", Description: "Netflix", Amount: ""},
			wantDate: "2024-02-01", wantDesc: "Netflix", wantAmt: Amount{}, wantCat: "assinaturas",
		},
		{
			name:     "dash amount is null, not zero",
			raw:      RawRow{Date: "2024-02-01", Description: "Netflix", Amount: "-"},
			wantDate: "2024-02-01", wantDesc: "Netflix", wantAmt: Amount{}, wantCat: "assinaturas",
		},
		{
			name:     "empty description falls back",
			raw:      RawRow{Date: "2024-02-01", Description: "   ", Amount: "0"},
			wantDate: "2024-02-01", wantDesc: "", wantAmt: NewAmount(0), wantCat: FallbackCategory,
		},
		{
			name:     "negative amount",
			raw:      RawRow{Date: "2024-03-10", Description: "estorno", Amount: "-12.345"},
			wantDate: "2024-03-10", wantDesc: "estorno", wantAmt: NewAmount(-1235), wantCat: FallbackCategory,
		},
		{name: "bad date", raw: RawRow{Date: "05/01/2024", Description: "x", Amount: "1"}, wantErr: ErrInvalidDate},
		{name: "impossible date", raw: RawRow{Date: "2024-02-30", Description: "x", Amount: "1"}, wantErr: ErrInvalidDate},
		{name: "non numeric amount", raw: RawRow{Date: "2024-01-01", Description: "x", Amount: "abc"}, wantErr: ErrAmountNotNumeric},
		{name: "comma decimal", raw: RawRow{Date: "2024-01-01", Description: "x", Amount: "12,50"}, wantErr: ErrAmountNotNumeric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := v.Validate(tc.raw)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Validate() error = %v, want %v", err, tc.wantErr)
				}
				if KindOf(err) != KindRowValidation {
					t.Fatalf("KindOf() = %v, want %v", KindOf(err), KindRowValidation)
				}
				if err.Error() != tc.wantErr.Error() {
					t.Fatalf("message = %q, want %q", err.Error(), tc.wantErr.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() unexpected error: %v", err)
			}
			if got.Date.String() != tc.wantDate {
				t.Errorf("date = %s, want %s", got.Date, tc.wantDate)
			}
			if got.Description != tc.wantDesc {
				t.Errorf("description = %q, want %q", got.Description, tc.wantDesc)
			}
			if got.Amount != tc.wantAmt {
				t.Errorf("amount = %+v, want %+v", got.Amount, tc.wantAmt)
			}
			if got.Category != tc.wantCat {
				t.Errorf("category = %q, want %q", got.Category, tc.wantCat)
			}
		})
	}
}

func TestPrepareNormalizesEveryCategory(t *testing.T) {
	v := NewValidator(nil)

	got, err := v.Prepare(RawRow{Date: "2024-01-01", Description: "x", Amount: "1", Category: "FARMÁCIA "})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got.Category != "farmacia" {
		t.Fatalf("category = %q, want farmacia", got.Category)
	}

	got, err = v.Prepare(RawRow{Date: "2024-01-01", Description: "Spotify", Amount: "1"})
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if got.Category != "assinaturas" {
		t.Fatalf("category = %q, want assinaturas", got.Category)
	}
}
