package http

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestJSONBodyLookup(t *testing.T) {
	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"s":" texto ","n":12.50,"neg":-3,"z":null,"b":true,"o":{"x":1}}`))
	body, err := ParseJSONBody(req)
	if err != nil {
		t.Fatalf("ParseJSONBody: %v", err)
	}

	tests := []struct {
		key     string
		want    string
		present bool
		wantErr bool
	}{
		{key: "s", want: " texto ", present: true},
		{key: "n", want: "12.50", present: true},
		{key: "neg", want: "-3", present: true},
		{key: "z", want: "", present: true},
		{key: "b", want: "true", present: true},
		{key: "o", present: true, wantErr: true},
		{key: "missing"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, present, err := body.Lookup(tt.key)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if present != tt.present {
				t.Errorf("present = %v, want %v", present, tt.present)
			}
			if got != tt.want {
				t.Errorf("value = %q, want %q", got, tt.want)
			}
		})
	}

	if p, _ := body.Optional("missing"); p != nil {
		t.Errorf("Optional(missing) = %q, want nil", *p)
	}
	if p, _ := body.Optional("z"); p == nil || *p != "" {
		t.Errorf("Optional(null) = %v, want empty string", p)
	}
}

func TestParseJSONBodyRejectsNonObjects(t *testing.T) {
	for _, in := range []string{"", "[1,2]", "nope", `{"a":`} {
		req := httptest.NewRequest("POST", "/", strings.NewReader(in))
		if _, err := ParseJSONBody(req); err != errBadJSON {
			t.Errorf("ParseJSONBody(%q) err = %v", in, err)
		}
	}
}

func TestParseFilter(t *testing.T) {
	q := url.Values{
		paramCategory: {" Mercado, ,lazer"},
		paramFrom:     {"2024-01-01"},
		paramTo:       {"2024-12-31"},
		paramMin:      {"10.5"},
		paramMax:      {"200"},
		paramSearch:   {"  uber "},
	}
	f, err := ParseFilter(q)
	if err != nil {
		t.Fatalf("ParseFilter: %v", err)
	}
	if len(f.Categories) != 2 || f.Categories[0] != "Mercado" || f.Categories[1] != "lazer" {
		t.Errorf("Categories = %q", f.Categories)
	}
	if f.From == nil || f.From.Format("2006-01-02") != "2024-01-01" {
		t.Errorf("From = %v", f.From)
	}
	if f.To == nil || f.To.Day() != 31 {
		t.Errorf("To = %v", f.To)
	}
	if f.MinAmount == nil || f.MinAmount.Cents != 1050 {
		t.Errorf("MinAmount = %v", f.MinAmount)
	}
	if f.MaxAmount == nil || f.MaxAmount.Cents != 20000 {
		t.Errorf("MaxAmount = %v", f.MaxAmount)
	}
	if f.Search != "uber" {
		t.Errorf("Search = %q", f.Search)
	}

	empty, err := ParseFilter(url.Values{})
	if err != nil || empty.From != nil || empty.MinAmount != nil || empty.Categories != nil {
		t.Errorf("empty filter = %+v, %v", empty, err)
	}
}

func TestParseFilterErrors(t *testing.T) {
	tests := []struct {
		name  string
		query url.Values
		want  error
	}{
		{"bad start date", url.Values{paramFrom: {"01/01/2024"}}, errBadDate},
		{"impossible end date", url.Values{paramTo: {"2024-02-30"}}, errBadDate},
		{"bad minimum", url.Values{paramMin: {"dez"}}, errBadAmount},
		{"sentinel maximum", url.Values{paramMax: {"-"}}, errBadAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFilter(tt.query); err != tt.want {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}
