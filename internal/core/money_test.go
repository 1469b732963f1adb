package core

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in  string
		out int64
		ok  bool
	}{
		{"1", 100, true},
		{"1.0", 100, true},
		{"1.23", 123, true},
		{"1,23", 123, true},
		{"0.01", 1, true},
		{"1.005", 101, true}, // half-up rounding
		{" 2.50 ", 250, true},
		{"-1", 0, false},
		{"+1", 0, false},
		{"0", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
		{"", 0, false},
		{"92233720368547758.07", 9223372036854775807, true},
		{"92233720368547758.08", 0, false},
		{"184467440737095516.17", 0, false},
		{"1e30", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseDecimalToCents(tc.in)
		if tc.ok {
			if err != nil || got != tc.out {
				t.Fatalf("%q expected %d, got %d (err=%v)", tc.in, tc.out, got, err)
			}
		} else {
			if !errors.Is(err, ErrInvalidAmount) {
				t.Fatalf("%q expected ErrInvalidAmount, got %v", tc.in, err)
			}
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	cases := []struct {
		in  float64
		out int64
	}{
		{0, 0},
		{12.34, 1234},
		{0.1 + 0.2, 30},
		{5, 500},
		{19.999, 2000},
	}
	for _, tc := range cases {
		if got := MoneyFromFloat(tc.in).Cents; got != tc.out {
			t.Errorf("MoneyFromFloat(%v) = %d, want %d", tc.in, got, tc.out)
		}
	}
}

func TestMoneyJSON(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
		C Money `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"a": 10.5, "b": "7,25", "c": null}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A.Cents != 1050 || payload.B.Cents != 725 || payload.C.Cents != 0 {
		t.Fatalf("unexpected decode: %+v", payload)
	}

	out, err := json.Marshal(Money{Cents: -100000})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "-1000.00" {
		t.Fatalf("expected -1000.00, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"a": "lots"}`), &payload); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for non-numeric amount, got %v", err)
	}
}

func TestMoneyJSONOutOfRange(t *testing.T) {
	cases := []string{
		`184467440737095516.17`,
		`"184467440737095516,17"`,
		`-92233720368547758.09`,
		`1e40`,
	}
	for _, in := range cases {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); !errors.Is(err, ErrInvalidAmount) {
			t.Errorf("Unmarshal(%s) = %d cents, err %v; want ErrInvalidAmount", in, m.Cents, err)
		}
	}

	var m Money
	if err := json.Unmarshal([]byte(`92233720368547758.07`), &m); err != nil || m.Cents != math.MaxInt64 {
		t.Errorf("largest amount = %d, err %v", m.Cents, err)
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := Money{Cents: 1000}
	b := Money{Cents: 250}
	if a.Add(b).Cents != 1250 || a.Sub(b).Cents != 750 {
		t.Fatalf("unexpected arithmetic results")
	}
	if b.Sub(a).Cents != -750 {
		t.Fatalf("expected negative result")
	}
	if a.String() != "10.00" {
		t.Fatalf("unexpected string %q", a.String())
	}
}
