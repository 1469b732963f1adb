package metrics

import (
	"math"
	"testing"
)

func TestRiskRatio(t *testing.T) {
	cases := []struct {
		name     string
		exp, inc int64
		want     float64
	}{
		{"no income no expense", 0, 0, 0},
		{"no income with expense", 1, 0, 1.1},
		{"half", 500, 1000, 0.5},
		{"over", 1500, 1000, 1.5},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := RiskRatio(cents(tc.exp), cents(tc.inc)); math.Abs(got-tc.want) > 1e-12 {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
	if ClassifyRisk(RiskRatio(cents(1), cents(0))) != RiskDanger {
		t.Fatalf("spending without income must be danger")
	}
}

func TestClassifyRisk(t *testing.T) {
	cases := []struct {
		ratio float64
		want  RiskTier
	}{
		{0, RiskSafe},
		{0.74999, RiskSafe},
		{0.75, RiskWarning},
		{0.99, RiskWarning},
		{1.0, RiskDanger},
		{3, RiskDanger},
	}
	for _, tc := range cases {
		if got := ClassifyRisk(tc.ratio); got != tc.want {
			t.Errorf("ClassifyRisk(%v) = %s, want %s", tc.ratio, got, tc.want)
		}
	}
}

func TestRiskIntensity(t *testing.T) {
	cases := []struct {
		ratio   float64
		segment int
		t       float64
	}{
		{-1, 0, 0},
		{0, 0, 0},
		{0.375, 0, 0.5},
		{0.75, 1, 0},
		{0.875, 1, 0.5},
		{1, 1, 1},
		{5, 1, 1},
	}
	for _, tc := range cases {
		got := RiskIntensity(tc.ratio)
		if got.Segment != tc.segment || math.Abs(got.T-tc.t) > 1e-9 {
			t.Errorf("RiskIntensity(%v) = %+v, want segment=%d t=%v", tc.ratio, got, tc.segment, tc.t)
		}
	}
}

func TestRiskColor(t *testing.T) {
	p := Palette{
		Safe:    RGB{0, 0, 0},
		Warning: RGB{100, 100, 100},
		Danger:  RGB{200, 0, 0},
	}
	cases := []struct {
		ratio float64
		want  RGB
	}{
		{0, RGB{0, 0, 0}},
		{0.375, RGB{50, 50, 50}},
		{0.75, RGB{100, 100, 100}},
		{0.875, RGB{150, 50, 50}},
		{1.0, RGB{200, 0, 0}},
		{2.0, RGB{200, 0, 0}},
	}
	for _, tc := range cases {
		if got := RiskColor(tc.ratio, p); got != tc.want {
			t.Errorf("RiskColor(%v) = %+v, want %+v", tc.ratio, got, tc.want)
		}
	}
	if hex := (RGB{R: 0x10, G: 0xb9, B: 0x81}).Hex(); hex != "#10b981" {
		t.Fatalf("unexpected hex %s", hex)
	}
}

func TestAssessRisk(t *testing.T) {
	got := AssessRisk(Totals{Income: cents(1000), Expense: cents(800)})
	if got.Tier != RiskWarning || math.Abs(got.Ratio-0.8) > 1e-12 {
		t.Fatalf("unexpected assessment %+v", got)
	}
	if got.Color == "" {
		t.Fatalf("expected a color")
	}
}
