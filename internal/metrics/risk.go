package metrics

import (
	"fmt"
	"math"

	"fincontrol/internal/core"
)

// RiskTier is the discrete classification of the expense/income ratio.
type RiskTier string

const (
	RiskSafe    RiskTier = "safe"
	RiskWarning RiskTier = "warning"
	RiskDanger  RiskTier = "danger"
)

const (
	WarningThreshold = 0.75
	DangerThreshold  = 1.0

	// noIncomeRatio is reported when there is spending but no income.
	noIncomeRatio = 1.1
)

// RGB is a display color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Palette holds the endpoint colors of the risk gradient.
type Palette struct {
	Safe    RGB
	Warning RGB
	Danger  RGB
}

// DefaultPalette is emerald, amber and rose.
var DefaultPalette = Palette{
	Safe:    RGB{R: 0x10, G: 0xb9, B: 0x81},
	Warning: RGB{R: 0xf5, G: 0x9e, B: 0x0b},
	Danger:  RGB{R: 0xf4, G: 0x3f, B: 0x5e},
}

// Intensity locates a ratio on the two-segment gradient. Segment 0 runs from
// the safe color to the warning color over [0, 0.75]; segment 1 runs from the
// warning color to the danger color over [0.75, 1.0]. T is in [0, 1].
type Intensity struct {
	Segment int     `json:"segment"`
	T       float64 `json:"t"`
}

// RiskAssessment bundles ratio, tier and display color.
type RiskAssessment struct {
	Ratio     float64   `json:"ratio"`
	Tier      RiskTier  `json:"tier"`
	Intensity Intensity `json:"intensity"`
	Color     string    `json:"color"`
}

// RiskRatio is expense divided by income. Without income the ratio is 1.1
// when anything was spent and 0 otherwise.
func RiskRatio(expense, income core.Money) float64 {
	if income.Cents <= 0 {
		if expense.Cents > 0 {
			return noIncomeRatio
		}
		return 0
	}
	return float64(expense.Cents) / float64(income.Cents)
}

// ClassifyRisk maps a ratio to its tier.
func ClassifyRisk(ratio float64) RiskTier {
	switch {
	case ratio < WarningThreshold:
		return RiskSafe
	case ratio < DangerThreshold:
		return RiskWarning
	default:
		return RiskDanger
	}
}

// RiskIntensity places ratio on the gradient, clamping below 0 and above 1.0.
func RiskIntensity(ratio float64) Intensity {
	switch {
	case math.IsNaN(ratio) || ratio <= 0:
		return Intensity{Segment: 0, T: 0}
	case ratio < WarningThreshold:
		return Intensity{Segment: 0, T: ratio / WarningThreshold}
	case ratio >= DangerThreshold:
		return Intensity{Segment: 1, T: 1}
	default:
		return Intensity{Segment: 1, T: (ratio - WarningThreshold) / (DangerThreshold - WarningThreshold)}
	}
}

// RiskColor interpolates the palette at ratio.
func RiskColor(ratio float64, p Palette) RGB {
	in := RiskIntensity(ratio)
	if in.Segment == 0 {
		return lerpRGB(p.Safe, p.Warning, in.T)
	}
	return lerpRGB(p.Warning, p.Danger, in.T)
}

// AssessRisk classifies the totals with the default palette.
func AssessRisk(t Totals) RiskAssessment {
	ratio := RiskRatio(t.Expense, t.Income)
	return RiskAssessment{
		Ratio:     ratio,
		Tier:      ClassifyRisk(ratio),
		Intensity: RiskIntensity(ratio),
		Color:     RiskColor(ratio, DefaultPalette).Hex(),
	}
}

func lerpRGB(a, b RGB, t float64) RGB {
	return RGB{
		R: lerp8(a.R, b.R, t),
		G: lerp8(a.G, b.G, t),
		B: lerp8(a.B, b.B, t),
	}
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}
