package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for length and line-height.

// Unit represents the original unit of a length value as written in a style.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers like factors
	UnitMM                  // millimeters
	UnitCM                  // centimeters
	UnitIN                  // inches
	UnitPT                  // points
	UnitPX                  // CSS pixels, 1px = 1/96in
	UnitEM                  // relative to the element font size
	UnitPercent             // relative to a reference length
)

// Conversion constants between pt, px and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96
	MmToPx = 96 / 25.4
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPX:
		return "px"
	case UnitEM:
		return "em"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Resolve converts the length to mm. em is resolved against fontSize (mm),
// percentages against reference (mm). Unit-less numbers are taken as px.
func (l Length) Resolve(fontSize, reference float64) float64 {
	switch l.Unit {
	case UnitEM:
		return l.Value * fontSize
	case UnitPercent:
		return l.Value * reference / 100
	case UnitNone:
		return l.Value * PxToMm
	default:
		return l.ToMM()
	}
}

// To converts this length to target unit. Supported targets: UnitMM, UnitPT.
// Relative units are returned as-is.
func (l Length) To(target Unit) float64 {
	var mm float64
	switch l.Unit {
	case UnitMM:
		mm = l.Value
	case UnitCM:
		mm = l.Value * 10
	case UnitIN:
		mm = l.Value * 25.4
	case UnitPT:
		mm = l.Value * PtToMm
	case UnitPX:
		mm = l.Value * PxToMm
	default:
		return l.Value
	}
	if target == UnitPT {
		return mm * MmToPt
	}
	return mm
}

func (l Length) ToMM() float64 { return l.To(UnitMM) }

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"px", UnitPX}, {"em", UnitEM}, {"%", UnitPercent}}

// ParseRawLengthStr parses a style length string preserving its unit.
// The second result is false when the value is not a length (auto, none, ...).
func ParseRawLengthStr(value string) (Length, bool) {
	lower := strings.ToLower(strings.TrimSpace(value))
	if lower == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := lower
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(lower, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(lower, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}

// LineHeightKind distinguishes factor-based vs absolute line-height specification.
type LineHeightKind int

const (
	LineHeightFactor LineHeightKind = iota
	LineHeightAbsolute
)

// LineHeightSpec preserves original author intent: either a factor (e.g., 1.4) or an absolute length (e.g., 18pt).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// ParseLineHeight 解析 line-height；normal 与无法识别的取值按 1.2 倍处理。
func ParseLineHeight(value string) LineHeightSpec {
	v := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(value)), "x")
	if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}
	}
	if l, ok := ParseRawLengthStr(value); ok && l.Value > 0 {
		if l.Unit == UnitPercent {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value / 100}
		}
		if l.Unit == UnitEM {
			return LineHeightSpec{Kind: LineHeightFactor, Factor: l.Value}
		}
		return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}
	}
	return LineHeightSpec{Kind: LineHeightFactor, Factor: 1.2}
}

// Resolve computes the absolute line height in mm for a font size given in mm.
func (s LineHeightSpec) Resolve(fontSize float64) float64 {
	switch s.Kind {
	case LineHeightAbsolute:
		return s.Len.ToMM()
	default:
		return fontSize * s.Factor
	}
}
