package netlist

import (
	"math"
	"strconv"
	"testing"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 4700, want: "4.7e+3"},
		{in: 1e-12, want: "1e-12"},
		{in: 0, want: "0e+0"},
		{in: 1, want: "1e+0"},
		{in: 10, want: "1e+1"},
		{in: 0.5, want: "5e-1"},
		{in: -220, want: "-2.2e+2"},
		{in: 1.5e300, want: "1.5e+300"},
		{in: 12345.678, want: "1.2345678e+4"},
		{in: 1e-6, want: "1e-6"},
		{in: 0.1, want: "1e-1"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatValue_RoundTrips(t *testing.T) {
	tenth, fifth := 0.1, 0.2
	values := []float64{
		4700, 1e-12, 3.3e-9, tenth + fifth, math.Pi, math.E, 1.0 / 3.0,
		math.SmallestNonzeroFloat64, -math.Pi, 123456789012345,
	}

	for _, v := range values {
		s := FormatValue(v)
		back, err := strconv.ParseFloat(s, 64)
		if err != nil {
			t.Fatalf("ParseFloat(%q) error = %v", s, err)
		}
		// Values needing more than 15 digits fall back to 15 and may not
		// round-trip exactly.
		if back != v && significantDigits(s) != maxDigits {
			t.Errorf("FormatValue(%v) = %q parses to %v", v, s, back)
		}
	}
}

func TestFormatValue_Fallback(t *testing.T) {
	// 0.1+0.2 evaluated in float64 has no exact form within 15 significant digits.
	tenth, fifth := 0.1, 0.2
	if got, want := FormatValue(tenth+fifth), "3.00000000000000e-1"; got != want {
		t.Errorf("FormatValue(0.1+0.2) = %q, want %q", got, want)
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue("")
	if err != nil || v != nil {
		t.Errorf("ParseValue(\"\") = %v, %v; want nil, nil", v, err)
	}

	v, err = ParseValue(" 4.7e+3 ")
	if err != nil || v == nil || *v != 4700 {
		t.Errorf("ParseValue(4.7e+3) = %v, %v", v, err)
	}

	if _, err := ParseValue("4k7"); err == nil {
		t.Error("ParseValue(4k7) error = nil")
	}
}

func significantDigits(s string) int {
	n := 0
	for _, r := range s {
		if r == 'e' {
			break
		}
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
