package netlist

import (
	"strconv"
	"strings"
)

// maxDigits is the significant digit count that represents every float64
// closely enough for the fallback.
const maxDigits = 15

// FormatValue renders v in scientific notation with the fewest significant
// digits that parse back to exactly v, for example 4700 as "4.7e+3" and
// 1e-12 as "1e-12". Values that need more than 15 digits are written with 15.
func FormatValue(v float64) string {
	for d := 1; d <= maxDigits; d++ {
		s := strconv.FormatFloat(v, 'e', d-1, 64)
		if back, err := strconv.ParseFloat(s, 64); err == nil && back == v {
			return trimExponent(s)
		}
	}
	return trimExponent(strconv.FormatFloat(v, 'e', maxDigits-1, 64))
}

// ParseValue parses a value field. An empty field is undefined.
func ParseValue(field string) (*float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// trimExponent drops leading zeros from the exponent: "4.7e+03" becomes
// "4.7e+3".
func trimExponent(s string) string {
	i := strings.IndexByte(s, 'e')
	if i < 0 || i+2 > len(s) {
		return s
	}
	mantissa, sign, digits := s[:i], s[i+1], s[i+2:]
	digits = strings.TrimLeft(digits, "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + string(sign) + digits
}
