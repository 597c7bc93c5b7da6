package validation

import (
	"strconv"
	"strings"
)

// NormalizeRUT strips dots, spaces and dashes and upper-cases the check digit,
// giving "12345678K" for "12.345.678-k".
func NormalizeRUT(rut string) string {
	r := strings.NewReplacer(".", "", "-", "", " ", "")
	return strings.ToUpper(r.Replace(rut))
}

// ValidateRUT verifies a Chilean RUT with the modulo 11 check digit.
func ValidateRUT(rut string) bool {
	n := NormalizeRUT(rut)
	if len(n) < 2 {
		return false
	}
	body, dv := n[:len(n)-1], n[len(n)-1:]
	if _, err := strconv.Atoi(body); err != nil {
		return false
	}
	return checkDigit(body) == dv
}

func checkDigit(body string) string {
	sum, factor := 0, 2
	for i := len(body) - 1; i >= 0; i-- {
		sum += int(body[i]-'0') * factor
		factor++
		if factor > 7 {
			factor = 2
		}
	}
	switch rest := 11 - sum%11; rest {
	case 11:
		return "0"
	case 10:
		return "K"
	default:
		return strconv.Itoa(rest)
	}
}
