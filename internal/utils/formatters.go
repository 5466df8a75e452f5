package utils

import (
	"fmt"
	"strings"
)

// FormatBRL renders a price the way the storefront shows it, with a dot as
// thousands separator and a comma before the cents (pt-BR convention).
func FormatBRL(value float64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	// Round once on the total cents so .995 and up carries into the whole
	// part instead of printing as a three-digit cent field.
	total := int64(value*100 + 0.5)
	whole, cents := total/100, total%100

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	formatted := fmt.Sprintf("R$ %s,%02d", strings.Join(groups, "."), cents)
	if negative {
		return "-" + formatted
	}
	return formatted
}
