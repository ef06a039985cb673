package calculus

import "regexp"

var (
	numeralPattern = regexp.MustCompile(`^-?\d+(\.\d*)?$`)
	zeroPattern    = regexp.MustCompile(`^0(\.0*)?$`)
)

// IsConstantOrZero reports whether a rendered derivative is a bare numeral,
// meaning the function has no critical points worth searching for.
func IsConstantOrZero(derivative string) bool {
	return numeralPattern.MatchString(derivative) || zeroPattern.MatchString(derivative)
}
