package calculus

import "testing"

func TestIsConstantOrZero(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"0", true},
		{"0.", true},
		{"0.000", true},
		{"2", true},
		{"-3.5", true},
		{"42.", true},
		{"-0", true},
		{"2 * x", false},
		{"2 * x - 4", false},
		{"cos(x)", false},
		{"x", false},
		{"", false},
		{"-", false},
		{".5", false},
		{"1e+21", false},
		{"- 3", false},
		{"3 ", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := IsConstantOrZero(tt.text); got != tt.want {
				t.Errorf("IsConstantOrZero(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
