package format

import "testing"

func TestCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{0, "$0.00"},
		{5, "$0.05"},
		{5000, "$50.00"},
		{123456, "$1,234.56"},
		{100000000, "$1,000,000.00"},
		{-2550, "-$25.50"},
	}
	for _, tc := range cases {
		if got := Cents(tc.cents); got != tc.want {
			t.Errorf("Cents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}

func TestDollars0(t *testing.T) {
	cases := []struct {
		dollars float64
		want    string
	}{
		{0, "$0"},
		{50, "$50"},
		{49.6, "$50"},
		{1234, "$1,234"},
		{-75, "-$75"},
	}
	for _, tc := range cases {
		if got := Dollars0(tc.dollars); got != tc.want {
			t.Errorf("Dollars0(%v) = %q, want %q", tc.dollars, got, tc.want)
		}
	}
}

func TestParseDollarsToCents(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"50", 5000},
		{"$12.50", 1250},
		{"12.5", 1250},
		{" $1,000 ", 100000},
		{"-25", -2500},
		{"abc", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := ParseDollarsToCents(tc.input); got != tc.want {
			t.Errorf("ParseDollarsToCents(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestLocalDate(t *testing.T) {
	if got := LocalDate(0); got != "" {
		t.Errorf("LocalDate(0) = %q, want empty", got)
	}
	if got := LocalDate(-5); got != "" {
		t.Errorf("LocalDate(-5) = %q, want empty", got)
	}
	if got := LocalDate(1700000000); got == "" {
		t.Error("LocalDate(1700000000) should not be empty")
	}
}
