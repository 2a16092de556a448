package parser

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"12,345.67", 12345.67},
		{"12 345.67", 12345.67},
		{"12345.67", 12345.67},
		{"12.345,67", 12345.67},
		{"12 345,67", 12345.67},
		{"12345,67", 12345.67},
		{"12,345.6", 12345.6},
		{"12.345,6", 12345.6},
		{"12 345", 12345},
		{"12345", 12345},
		{"12,345", 12.345},
		{"12.345", 12.345},
		{"-12,345.67", -12345.67},
		{"-12.345,67", -12345.67},
		{"-12 345", -12345},
		{"-42,02", -42.02},
		{"€ 1.234,56", 1234.56},
		{"+5,00 EUR", 5},
	}

	for _, tt := range tests {
		got, err := ParseAmount(tt.raw)
		if err != nil {
			t.Errorf("ParseAmount(%q) failed: %v", tt.raw, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseAmount(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestParseAmountUnparseable(t *testing.T) {
	for _, raw := range []string{"", "EUR", "--5", "1.234.567,89"} {
		_, err := ParseAmount(raw)
		if !errors.Is(err, ErrUnparseable) {
			t.Errorf("ParseAmount(%q): expected ErrUnparseable, got %v", raw, err)
		}
	}
}
