package main

import (
	"testing"

	"github.com/yurifrl/csv2qif/pkg/models"
)

func TestFilters(t *testing.T) {
	txn := models.LedgerTransaction{Date: "01.01.2020", Amount: -42.02, Description: "PayPal *Spotify", Account: "Expenses:Subscriptions"}

	tests := []struct {
		name string
		f    filters
		want bool
	}{
		{"min below", filters{minAmount: -10}, false},
		{"min above", filters{minAmount: -50}, true},
		{"max", filters{maxAmount: -50}, false},
		{"payee case insensitive", filters{payee: "spotify"}, true},
		{"payee miss", filters{payee: "netflix"}, false},
		{"account", filters{account: "Expenses:Subscriptions"}, true},
		{"account miss", filters{account: models.DefaultAccount}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.f.toFilterFunc()(txn); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}

	var none filters
	if none.toFilterFunc() != nil {
		t.Errorf("expected nil filter without flags")
	}
}
