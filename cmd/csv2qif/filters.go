package main

import (
	"strings"

	"github.com/yurifrl/csv2qif/pkg/csv"
	"github.com/yurifrl/csv2qif/pkg/models"
)

type filters struct {
	minAmount float64
	maxAmount float64
	payee     string
	account   string
}

func (f *filters) empty() bool {
	return f.minAmount == 0 && f.maxAmount == 0 && f.payee == "" && f.account == ""
}

// toFilterFunc returns nil when no filter flag is set.
func (f *filters) toFilterFunc() csv.FilterFunc[models.LedgerTransaction] {
	if f.empty() {
		return nil
	}
	return func(t models.LedgerTransaction) bool {
		if f.minAmount != 0 && t.Amount < f.minAmount {
			return false
		}
		if f.maxAmount != 0 && t.Amount > f.maxAmount {
			return false
		}
		if f.payee != "" && !strings.Contains(strings.ToLower(t.Payee()), strings.ToLower(f.payee)) {
			return false
		}
		if f.account != "" && t.Account != f.account {
			return false
		}
		return true
	}
}
