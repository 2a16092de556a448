package compare

import (
	"github.com/shopspring/decimal"

	"github.com/yurifrl/csv2qif/pkg/models"
)

// Equal compares two ledger transactions on the fields a bank export keeps
// stable between downloads: date, payee and amount. Amounts are compared at
// two decimal places so float noise does not split identical rows. The
// target account is ignored; reclassifying a row does not make it new.
func Equal(a, b models.LedgerTransaction) bool {
	if a.Date != b.Date {
		return false
	}
	if a.Payee() != b.Payee() {
		return false
	}
	return cents(a.Amount).Equal(cents(b.Amount))
}

// Key returns a string that is equal for two transactions exactly when Equal
// reports true.
func Key(t models.LedgerTransaction) string {
	return t.Date + "\x00" + t.Payee() + "\x00" + cents(t.Amount).StringFixed(2)
}

func cents(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(2)
}
