package models

// DefaultAccount is assigned when no category rule matches a description.
const DefaultAccount = "Imbalance-EUR"

// Row maps a normalized header name to the raw cell of a single CSV record.
type Row map[string]string

// Transaction is a bank row after amount, description and account resolution.
// Increase and Decrease are non-negative; at most one of them is nonzero.
type Transaction struct {
	Date        string
	Description string
	Account     string
	Increase    float64
	Decrease    float64
}

// LedgerTransaction is the signed form of a Transaction written to QIF.
type LedgerTransaction struct {
	Date        string  `json:"date"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Account     string  `json:"account"`
}

// Ledger converts t into its signed ledger representation.
func (t *Transaction) Ledger() LedgerTransaction {
	amount := -t.Decrease
	if t.Increase > 0 {
		amount = t.Increase
	}
	if amount == 0 {
		// avoid rendering "-0"
		amount = 0
	}
	return LedgerTransaction{
		Date:        t.Date,
		Amount:      amount,
		Description: t.Description,
		Account:     t.Account,
	}
}

// Payee is the description, named the way statement tooling usually does.
func (t LedgerTransaction) Payee() string {
	return t.Description
}

// IsImbalanced reports whether no category rule claimed the transaction.
func (t LedgerTransaction) IsImbalanced() bool {
	return t.Account == DefaultAccount
}
