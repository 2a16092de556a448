// Package qif renders ledger transactions as a QIF bank import.
package qif

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/yurifrl/csv2qif/pkg/models"
)

// Render writes the account header for alias followed by one block per
// transaction. Blocks are separated by a single newline.
func Render(alias string, txns []models.LedgerTransaction) string {
	var b strings.Builder
	b.WriteString("!Account\nN")
	b.WriteString(alias)
	b.WriteString("\n^\n")
	for i, t := range txns {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeBlock(&b, t)
	}
	return b.String()
}

// Block renders a single transaction.
func Block(t models.LedgerTransaction) string {
	var b strings.Builder
	writeBlock(&b, t)
	return b.String()
}

// FormatAmount prints the shortest decimal that reads back as amount:
// -42.02, 100, 0.5.
func FormatAmount(amount float64) string {
	return decimal.NewFromFloat(amount).String()
}

func writeBlock(b *strings.Builder, t models.LedgerTransaction) {
	b.WriteString("!Type:Bank\nD")
	b.WriteString(t.Date)
	b.WriteString("\nT")
	b.WriteString(FormatAmount(t.Amount))
	b.WriteString("\nP")
	b.WriteString(t.Description)
	b.WriteString("\nL")
	b.WriteString(t.Account)
	b.WriteString("\n^")
}
