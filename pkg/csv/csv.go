package csv

import (
	stdcsv "encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/qif"
)

// GnuCashDelimiter separates columns of the GnuCash import file.
const GnuCashDelimiter = '\t'

type FilterFunc[T any] func(T) bool

// Filter keeps the records accepted by filter. A nil filter keeps everything.
func Filter[T any](records []T, filter FilterFunc[T]) []T {
	if filter == nil {
		return records
	}
	out := make([]T, 0, len(records))
	for _, r := range records {
		if filter(r) {
			out = append(out, r)
		}
	}
	return out
}

// GnuCashRow is one line of the GnuCash transaction import. Exactly one of
// Increase and Decrease is set.
type GnuCashRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Account     string `csv:"account"`
	Increase    string `csv:"increase"`
	Decrease    string `csv:"decrease"`
}

func NewGnuCashRow(t models.LedgerTransaction) GnuCashRow {
	row := GnuCashRow{Date: t.Date, Description: t.Description, Account: t.Account}
	if t.Amount > 0 {
		row.Increase = qif.FormatAmount(t.Amount)
	} else {
		row.Decrease = qif.FormatAmount(-t.Amount)
	}
	return row
}

// WriteGnuCash writes txns as tab separated rows. The header line is only
// written when header is true; GnuCash maps columns by position.
func WriteGnuCash(w io.Writer, txns []models.LedgerTransaction, header bool) error {
	rows := make([]GnuCashRow, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, NewGnuCashRow(t))
	}

	cw := stdcsv.NewWriter(w)
	cw.Comma = GnuCashDelimiter
	out := gocsv.NewSafeCSVWriter(cw)

	var err error
	if header {
		err = gocsv.MarshalCSV(&rows, out)
	} else {
		err = gocsv.MarshalCSVWithoutHeaders(&rows, out)
	}
	if err != nil {
		return fmt.Errorf("failed to write gnucash csv: %w", err)
	}
	out.Flush()
	return out.Error()
}
