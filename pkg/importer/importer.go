package importer

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/parser"
)

const (
	amountColumn      = "amount"
	debitCreditColumn = "debit_credit"
	currencyColumn    = "currency"

	// credit marker of the debit_credit column
	creditMarker = "K"
)

// Importer turns parsed rows into classified transactions. It holds no
// mutable state and can be shared by workers.
type Importer struct {
	cfg        *config.Config
	normalizer *parser.Normalizer
	logger     *log.Logger
}

// New returns a new Importer instance.
func New(cfg *config.Config, normalizer *parser.Normalizer, logger *log.Logger) *Importer {
	return &Importer{cfg: cfg, normalizer: normalizer, logger: logger}
}

// Build derives a transaction from row. It returns false when the row is
// dropped by a skip rule or a skipped currency.
func (i *Importer) Build(format *models.Format, row models.Row, accountFrom string) (*models.Transaction, bool) {
	if cur, ok := row[currencyColumn]; ok && i.cfg.SkipsCurrency(cur) {
		i.logger.Debug("skipping currency", "currency", cur)
		return nil, false
	}

	t := &models.Transaction{
		Date:        firstPresent(row, format.Date),
		Description: i.description(format, row),
	}

	var amount float64
	if raw, ok := row[amountColumn]; ok {
		parsed, err := parser.ParseAmount(raw)
		if err != nil {
			i.logger.Debug("treating amount as zero", "error", err)
		}
		amount = parsed
	}

	if marker, ok := row[debitCreditColumn]; ok {
		if marker == creditMarker {
			t.Increase = amount
		} else {
			t.Decrease = math.Abs(amount)
		}
	} else if amount >= 0 {
		t.Increase = amount
	} else {
		t.Decrease = -amount
	}

	t.Account = i.cfg.Rules.Classify(t.Description)

	if i.cfg.Rules.ShouldSkip(t.Description) {
		i.logger.Debug("skipping transaction", "description", t.Description)
		return nil, false
	}

	if t.Account == accountFrom {
		i.logger.Warn("found transaction with same account", "account", t.Account, "date", t.Date, "description", t.Description)
	}
	return t, true
}

// BuildAll runs Build over rows and keeps the accepted transactions in order.
func (i *Importer) BuildAll(format *models.Format, rows []models.Row, accountFrom string) []*models.Transaction {
	out := make([]*models.Transaction, 0, len(rows))
	for _, row := range rows {
		if t, ok := i.Build(format, row, accountFrom); ok {
			out = append(out, t)
		}
	}
	return out
}

func (i *Importer) description(format *models.Format, row models.Row) string {
	fields := make([]string, 0, len(format.Description))
	for _, name := range format.Description {
		if v, ok := row[name]; ok {
			fields = append(fields, v)
		}
	}
	return i.normalizer.Description(fields)
}

func firstPresent(row models.Row, names []string) string {
	for _, name := range names {
		if v, ok := row[name]; ok {
			return v
		}
	}
	return ""
}
