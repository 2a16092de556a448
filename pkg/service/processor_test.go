package service

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/parser"
)

const testConfig = `{
  "formats": [
    {"name": "Bank A", "delimiter": [";", ","], "description": ["details", "beneficiary_payer"], "date": ["date"]}
  ],
  "qif_aliases": {"bank_a": "Assets:Current Assets:Bank A"},
  "skip_descriptions": [],
  "mappings": {}
}`

const bankARow = `Client account";"Row type";"Date";"Beneficiary/Payer";"Details";"Amount";"Currency";"Debit/Credit";"Transfer reference";"Transaction type";"Reference number";"Document number";
"GB75GZUL15871484185839";"20";"29.12.2015";"ABD";"American whole magazine truth stop whose";"42,02";"EUR";"D";"GB75GZUL15871484185839";"MK";"GB75GZUL15871484185839";"1758";`

func newProcessor(t *testing.T, opts Options) *Processor {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)
	return NewProcessor(cfg, log.New(io.Discard), opts)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestConvertString(t *testing.T) {
	p := newProcessor(t, Options{})

	want := `!Account
NAssets:Current Assets:Bank A
^
!Type:Bank
D29.12.2015
T-42.02
PAmerican whole magazine truth stop whose ABD
LImbalance-EUR
^`
	got, err := p.Convert(StringInput(bankARow), "Bank A", "bank_a")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestConvertUnknownNames(t *testing.T) {
	p := newProcessor(t, Options{})

	_, err := p.Convert(StringInput(bankARow), "Bank Z", "bank_a")
	assert.True(t, errors.Is(err, config.ErrUnknownFormat))

	_, err = p.Convert(StringInput(bankARow), "Bank A", "nope")
	assert.True(t, errors.Is(err, config.ErrUnknownAlias))

	_, err = p.ConvertFiles(nil, "Bank A", "nope")
	assert.True(t, errors.Is(err, config.ErrUnknownAlias))
}

func TestConvertStringMalformedIsFatal(t *testing.T) {
	p := newProcessor(t, Options{})

	_, err := p.Convert(StringInput("date;amount\n1;2;3\n"), "Bank A", "bank_a")
	var parseErr *parser.ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestConvertEmptyInputs(t *testing.T) {
	p := newProcessor(t, Options{})

	for _, in := range []string{"", "date;amount\n", "just one column\n"} {
		got, err := p.Convert(StringInput(in), "Bank A", "bank_a")
		require.NoError(t, err)
		assert.Equal(t, "!Account\nNAssets:Current Assets:Bank A\n^\n", got)
	}
}

func TestResolveInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "")
	writeFile(t, filepath.Join(dir, "nested", "a.csv"), "")
	writeFile(t, filepath.Join(dir, "upper.CSV"), "")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")

	files, err := ResolveInputs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.csv"),
		filepath.Join(dir, "nested", "a.csv"),
	}, files)

	single := filepath.Join(dir, "notes.txt")
	files, err = ResolveInputs(single)
	require.NoError(t, err)
	assert.Equal(t, []string{single}, files)
}

func TestFromFilesSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.csv"), bankARow)
	writeFile(t, filepath.Join(dir, "2.csv"), "date;amount\n1;2;3\n")
	writeFile(t, filepath.Join(dir, "3.csv"), "date;details;amount\n01.01.2016;Coffee;-3,50\n01.01.2016;Tea;-2\n")

	p := newProcessor(t, Options{Workers: 4})
	res, err := p.Collect(PathInput(dir), "Bank A", "bank_a")
	require.NoError(t, err)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, "American whole magazine truth stop whose ABD", res.Transactions[0].Description)
	assert.Equal(t, "Coffee", res.Transactions[1].Description)
	assert.Equal(t, "Tea", res.Transactions[2].Description)
	assert.Equal(t, -3.5, res.Transactions[1].Amount)

	files := []string{filepath.Join(dir, "3.csv"), filepath.Join(dir, "missing.csv"), filepath.Join(dir, "1.csv")}
	txns := p.FromFiles(files, &p.cfg.Formats[0], "Assets:Current Assets:Bank A")
	require.Len(t, txns, 3)
	assert.Equal(t, "Coffee", txns[0].Description)
	assert.Equal(t, "29.12.2015", txns[2].Date)
}

func TestCollectDedupeAndFilter(t *testing.T) {
	dir := t.TempDir()
	content := "date;details;amount\n01.01.2016;Coffee;-3,50\n02.01.2016;Salary;100\n"
	writeFile(t, filepath.Join(dir, "jan.csv"), content)
	writeFile(t, filepath.Join(dir, "jan-again.csv"), content)

	p := newProcessor(t, Options{Workers: 2})
	res, err := p.Collect(PathInput(dir), "Bank A", "bank_a")
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 4)

	p = newProcessor(t, Options{Workers: 2, Dedupe: true})
	res, err = p.Collect(PathInput(dir), "Bank A", "bank_a")
	require.NoError(t, err)
	assert.Len(t, res.Transactions, 2)
	assert.Equal(t, 2, res.Duplicates)

	p = newProcessor(t, Options{Filter: func(t models.LedgerTransaction) bool { return t.Amount < 0 }})
	res, err = p.Collect(PathInput(filepath.Join(dir, "jan.csv")), "Bank A", "bank_a")
	require.NoError(t, err)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Coffee", res.Transactions[0].Description)
}
