package executors

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/plan"
	"github.com/yurifrl/csv2qif/pkg/service"
)

const testConfig = `
formats:
  - name: Bank A
    delimiter: [";"]
    description: [details]
    date: [date]
qif_aliases:
  bank_a: "Assets:Bank A"
skip_descriptions: []
mappings:
  Expenses:Online: [PAYPAL]
  Expenses:Subscriptions: [Spotify]
`

const statement = `date;details;amount
01.01.2016;PAY PAL Europe;-10
02.01.2016;PAY PAL Europe;-12
03.01.2016;Bakery;-3
04.01.2016;Spotify AB;-9,99
`

func setup(t *testing.T) (*Executor, *config.Config, string, *bytes.Buffer) {
	t.Helper()
	cfg, err := config.Parse([]byte(testConfig))
	require.NoError(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "jan.csv"), []byte(statement), 0644))

	logger := log.New(io.Discard)
	var out bytes.Buffer
	exec := New(logger, service.NewProcessor(cfg, logger, service.Options{Workers: 2}), cfg.Rules, &out)
	return exec, cfg, dir, &out
}

func TestBuildReport(t *testing.T) {
	_, cfg, dir, _ := setup(t)
	proc := service.NewProcessor(cfg, log.New(io.Discard), service.Options{})
	res, err := proc.Collect(service.PathInput(dir), "Bank A", "bank_a")
	require.NoError(t, err)

	r := BuildReport(res, cfg.Rules, 10)
	assert.Equal(t, "Assets:Bank A", r.Alias)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 3, r.Imbalanced)

	require.Len(t, r.Accounts, 2)
	assert.Equal(t, AccountSummary{Account: models.DefaultAccount, Count: 3, Sum: -25}, r.Accounts[0])
	assert.Equal(t, AccountSummary{Account: "Expenses:Subscriptions", Count: 1, Sum: -9.99}, r.Accounts[1])

	require.Len(t, r.TopImbalanced, 2)
	assert.Equal(t, Suggestion{Description: "PAY PAL Europe", Count: 2, Category: "Expenses:Online", Rule: "PAYPAL"}, r.TopImbalanced[0])
	assert.Equal(t, Suggestion{Description: "Bakery", Count: 1}, r.TopImbalanced[1])

	assert.Len(t, BuildReport(res, nil, 1).TopImbalanced, 1)

	var buf bytes.Buffer
	r.Print(&buf)
	assert.Contains(t, buf.String(), "PAY PAL Europe")
	assert.Contains(t, buf.String(), "maybe Expenses:Online")
}

func TestPlanAndApply(t *testing.T) {
	exec, _, dir, out := setup(t)

	p := &plan.Plan{Jobs: []plan.Job{
		{Input: dir, Output: filepath.Join(dir, "out", "bank_a.qif"), Format: "Bank A", Account: "bank_a", OutputFormat: plan.OutputQIF},
		{Input: filepath.Join(dir, "jan.csv"), Output: filepath.Join(dir, "out", "bank_a.tsv"), Format: "Bank A", Account: "bank_a", OutputFormat: plan.OutputGnuCash},
	}}

	changes, err := exec.Plan(p)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, 4, changes[0].Transactions)
	assert.Equal(t, 3, changes[0].Imbalanced)
	assert.False(t, changes[0].Replaces)
	assert.Contains(t, out.String(), "2 file(s) will be written")
	assert.NoFileExists(t, filepath.Join(dir, "out", "bank_a.qif"))

	require.NoError(t, exec.Apply(p))

	qifData, err := os.ReadFile(filepath.Join(dir, "out", "bank_a.qif"))
	require.NoError(t, err)
	assert.Contains(t, string(qifData), "!Account\nNAssets:Bank A\n^\n!Type:Bank\nD01.01.2016\nT-10\n")

	tsv, err := os.ReadFile(filepath.Join(dir, "out", "bank_a.tsv"))
	require.NoError(t, err)
	assert.Contains(t, string(tsv), "04.01.2016\tSpotify AB\tExpenses:Subscriptions\t\t9.99\n")

	changes, err = exec.Plan(p)
	require.NoError(t, err)
	assert.True(t, changes[0].Replaces)
}

func TestPlanUnknownFormat(t *testing.T) {
	exec, _, dir, _ := setup(t)

	_, err := exec.Plan(&plan.Plan{Jobs: []plan.Job{{Input: dir, Output: "x", Format: "nope", Account: "bank_a"}}})
	assert.ErrorIs(t, err, config.ErrUnknownFormat)
}

func TestWriteUnknownFormat(t *testing.T) {
	assert.Error(t, Write(io.Discard, &service.Result{}, "xml"))
}
