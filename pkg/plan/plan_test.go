package plan

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writePlan(t, `
config: rules.yaml
jobs:
  - input: statements/2016
    output: out/bank_a.qif
    format: Bank A
    account: bank_a
  - input: /abs/b.csv
    output: out/b.tsv
    format: Bank B
    account: bank_b
    output_format: gnucash
`)
	dir := filepath.Dir(path)

	p, err := Load(path)
	require.NoError(t, err)
	require.Len(t, p.Jobs, 2)

	assert.Equal(t, filepath.Join(dir, "rules.yaml"), p.Config)
	assert.Equal(t, filepath.Join(dir, "statements/2016"), p.Jobs[0].Input)
	assert.Equal(t, OutputQIF, p.Jobs[0].OutputFormat)
	assert.Equal(t, "/abs/b.csv", p.Jobs[1].Input)
	assert.Equal(t, OutputGnuCash, p.Jobs[1].OutputFormat)

	var buf bytes.Buffer
	p.Print(&buf)
	assert.Contains(t, buf.String(), "[2] input=/abs/b.csv format=Bank B")
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"no jobs":        "jobs: []\n",
		"missing output": "jobs:\n  - input: a.csv\n    format: A\n    account: a\n",
		"bad output":     "jobs:\n  - input: a.csv\n    output: a.x\n    format: A\n    account: a\n    output_format: xml\n",
		"bad yaml":       "jobs: [\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writePlan(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
