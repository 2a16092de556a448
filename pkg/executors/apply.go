package executors

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yurifrl/csv2qif/pkg/csv"
	"github.com/yurifrl/csv2qif/pkg/plan"
	"github.com/yurifrl/csv2qif/pkg/service"
)

// Apply converts every job and writes its output file. It stops at the first
// job that fails.
func (e *Executor) Apply(p *plan.Plan) error {
	e.logger.Debug("applying plan", "jobs", len(p.Jobs))

	for _, job := range p.Jobs {
		res, err := e.processor.Collect(service.PathInput(job.Input), job.Format, job.Account)
		if err != nil {
			return fmt.Errorf("job %s: %w", job.Input, err)
		}

		if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
			return fmt.Errorf("error creating output directory: %w", err)
		}
		f, err := os.Create(job.Output)
		if err != nil {
			return fmt.Errorf("error creating output file: %w", err)
		}
		werr := Write(f, res, job.OutputFormat)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("error writing output file: %w", werr)
		}

		e.logger.Info("wrote output", "input", job.Input, "output", job.Output, "transactions", len(res.Transactions))
	}
	return nil
}

// Write renders res in the given output format.
func Write(w io.Writer, res *service.Result, outputFormat string) error {
	switch outputFormat {
	case plan.OutputGnuCash:
		return csv.WriteGnuCash(w, res.Transactions, false)
	case plan.OutputQIF, "":
		_, err := io.WriteString(w, res.QIF())
		return err
	default:
		return fmt.Errorf("unknown output format %q", outputFormat)
	}
}
