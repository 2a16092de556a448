package executors

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"

	"github.com/yurifrl/csv2qif/pkg/plan"
	"github.com/yurifrl/csv2qif/pkg/service"
)

// Change summarises what applying a job would write.
type Change struct {
	Job          plan.Job
	Transactions int
	Imbalanced   int
	Duplicates   int
	// Replaces is true when the output file already exists.
	Replaces bool
}

// Plan converts every job in memory and prints a preview. Nothing is written.
func (e *Executor) Plan(p *plan.Plan) ([]Change, error) {
	e.logger.Debug("planning", "jobs", len(p.Jobs))

	newStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))     // green
	replaceStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))     // red

	changes := make([]Change, 0, len(p.Jobs))
	for _, job := range p.Jobs {
		res, err := e.processor.Collect(service.PathInput(job.Input), job.Format, job.Account)
		if err != nil {
			return nil, fmt.Errorf("job %s: %w", job.Input, err)
		}

		c := Change{Job: job, Transactions: len(res.Transactions), Duplicates: res.Duplicates}
		for _, t := range res.Transactions {
			if t.IsImbalanced() {
				c.Imbalanced++
			}
		}
		if _, err := os.Stat(job.Output); err == nil {
			c.Replaces = true
		}
		changes = append(changes, c)

		prefix, style := "+", newStyle
		if c.Replaces {
			prefix, style = "~", replaceStyle
		}
		line := fmt.Sprintf("%s %s -> %s | %d transaction(s) | %d imbalanced", prefix, job.Input, job.Output, c.Transactions, c.Imbalanced)
		if c.Duplicates > 0 {
			line += fmt.Sprintf(" | %d duplicate(s) dropped", c.Duplicates)
		}
		fmt.Fprintln(e.out, style.Render(line))
		if c.Imbalanced > 0 {
			fmt.Fprintln(e.out, warnStyle.Render(fmt.Sprintf("  %d transaction(s) have no matching category", c.Imbalanced)))
		}
	}

	fmt.Fprintf(e.out, "\nPlan: %d file(s) will be written\n", len(changes))
	return changes, nil
}
