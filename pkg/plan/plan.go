package plan

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	OutputQIF     = "qif"
	OutputGnuCash = "gnucash"
)

// Plan is a batch of conversions kept in a YAML file next to the statements.
type Plan struct {
	// Config overrides the rules document for every job.
	Config string `yaml:"config"`
	Jobs   []Job  `yaml:"jobs"`
}

type Job struct {
	Input        string `yaml:"input"`
	Output       string `yaml:"output"`
	Format       string `yaml:"format"`
	Account      string `yaml:"account"`
	OutputFormat string `yaml:"output_format"`
}

// Load reads a plan. Relative paths are resolved against the plan's directory.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}

	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if len(p.Jobs) == 0 {
		return nil, fmt.Errorf("plan has no jobs")
	}

	base := filepath.Dir(path)
	p.Config = resolve(base, p.Config)
	for i := range p.Jobs {
		j := &p.Jobs[i]
		if j.Input == "" || j.Output == "" || j.Format == "" || j.Account == "" {
			return nil, fmt.Errorf("job %d: input, output, format and account are required", i+1)
		}
		if j.OutputFormat == "" {
			j.OutputFormat = OutputQIF
		}
		if j.OutputFormat != OutputQIF && j.OutputFormat != OutputGnuCash {
			return nil, fmt.Errorf("job %d: unknown output_format %q", i+1, j.OutputFormat)
		}
		j.Input = resolve(base, j.Input)
		j.Output = resolve(base, j.Output)
	}
	return &p, nil
}

func (p *Plan) Print(w io.Writer) {
	if p.Config != "" {
		fmt.Fprintf(w, "Rules: %s\n", p.Config)
	}
	for i, j := range p.Jobs {
		fmt.Fprintf(w, "[%d] input=%s format=%s account=%s -> %s (%s)\n", i+1, j.Input, j.Format, j.Account, j.Output, j.OutputFormat)
	}
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
