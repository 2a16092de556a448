package executors

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/csv2qif/pkg/rules"
	"github.com/yurifrl/csv2qif/pkg/service"
)

// Executor runs the jobs of a plan, either as a preview (Plan) or for real
// (Apply).
type Executor struct {
	logger    *log.Logger
	processor *service.Processor
	rules     *rules.Set
	out       io.Writer
}

func New(logger *log.Logger, processor *service.Processor, rules *rules.Set, out io.Writer) *Executor {
	return &Executor{
		logger:    logger,
		processor: processor,
		rules:     rules,
		out:       out,
	}
}
