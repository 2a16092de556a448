package service

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/iter"

	"github.com/yurifrl/csv2qif/pkg/config"
	"github.com/yurifrl/csv2qif/pkg/csv"
	"github.com/yurifrl/csv2qif/pkg/importer"
	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/parser"
	"github.com/yurifrl/csv2qif/pkg/qif"
	"github.com/yurifrl/csv2qif/pkg/reconcile"
)

// Input is either raw CSV text or a path to a file or directory.
type Input interface {
	input()
}

type StringInput string

type PathInput string

func (StringInput) input() {}
func (PathInput) input()   {}

// Options tune a Processor. The zero value runs one worker with no
// deduplication or filtering.
type Options struct {
	Workers int
	Dedupe  bool
	Filter  csv.FilterFunc[models.LedgerTransaction]
}

type Processor struct {
	cfg      *config.Config
	parser   *parser.Parser
	importer *importer.Importer
	logger   *log.Logger
	opts     Options
}

func NewProcessor(cfg *config.Config, logger *log.Logger, opts Options) *Processor {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	p := parser.New(logger)
	return &Processor{
		cfg:      cfg,
		parser:   p,
		importer: importer.New(cfg, p.Normalizer(), logger),
		logger:   logger,
		opts:     opts,
	}
}

// Result is a finished conversion before rendering.
type Result struct {
	Alias        string
	Transactions []models.LedgerTransaction
	Duplicates   int
}

// QIF renders the result as a QIF document.
func (r *Result) QIF() string {
	return qif.Render(r.Alias, r.Transactions)
}

// ResolveInputs expands path into the files to read. A directory yields every
// file below it whose name ends in ".csv", sorted; anything else is returned
// as is.
func ResolveInputs(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".csv") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading directory: %w", err)
	}
	sort.Strings(files)
	return files, nil
}

// ParseBytes converts one CSV document. A malformed document is an error.
func (p *Processor) ParseBytes(format *models.Format, data []byte, accountFrom string) ([]models.LedgerTransaction, error) {
	rows, err := p.parser.Resolve(format, data)
	if err != nil {
		return nil, err
	}
	txns := p.importer.BuildAll(format, rows, accountFrom)
	out := make([]models.LedgerTransaction, len(txns))
	for i, t := range txns {
		out[i] = t.Ledger()
	}
	return out, nil
}

// FromFiles converts files on the worker pool and concatenates the results in
// file order. A file that cannot be read or parsed contributes nothing.
func (p *Processor) FromFiles(files []string, format *models.Format, accountFrom string) []models.LedgerTransaction {
	mapper := iter.Mapper[string, []models.LedgerTransaction]{MaxGoroutines: p.opts.Workers}
	perFile := mapper.Map(files, func(file *string) []models.LedgerTransaction {
		txns, err := p.processFile(*file, format, accountFrom)
		if err != nil {
			p.logger.Warn("failed to parse file", "file", *file, "error", err)
			return nil
		}
		p.logger.Debug("processed file", "file", *file, "transactions", len(txns))
		return txns
	})

	var out []models.LedgerTransaction
	for _, txns := range perFile {
		out = append(out, txns...)
	}
	return out
}

func (p *Processor) processFile(file string, format *models.Format, accountFrom string) ([]models.LedgerTransaction, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.ParseBytes(format, data, accountFrom)
}

// Transactions converts input without post-processing.
func (p *Processor) Transactions(input Input, format *models.Format, accountFrom string) ([]models.LedgerTransaction, error) {
	switch in := input.(type) {
	case StringInput:
		return p.ParseBytes(format, []byte(in), accountFrom)
	case PathInput:
		files, err := ResolveInputs(string(in))
		if err != nil {
			return nil, err
		}
		return p.FromFiles(files, format, accountFrom), nil
	default:
		return nil, fmt.Errorf("unsupported input %T", input)
	}
}

// Collect looks up the format and alias, converts input and applies the
// configured deduplication and filter.
func (p *Processor) Collect(input Input, formatName, accountKey string) (*Result, error) {
	format, alias, err := p.lookup(formatName, accountKey)
	if err != nil {
		return nil, err
	}
	txns, err := p.Transactions(input, format, alias)
	if err != nil {
		return nil, err
	}
	return p.finish(alias, txns), nil
}

// CollectFiles is Collect for an explicit file list.
func (p *Processor) CollectFiles(files []string, formatName, accountKey string) (*Result, error) {
	format, alias, err := p.lookup(formatName, accountKey)
	if err != nil {
		return nil, err
	}
	return p.finish(alias, p.FromFiles(files, format, alias)), nil
}

// Convert returns the QIF document for input.
func (p *Processor) Convert(input Input, formatName, accountKey string) (string, error) {
	res, err := p.Collect(input, formatName, accountKey)
	if err != nil {
		return "", err
	}
	return res.QIF(), nil
}

// ConvertFiles returns the QIF document for files.
func (p *Processor) ConvertFiles(files []string, formatName, accountKey string) (string, error) {
	res, err := p.CollectFiles(files, formatName, accountKey)
	if err != nil {
		return "", err
	}
	return res.QIF(), nil
}

func (p *Processor) lookup(formatName, accountKey string) (*models.Format, string, error) {
	format, err := p.cfg.Format(formatName)
	if err != nil {
		return nil, "", err
	}
	alias, err := p.cfg.Alias(accountKey)
	if err != nil {
		return nil, "", err
	}
	return format, alias, nil
}

func (p *Processor) finish(alias string, txns []models.LedgerTransaction) *Result {
	res := &Result{Alias: alias, Transactions: txns}
	if p.opts.Dedupe {
		report := reconcile.Build(txns)
		if n := report.DuplicateCount(); n > 0 {
			p.logger.Warn("dropping duplicate transactions", "count", n)
		}
		res.Transactions = report.Unique()
		res.Duplicates = report.DuplicateCount()
	}
	res.Transactions = csv.Filter(res.Transactions, p.opts.Filter)
	return res
}
