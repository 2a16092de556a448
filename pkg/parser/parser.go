package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/csv2qif/pkg/models"
)

// FallbackDelimiter is tried after every configured delimiter came up empty.
const FallbackDelimiter = '\t'

// ParseError reports a structurally broken CSV document.
type ParseError struct {
	Delimiter byte
	Line      int
	Err       error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csv with delimiter %q, line %d: %v", e.Delimiter, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

type Parser struct {
	logger     *log.Logger
	normalizer *Normalizer
}

func New(logger *log.Logger) *Parser {
	return &Parser{
		logger:     logger,
		normalizer: NewNormalizer(),
	}
}

// Normalizer exposes the shared normalizer so row builders reuse the same
// compiled expressions.
func (p *Parser) Normalizer() *Normalizer {
	return p.normalizer
}

// ParseDialect reads data as CSV separated by delimiter. The first record is
// the header. A header with one column or fewer means the delimiter does not
// fit and yields no rows without an error.
func (p *Parser) ParseDialect(data []byte, delimiter byte) ([]models.Row, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = rune(delimiter)
	r.LazyQuotes = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, p.parseError(delimiter, err)
	}
	if len(header) <= 1 {
		return nil, nil
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = p.normalizer.Header(h)
	}

	var rows []models.Row
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, p.parseError(delimiter, err)
		}
		row := make(models.Row, len(keys))
		// on duplicate headers the rightmost column wins
		for i, key := range keys {
			row[key] = record[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// Resolve tries each delimiter of format in order, then a tab, and returns
// the rows of the first dialect that produced any. An input no dialect fits
// yields no rows and no error.
func (p *Parser) Resolve(format *models.Format, data []byte) ([]models.Row, error) {
	delimiters := append(format.DelimiterBytes(), FallbackDelimiter)
	for _, d := range delimiters {
		rows, err := p.ParseDialect(data, d)
		if err != nil {
			return nil, err
		}
		if len(rows) > 0 {
			p.logger.Debug("resolved dialect", "format", format.Name, "delimiter", string(d), "rows", len(rows))
			return rows, nil
		}
	}

	p.logger.Debug("no dialect matched", "format", format.Name)
	return nil, nil
}

func (p *Parser) parseError(delimiter byte, err error) error {
	line := 0
	var csvErr *csv.ParseError
	if errors.As(err, &csvErr) {
		line = csvErr.Line
	}
	return &ParseError{Delimiter: delimiter, Line: line, Err: err}
}
