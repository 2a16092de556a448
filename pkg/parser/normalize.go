package parser

import (
	"regexp"
	"strings"
)

// Normalizer holds the expressions used to clean headers and descriptions.
// It is immutable after NewNormalizer and safe for concurrent use.
type Normalizer struct {
	quotes    *regexp.Regexp
	separator *regexp.Regexp
	word      *regexp.Regexp
}

// NewNormalizer compiles the normalization expressions once.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		quotes:    regexp.MustCompile(`["']+`),
		separator: regexp.MustCompile(`[;,\s\p{Z}]+`),
		word:      regexp.MustCompile(`[\p{L}\p{M}\p{Nd}\p{Pc}]+`),
	}
}

// Description joins the description fields and collapses quoting and
// irregular separators into single spaces.
func (n *Normalizer) Description(fields []string) string {
	text := strings.Join(fields, " ")
	text = n.quotes.ReplaceAllString(text, "")
	return n.separator.ReplaceAllString(text, " ")
}

// Header turns a raw column title into a lowercase snake_case key:
// "Amount (EUR)" becomes "amount_eur".
func (n *Normalizer) Header(raw string) string {
	return strings.ToLower(strings.Join(n.word.FindAllString(raw, -1), "_"))
}
