package models

import "fmt"

// Format describes how a bank lays out its CSV export.
type Format struct {
	Name        string   `yaml:"name" json:"name"`
	Delimiters  []string `yaml:"delimiter" json:"delimiter"`
	Description []string `yaml:"description" json:"description"`
	Date        []string `yaml:"date" json:"date"`
}

// Validate checks that every delimiter is a single byte the CSV reader accepts.
func (f *Format) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("format without name")
	}
	for _, d := range f.Delimiters {
		if len(d) != 1 {
			return fmt.Errorf("format %s: delimiter %q must be a single byte", f.Name, d)
		}
		switch c := d[0]; {
		case c == '"', c == '\r', c == '\n', c >= 0x80:
			return fmt.Errorf("format %s: invalid delimiter %q", f.Name, d)
		}
	}
	return nil
}

// DelimiterBytes returns the configured delimiters in the order they are tried.
func (f *Format) DelimiterBytes() []byte {
	out := make([]byte, 0, len(f.Delimiters))
	for _, d := range f.Delimiters {
		if len(d) > 0 {
			out = append(out, d[0])
		}
	}
	return out
}
