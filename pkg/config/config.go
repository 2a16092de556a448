package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/rules"
)

var (
	ErrUnknownFormat = errors.New("unknown format")
	ErrUnknownAlias  = errors.New("unknown qif alias")
)

// Config is the loaded rules document. It is never mutated after Parse and is
// shared by every worker.
type Config struct {
	Formats        []models.Format
	Aliases        map[string]string
	SkipCurrencies []string
	Rules          *rules.Set
}

type document struct {
	Formats          []models.Format   `yaml:"formats" json:"formats"`
	QifAliases       map[string]string `yaml:"qif_aliases" json:"qif_aliases"`
	SkipDescriptions []string          `yaml:"skip_descriptions" json:"skip_descriptions"`
	SkipCurrencies   []string          `yaml:"skip_currencies" json:"skip_currencies"`
}

type mapping struct {
	account  string
	patterns []string
}

// Load reads and parses the rules document at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML or JSON rules document. The order of the mappings
// object is kept: it decides which category wins when several match.
func Parse(data []byte) (*Config, error) {
	doc, mappings, err := decodeYAML(data)
	if err != nil {
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, err
		}
		// tab indented JSON is not valid YAML
		doc, mappings, err = decodeJSON(trimmed)
		if err != nil {
			return nil, err
		}
	}

	for i := range doc.Formats {
		if err := doc.Formats[i].Validate(); err != nil {
			return nil, err
		}
	}

	categories := make([]rules.Category, 0, len(mappings))
	for _, m := range mappings {
		categories = append(categories, rules.Category{
			Name:  m.account,
			Rules: rules.CompileAll(m.patterns),
		})
	}

	aliases := doc.QifAliases
	if aliases == nil {
		aliases = map[string]string{}
	}

	return &Config{
		Formats:        doc.Formats,
		Aliases:        aliases,
		SkipCurrencies: doc.SkipCurrencies,
		Rules:          rules.NewSet(categories, rules.CompileAll(doc.SkipDescriptions)),
	}, nil
}

func decodeYAML(data []byte) (document, []mapping, error) {
	var raw struct {
		document `yaml:",inline"`
		Mappings yaml.Node `yaml:"mappings"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return document{}, nil, fmt.Errorf("failed to decode config: %w", err)
	}

	node := &raw.Mappings
	if node.Kind == 0 {
		return raw.document, nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return document{}, nil, fmt.Errorf("mappings: expected an object, line %d", node.Line)
	}

	seen := make(map[string]bool)
	var out []mapping
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		var patterns []string
		if err := value.Decode(&patterns); err != nil {
			return document{}, nil, fmt.Errorf("mappings.%s: %w", key.Value, err)
		}
		if seen[key.Value] {
			return document{}, nil, fmt.Errorf("mappings: duplicate account %q", key.Value)
		}
		seen[key.Value] = true
		out = append(out, mapping{account: key.Value, patterns: patterns})
	}
	return raw.document, out, nil
}

func decodeJSON(data []byte) (document, []mapping, error) {
	var raw struct {
		document
		Mappings json.RawMessage `json:"mappings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return document{}, nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if len(raw.Mappings) == 0 {
		return raw.document, nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw.Mappings))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return document{}, nil, fmt.Errorf("mappings: expected an object")
	}

	seen := make(map[string]bool)
	var out []mapping
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return document{}, nil, fmt.Errorf("mappings: %w", err)
		}
		account, _ := tok.(string)
		var patterns []string
		if err := dec.Decode(&patterns); err != nil {
			return document{}, nil, fmt.Errorf("mappings.%s: %w", account, err)
		}
		if seen[account] {
			return document{}, nil, fmt.Errorf("mappings: duplicate account %q", account)
		}
		seen[account] = true
		out = append(out, mapping{account: account, patterns: patterns})
	}
	return raw.document, out, nil
}

// Format returns the format called name.
func (c *Config) Format(name string) (*models.Format, error) {
	for i := range c.Formats {
		if c.Formats[i].Name == name {
			return &c.Formats[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// Alias resolves a qif_aliases key to the account written in the QIF header.
func (c *Config) Alias(key string) (string, error) {
	alias, ok := c.Aliases[key]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlias, key)
	}
	return alias, nil
}

// SkipsCurrency reports whether rows in currency are ignored.
func (c *Config) SkipsCurrency(currency string) bool {
	for _, s := range c.SkipCurrencies {
		if s == currency {
			return true
		}
	}
	return false
}
