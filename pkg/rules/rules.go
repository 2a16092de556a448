// Package rules classifies transaction descriptions into ledger accounts.
//
// A Rule is a user supplied string that matches a description either as a
// case-sensitive substring or, when the string compiles, as a case-insensitive
// regular expression. Categories are checked in the order they were declared
// and the first category with a matching rule wins, so overlapping rule sets
// resolve deterministically.
package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cloudflare/ahocorasick"

	"github.com/yurifrl/csv2qif/pkg/models"
)

// Kind tells how a Rule can match.
type Kind int

const (
	// LiteralOnly rules failed to compile as a pattern and only match as a substring.
	LiteralOnly Kind = iota
	// LiteralOrPattern rules match as a substring or as a case-insensitive pattern.
	LiteralOrPattern
)

func (k Kind) String() string {
	if k == LiteralOnly {
		return "literal"
	}
	return "literal-or-pattern"
}

type Rule struct {
	Literal string
	Pattern *regexp.Regexp
}

// Compile builds a Rule from s. It never fails: a string that is not a valid
// expression becomes a LiteralOnly rule.
func Compile(s string) Rule {
	re, err := regexp.Compile("(?i)" + s)
	if err != nil {
		return Rule{Literal: s}
	}
	return Rule{Literal: s, Pattern: re}
}

// CompileAll compiles every string in order.
func CompileAll(ss []string) []Rule {
	out := make([]Rule, 0, len(ss))
	for _, s := range ss {
		out = append(out, Compile(s))
	}
	return out
}

func (r Rule) Kind() Kind {
	if r.Pattern == nil {
		return LiteralOnly
	}
	return LiteralOrPattern
}

// Match reports whether description contains the rule literal or matches its
// pattern.
func Match(description string, r Rule) bool {
	if containsLiteral(description, r.Literal) {
		return true
	}
	return r.Pattern != nil && r.Pattern.MatchString(description)
}

// Category is a ledger account and the rules that route descriptions to it.
type Category struct {
	Name  string
	Rules []Rule
}

// Set holds the skip rules and the ordered categories of a configuration.
// It is immutable once built and safe for concurrent use.
type Set struct {
	categories []Category
	skip       []Rule

	// all distinct non-empty literals share one automaton; slots index into
	// its dictionary, -1 marks an empty literal which matches everything.
	matcher   *ahocorasick.Matcher
	dict      int
	catSlots  [][]int
	skipSlots []int
}

// NewSet builds a Set. Categories keep the given order.
func NewSet(categories []Category, skip []Rule) *Set {
	s := &Set{categories: categories, skip: skip}

	index := make(map[string]int)
	var dictionary [][]byte
	slot := func(literal string) int {
		if literal == "" {
			return -1
		}
		if i, ok := index[literal]; ok {
			return i
		}
		i := len(dictionary)
		index[literal] = i
		dictionary = append(dictionary, []byte(literal))
		return i
	}

	s.catSlots = make([][]int, len(categories))
	for ci, c := range categories {
		s.catSlots[ci] = make([]int, len(c.Rules))
		for ri, r := range c.Rules {
			s.catSlots[ci][ri] = slot(r.Literal)
		}
	}
	s.skipSlots = make([]int, len(skip))
	for i, r := range skip {
		s.skipSlots[i] = slot(r.Literal)
	}

	s.dict = len(dictionary)
	if s.dict > 0 {
		s.matcher = ahocorasick.NewMatcher(dictionary)
	}
	return s
}

// Categories returns the categories in declaration order.
func (s *Set) Categories() []Category {
	return s.categories
}

// Skip returns the skip rules.
func (s *Set) Skip() []Rule {
	return s.skip
}

// Classify returns the first category with a rule matching description, or
// models.DefaultAccount when none does.
func (s *Set) Classify(description string) string {
	hits := s.literalHits(description)
	for ci, c := range s.categories {
		for ri, r := range c.Rules {
			if s.matches(description, hits, s.catSlots[ci][ri], r) {
				return c.Name
			}
		}
	}
	return models.DefaultAccount
}

// ShouldSkip reports whether any skip rule matches description.
func (s *Set) ShouldSkip(description string) bool {
	if len(s.skip) == 0 {
		return false
	}
	hits := s.literalHits(description)
	for i, r := range s.skip {
		if s.matches(description, hits, s.skipSlots[i], r) {
			return true
		}
	}
	return false
}

func (s *Set) literalHits(description string) []bool {
	hits := make([]bool, s.dict)
	if s.matcher == nil {
		return hits
	}
	for _, i := range s.matcher.MatchThreadSafe([]byte(description)) {
		hits[i] = true
	}
	return hits
}

func (s *Set) matches(description string, hits []bool, slot int, r Rule) bool {
	if slot < 0 || hits[slot] {
		return true
	}
	return r.Pattern != nil && r.Pattern.MatchString(description)
}

func containsLiteral(description, literal string) bool {
	if literal == "" {
		return true
	}
	return strings.Contains(description, literal)
}

// Conflict is a literal of one category that a rule of another category also
// matches.
type Conflict struct {
	Literal string
	Owner   string
	Other   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%q of %s is also matched by %s", c.Literal, c.Owner, c.Other)
}

// Conflicts treats every rule literal as a description and reports the other
// categories that would claim it. Empty literals are ignored.
func (s *Set) Conflicts() []Conflict {
	var out []Conflict
	for _, owner := range s.categories {
		for _, r := range owner.Rules {
			if r.Literal == "" {
				continue
			}
			for _, other := range s.categories {
				if other.Name == owner.Name {
					continue
				}
				for _, o := range other.Rules {
					if o.Literal != "" && Match(r.Literal, o) {
						out = append(out, Conflict{Literal: r.Literal, Owner: owner.Name, Other: other.Name})
						break
					}
				}
			}
		}
	}
	return out
}
