package executors

import (
	"fmt"
	"io"
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/shopspring/decimal"

	"github.com/yurifrl/csv2qif/pkg/models"
	"github.com/yurifrl/csv2qif/pkg/qif"
	"github.com/yurifrl/csv2qif/pkg/rules"
	"github.com/yurifrl/csv2qif/pkg/service"
)

// shorter rule literals match nearly any description as a subsequence
const minSuggestLiteral = 3

// Report summarises a conversion: how transactions were spread over accounts
// and which unclassified descriptions are worth a mapping.
type Report struct {
	Alias         string           `json:"alias"`
	Total         int              `json:"total"`
	Imbalanced    int              `json:"imbalanced"`
	Duplicates    int              `json:"duplicates"`
	Accounts      []AccountSummary `json:"accounts"`
	TopImbalanced []Suggestion     `json:"top_imbalanced"`
}

type AccountSummary struct {
	Account string  `json:"account"`
	Count   int     `json:"count"`
	Sum     float64 `json:"sum"`
}

// Suggestion is a frequent imbalanced description and the category whose
// rule resembles it most, if any.
type Suggestion struct {
	Description string `json:"description"`
	Count       int    `json:"count"`
	Category    string `json:"category,omitempty"`
	Rule        string `json:"rule,omitempty"`
}

// BuildReport counts transactions per account and lists the top most common
// imbalanced descriptions. set may be nil, then no category is suggested.
func BuildReport(res *service.Result, set *rules.Set, top int) *Report {
	r := &Report{Alias: res.Alias, Total: len(res.Transactions), Duplicates: res.Duplicates}

	byAccount := make(map[string]*AccountSummary)
	sums := make(map[string]decimal.Decimal)
	imbalanced := make(map[string]int)
	for _, t := range res.Transactions {
		s, ok := byAccount[t.Account]
		if !ok {
			s = &AccountSummary{Account: t.Account}
			byAccount[t.Account] = s
		}
		s.Count++
		sums[t.Account] = sums[t.Account].Add(decimal.NewFromFloat(t.Amount))

		if t.IsImbalanced() {
			r.Imbalanced++
			imbalanced[t.Payee()]++
		}
	}

	for account, s := range byAccount {
		s.Sum = sums[account].InexactFloat64()
		r.Accounts = append(r.Accounts, *s)
	}
	sort.Slice(r.Accounts, func(i, j int) bool {
		if r.Accounts[i].Count != r.Accounts[j].Count {
			return r.Accounts[i].Count > r.Accounts[j].Count
		}
		return r.Accounts[i].Account < r.Accounts[j].Account
	})

	for desc, n := range imbalanced {
		r.TopImbalanced = append(r.TopImbalanced, Suggestion{Description: desc, Count: n})
	}
	sort.Slice(r.TopImbalanced, func(i, j int) bool {
		if r.TopImbalanced[i].Count != r.TopImbalanced[j].Count {
			return r.TopImbalanced[i].Count > r.TopImbalanced[j].Count
		}
		return r.TopImbalanced[i].Description < r.TopImbalanced[j].Description
	})
	if top > 0 && len(r.TopImbalanced) > top {
		r.TopImbalanced = r.TopImbalanced[:top]
	}

	if set != nil {
		for i := range r.TopImbalanced {
			s := &r.TopImbalanced[i]
			s.Category, s.Rule = suggest(set, s.Description)
		}
	}
	return r
}

// suggest picks the category whose rule literal appears in description as a
// case-insensitive subsequence with the smallest edit distance. Ties go to
// the category declared first.
func suggest(set *rules.Set, description string) (string, string) {
	best, category, rule := -1, "", ""
	for _, c := range set.Categories() {
		for _, r := range c.Rules {
			if len(r.Literal) < minSuggestLiteral {
				continue
			}
			rank := fuzzy.RankMatchFold(r.Literal, description)
			if rank < 0 {
				continue
			}
			if best < 0 || rank < best {
				best, category, rule = rank, c.Name, r.Literal
			}
		}
	}
	return category, rule
}

// Print writes the report for a terminal.
func (r *Report) Print(w io.Writer) {
	title := lipgloss.NewStyle().Bold(true)
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	warn := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	fmt.Fprintln(w, title.Render(fmt.Sprintf("%s: %d transaction(s), %d imbalanced", r.Alias, r.Total, r.Imbalanced)))
	if r.Duplicates > 0 {
		fmt.Fprintln(w, muted.Render(fmt.Sprintf("%d duplicate(s) dropped", r.Duplicates)))
	}
	for _, a := range r.Accounts {
		line := fmt.Sprintf("  %-40s %5d %12s", a.Account, a.Count, qif.FormatAmount(a.Sum))
		if a.Account == models.DefaultAccount {
			fmt.Fprintln(w, warn.Render(line))
			continue
		}
		fmt.Fprintln(w, line)
	}

	if len(r.TopImbalanced) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, title.Render("Most common imbalanced descriptions"))
	for _, s := range r.TopImbalanced {
		fmt.Fprintf(w, "  %4d  %s\n", s.Count, s.Description)
		if s.Category != "" {
			fmt.Fprintln(w, hint.Render(fmt.Sprintf("        maybe %s (rule %q)", s.Category, s.Rule)))
		}
	}
}
