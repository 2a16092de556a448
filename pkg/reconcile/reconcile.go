// Package reconcile finds transactions that appear more than once in a
// conversion, typically because overlapping statement exports were fed in
// together.
package reconcile

import (
	"github.com/yurifrl/csv2qif/pkg/compare"
	"github.com/yurifrl/csv2qif/pkg/models"
)

// Status indicates whether a transaction was already seen.
type Status int

const (
	Unique Status = iota
	Duplicate
)

func (s Status) String() string {
	if s == Duplicate {
		return "duplicate"
	}
	return "unique"
}

// Entry links a transaction with the index of its first occurrence.
type Entry struct {
	Txn    models.LedgerTransaction
	Status Status
	// First is the index of the earlier equal transaction, -1 for Unique.
	First int
}

// Report keeps every transaction in input order.
type Report struct {
	Items  []Entry
	unique []models.LedgerTransaction
}

// Build marks every transaction equal (compare.Equal) to an earlier one as a
// duplicate.
func Build(txns []models.LedgerTransaction) *Report {
	items := make([]Entry, 0, len(txns))
	unique := make([]models.LedgerTransaction, 0, len(txns))
	seen := make(map[string]int, len(txns))

	for i, t := range txns {
		key := compare.Key(t)
		if first, ok := seen[key]; ok {
			items = append(items, Entry{Txn: t, Status: Duplicate, First: first})
			continue
		}
		seen[key] = i
		items = append(items, Entry{Txn: t, Status: Unique, First: -1})
		unique = append(unique, t)
	}

	return &Report{Items: items, unique: unique}
}

// DuplicateCount returns how many transactions repeat an earlier one.
func (r *Report) DuplicateCount() int {
	return len(r.Items) - len(r.unique)
}

// UniqueCount returns how many transactions are kept after deduplication.
func (r *Report) UniqueCount() int {
	return len(r.unique)
}

// Unique returns the first occurrence of every transaction, in order.
func (r *Report) Unique() []models.LedgerTransaction {
	return r.unique
}
