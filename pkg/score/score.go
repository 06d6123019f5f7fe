package score

import (
	"fmt"
	"sort"
)

// Category partitions the instrument items into the two scored blocks.
type Category string

const (
	CategoryMethods   Category = "methods"
	CategoryReporting Category = "reporting"
)

// Scope is an independent slice of the instrument over which max score
// and summaries are computed. Total covers both categories.
type Scope string

const (
	ScopeMethods   Scope = "methods"
	ScopeReporting Scope = "reporting"
	ScopeTotal     Scope = "total"
)

// Scopes lists all supported scopes in report order.
var Scopes = []Scope{ScopeMethods, ScopeReporting, ScopeTotal}

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeMethods, ScopeReporting, ScopeTotal:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown scope: %q (expected methods, reporting, or total)", s)
}

// Includes reports whether items of the given category belong to the scope.
func (s Scope) Includes(c Category) bool {
	switch s {
	case ScopeMethods:
		return c == CategoryMethods
	case ScopeReporting:
		return c == CategoryReporting
	case ScopeTotal:
		return true
	}
	return false
}

// Item is a single scored criterion of the assessment instrument.
type Item struct {
	ID       string   `json:"id" yaml:"id"`
	Category Category `json:"category" yaml:"category"`
	Section  string   `json:"section,omitempty" yaml:"section,omitempty"`
	Domain   string   `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// Weights maps item ID to its fixed, study-independent importance weight.
type Weights map[string]float64

// ValidScore reports whether v is in the allowed score domain {0, 0.5, 1}.
// Missing is represented by cell absence, not by a value.
func ValidScore(v float64) bool {
	return v == 0 || v == 0.5 || v == 1
}

type cellKey struct {
	study string
	item  string
}

// Table holds per-item scores per study. Studies and items keep the
// order in which they were added (source column/row order). A cell with
// no entry is a missing ("N/A") score.
type Table struct {
	studies []string
	items   []Item
	cells   map[cellKey]float64
}

func NewTable() *Table {
	return &Table{
		studies: make([]string, 0),
		items:   make([]Item, 0),
		cells:   make(map[cellKey]float64),
	}
}

func (t *Table) AddStudy(name string) error {
	if name == "" {
		return fmt.Errorf("study name required")
	}
	for _, s := range t.studies {
		if s == name {
			return fmt.Errorf("duplicate study: %s", name)
		}
	}
	t.studies = append(t.studies, name)
	return nil
}

func (t *Table) AddItem(it Item) error {
	if it.ID == "" {
		return fmt.Errorf("item ID required")
	}
	if it.Category != CategoryMethods && it.Category != CategoryReporting {
		return fmt.Errorf("item %s: unknown category: %q", it.ID, it.Category)
	}
	for _, x := range t.items {
		if x.ID == it.ID {
			return fmt.Errorf("duplicate item: %s", it.ID)
		}
	}
	t.items = append(t.items, it)
	return nil
}

// SetScore records a score for a known (study, item) pair. The value
// must be in the allowed domain; missing scores are simply never set.
func (t *Table) SetScore(study, item string, v float64) error {
	if !t.HasStudy(study) {
		return fmt.Errorf("unknown study: %s", study)
	}
	if _, ok := t.item(item); !ok {
		return fmt.Errorf("unknown item: %s", item)
	}
	if !ValidScore(v) {
		return &InvalidScoreError{Study: study, Item: item, Value: v}
	}
	t.cells[cellKey{study: study, item: item}] = v
	return nil
}

// Score returns the recorded value and true, or (0, false) when missing.
func (t *Table) Score(study, item string) (float64, bool) {
	v, ok := t.cells[cellKey{study: study, item: item}]
	return v, ok
}

func (t *Table) HasStudy(name string) bool {
	for _, s := range t.studies {
		if s == name {
			return true
		}
	}
	return false
}

func (t *Table) item(id string) (Item, bool) {
	for _, it := range t.items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// Studies returns the study identifiers in source order.
func (t *Table) Studies() []string {
	out := make([]string, len(t.studies))
	copy(out, t.studies)
	return out
}

// Items returns the instrument items in source order.
func (t *Table) Items() []Item {
	out := make([]Item, len(t.items))
	copy(out, t.items)
	return out
}

// MissingCount returns the number of unset cells for the given study.
func (t *Table) MissingCount(study string) int {
	n := 0
	for _, it := range t.items {
		if _, ok := t.Score(study, it.ID); !ok {
			n++
		}
	}
	return n
}

// Slice returns an independent sub-table restricted to the items of the
// given scope. All studies are retained; cell values are copied so the
// source table stays untouched.
func (t *Table) Slice(s Scope) *Table {
	sub := NewTable()
	sub.studies = append(sub.studies, t.studies...)
	for _, it := range t.items {
		if !s.Includes(it.Category) {
			continue
		}
		sub.items = append(sub.items, it)
	}
	for _, study := range sub.studies {
		for _, it := range sub.items {
			if v, ok := t.Score(study, it.ID); ok {
				sub.cells[cellKey{study: study, item: it.ID}] = v
			}
		}
	}
	return sub
}

// SortedItemIDs is a convenience for deterministic diagnostics output.
func (w Weights) SortedItemIDs() []string {
	ids := make([]string, 0, len(w))
	for id := range w {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
