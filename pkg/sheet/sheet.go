// Package sheet parses the fixed-structure assessment spreadsheet (CSV):
// a header row of item identifiers (a contiguous M-prefixed methods block
// followed by a contiguous R-prefixed reporting block), metadata rows
// labeled Section, Domain, and Weight, then one row per scored study.
package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/qactl/qactl/pkg/score"
)

const (
	labelSection = "section"
	labelDomain  = "domain"
	labelWeight  = "weight"
)

var itemIDRegEx = regexp.MustCompile(`^([MR])[0-9]+$`)

// Dataset is the parsed content of one spreadsheet: the score table plus
// the per-item importance weights.
type Dataset struct {
	Table   *score.Table
	Weights score.Weights
}

func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening spreadsheet %s: %w", path, err)
	}
	defer f.Close()

	d, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing spreadsheet %s: %w", path, err)
	}
	return d, nil
}

// Parse reads the CSV layout into a Dataset. Any structural violation is
// fatal; there is no partial result.
func Parse(r io.Reader) (*Dataset, error) {
	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("spreadsheet needs a header row and a weight row, got %d rows", len(records))
	}

	items, err := parseHeader(records[0])
	if err != nil {
		return nil, err
	}

	meta, studyRows, err := splitMetadataRows(records[1:])
	if err != nil {
		return nil, err
	}

	weightRow, ok := meta[labelWeight]
	if !ok {
		return nil, fmt.Errorf("spreadsheet has no %q metadata row", labelWeight)
	}

	weights := make(score.Weights, len(items))
	for i := range items {
		cell := strings.TrimSpace(weightRow[i+1])
		w, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("item %s: bad weight %q: %w", items[i].ID, cell, err)
		}
		if w < 0 {
			return nil, &score.InvalidWeightError{Item: items[i].ID, Value: w}
		}
		weights[items[i].ID] = w
	}

	if row, ok := meta[labelSection]; ok {
		for i := range items {
			items[i].Section = strings.TrimSpace(row[i+1])
		}
	}
	if row, ok := meta[labelDomain]; ok {
		for i := range items {
			items[i].Domain = strings.TrimSpace(row[i+1])
		}
	}

	tbl := score.NewTable()
	for _, it := range items {
		if err := tbl.AddItem(it); err != nil {
			return nil, err
		}
	}

	for _, row := range studyRows {
		study := strings.TrimSpace(row[0])
		if study == "" {
			return nil, fmt.Errorf("study row with empty identifier")
		}
		if err := tbl.AddStudy(study); err != nil {
			return nil, err
		}
		for i, it := range items {
			cell := strings.TrimSpace(row[i+1])
			if isMissing(cell) {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("study %q item %q: bad score %q: %w", study, it.ID, cell, err)
			}
			if err := tbl.SetScore(study, it.ID, v); err != nil {
				return nil, err
			}
		}
	}

	return &Dataset{Table: tbl, Weights: weights}, nil
}

// parseHeader validates the item identifier columns: M-prefixed methods
// items first, R-prefixed reporting items after, no interleaving.
func parseHeader(header []string) ([]score.Item, error) {
	if len(header) < 2 {
		return nil, fmt.Errorf("header row has no item columns")
	}

	items := make([]score.Item, 0, len(header)-1)
	seenReporting := false
	for i, cell := range header[1:] {
		id := strings.TrimSpace(cell)
		m := itemIDRegEx.FindStringSubmatch(id)
		if m == nil {
			return nil, fmt.Errorf("column %d: item id %q does not match M<n> or R<n>", i+2, id)
		}

		cat := score.CategoryMethods
		if m[1] == "R" {
			cat = score.CategoryReporting
			seenReporting = true
		} else if seenReporting {
			return nil, fmt.Errorf("column %d: methods item %q after the reporting block", i+2, id)
		}

		items = append(items, score.Item{ID: id, Category: cat})
	}
	return items, nil
}

// splitMetadataRows consumes the leading rows whose first cell is one of
// the fixed metadata labels; everything after is a study row.
func splitMetadataRows(rows [][]string) (map[string][]string, [][]string, error) {
	meta := make(map[string][]string)
	for i, row := range rows {
		label := strings.ToLower(strings.TrimSpace(row[0]))
		switch label {
		case labelSection, labelDomain, labelWeight:
			if _, dup := meta[label]; dup {
				return nil, nil, fmt.Errorf("duplicate %q metadata row", label)
			}
			meta[label] = row
		default:
			return meta, rows[i:], nil
		}
	}
	return meta, nil, nil
}

func isMissing(cell string) bool {
	switch strings.ToLower(cell) {
	case "", "na", "n/a", "-":
		return true
	}
	return false
}
