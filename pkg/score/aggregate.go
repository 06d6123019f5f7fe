package score

import (
	"fmt"
	"math"
)

// MissingPolicy controls how a missing cell contributes to a weighted sum.
type MissingPolicy int

const (
	// TreatAsFull scores a missing item as 1 (optimistic).
	TreatAsFull MissingPolicy = iota
	// TreatAsZero scores a missing item as 0 (conservative).
	TreatAsZero
)

func (p MissingPolicy) fill() float64 {
	if p == TreatAsFull {
		return 1
	}
	return 0
}

// Summary holds the weighted score totals for one study under the three
// missing-value treatments: missing scored as present, missing scored as
// absent, and missing excluded from the achievable maximum.
type Summary struct {
	Study                    string   `json:"study" yaml:"study"`
	ScoreMissingAsPresent    float64  `json:"score_missing_as_present" yaml:"scoreMissingAsPresent"`
	ScoreMissingAsAbsent     float64  `json:"score_missing_as_absent" yaml:"scoreMissingAsAbsent"`
	MaxScore                 float64  `json:"max_score" yaml:"maxScore"`
	MaxScoreExcludingMissing float64  `json:"max_score_excluding_missing" yaml:"maxScoreExcludingMissing"`
	PctMissingAsPresent      float64  `json:"pct_missing_as_present" yaml:"pctMissingAsPresent"`
	PctMissingExcluded       float64  `json:"pct_missing_excluded" yaml:"pctMissingExcluded"`
	Warnings                 []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// ComputeSummaries produces one Summary per study, in table study order.
// The table and weights are read only; calling twice on the same inputs
// yields identical results.
//
// The missing-excluded percentage divides the zero-filled score by the
// missing-adjusted maximum. The numerator keeps missing items at zero
// while the denominator excludes them; this matches the published
// analysis exactly, even though a strict exclusion would drop missing
// items from both sides. Callers needing the strict variant can
// recompute it from the raw fields of the Summary.
func ComputeSummaries(t *Table, w Weights) ([]Summary, error) {
	if t == nil || len(t.studies) == 0 {
		return nil, ErrEmptyStudySet
	}
	if len(t.items) == 0 {
		return nil, ErrEmptyItemSet
	}

	// Max score depends only on the weights, compute once.
	maxScore := 0.0
	for _, it := range t.items {
		wt, ok := w[it.ID]
		if !ok {
			return nil, &MissingWeightError{Item: it.ID}
		}
		if wt < 0 || math.IsNaN(wt) || math.IsInf(wt, 0) {
			return nil, &InvalidWeightError{Item: it.ID, Value: wt}
		}
		maxScore += wt
	}
	if maxScore == 0 {
		return nil, fmt.Errorf("items in scope have zero total weight: %w", ErrEmptyItemSet)
	}

	summaries := make([]Summary, 0, len(t.studies))
	for _, study := range t.studies {
		full, warnFull, err := t.weightedSum(study, w, TreatAsFull)
		if err != nil {
			return nil, err
		}
		zero, warnZero, err := t.weightedSum(study, w, TreatAsZero)
		if err != nil {
			return nil, err
		}

		// The optimistic/conservative gap is exactly the weighted mass
		// of the study's missing items.
		adjustedMax := maxScore - (full - zero)
		if adjustedMax == 0 {
			return nil, &AllMissingError{Study: study}
		}

		s := Summary{
			Study:                    study,
			ScoreMissingAsPresent:    full,
			ScoreMissingAsAbsent:     zero,
			MaxScore:                 maxScore,
			MaxScoreExcludingMissing: adjustedMax,
			PctMissingAsPresent:      round2(full / maxScore * 100),
			PctMissingExcluded:       round2(zero / adjustedMax * 100),
		}
		s.Warnings = append(s.Warnings, warnFull...)
		s.Warnings = append(s.Warnings, warnZero...)
		summaries = append(summaries, s)
	}

	return summaries, nil
}

// weightedSum reduces one study row to a weighted total under the given
// missing policy. A non-finite product contributes zero rather than
// poisoning the total; each such item is reported as a warning.
func (t *Table) weightedSum(study string, w Weights, p MissingPolicy) (float64, []string, error) {
	var warnings []string
	sum := 0.0
	for _, it := range t.items {
		v, ok := t.Score(study, it.ID)
		if !ok {
			v = p.fill()
		} else if !ValidScore(v) {
			return 0, nil, &InvalidScoreError{Study: study, Item: it.ID, Value: v}
		}
		prod := v * w[it.ID]
		if math.IsNaN(prod) || math.IsInf(prod, 0) {
			warnings = append(warnings, fmt.Sprintf("item %s: non-finite contribution dropped", it.ID))
			continue
		}
		sum += prod
	}
	return sum, warnings, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
